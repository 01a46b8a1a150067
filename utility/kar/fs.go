// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// FS returns a read-only fs.FS view of the archive. Directories are
// implied by the slash separated entry names.
func (a *Archive) FS() fs.FS {
	return archiveFS{a}
}

type archiveFS struct {
	a *Archive
}

// Open implements fs.FS
func (f archiveFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if entry, err := f.a.Stat(name); err == nil {
		data, err := f.a.ReadAll(name)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return &file{Reader: bytes.NewReader(data), info: entryInfo{entry: entry, modTime: f.modTime()}}, nil
	}
	entries := f.list(name)
	if entries == nil && name != "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &dir{name: name, entries: entries, modTime: f.modTime()}, nil
}

// ReadFile implements fs.ReadFileFS
func (f archiveFS) ReadFile(name string) ([]byte, error) {
	data, err := f.a.ReadAll(name)
	if errors.Is(err, ErrNotFound) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return data, err
}

func (f archiveFS) modTime() time.Time {
	return time.Unix(f.a.header.DateCreated, 0)
}

// list returns the direct children of dir, nil when dir has none.
func (f archiveFS) list(name string) []fs.DirEntry {
	prefix := ""
	if name != "." {
		prefix = name + "/"
	}
	seen := make(map[string]bool)
	var entries []fs.DirEntry
	for _, e := range f.a.header.Index {
		if !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(e.Name, prefix)
		child, _, isDir := strings.Cut(rest, "/")
		if seen[child] {
			continue
		}
		seen[child] = true
		if isDir {
			entries = append(entries, fs.FileInfoToDirEntry(dirInfo{name: child, modTime: f.modTime()}))
		} else {
			entries = append(entries, fs.FileInfoToDirEntry(entryInfo{entry: e, modTime: f.modTime()}))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}

// file serves a fully decompressed entry.
type file struct {
	*bytes.Reader
	info entryInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Close() error              { return nil }

type dir struct {
	name    string
	entries []fs.DirEntry
	offset  int
	modTime time.Time
}

func (d *dir) Stat() (fs.FileInfo, error) {
	return dirInfo{name: path.Base(d.name), modTime: d.modTime}, nil
}

func (d *dir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: errors.New("is a directory")}
}

func (d *dir) Close() error { return nil }

func (d *dir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n], nil
}

type entryInfo struct {
	entry   IndexEntry
	modTime time.Time
}

func (i entryInfo) Name() string       { return path.Base(i.entry.Name) }
func (i entryInfo) Size() int64        { return i.entry.Size }
func (i entryInfo) Mode() fs.FileMode  { return 0444 }
func (i entryInfo) ModTime() time.Time { return i.modTime }
func (i entryInfo) IsDir() bool        { return false }
func (i entryInfo) Sys() interface{}   { return i.entry }

type dirInfo struct {
	name    string
	modTime time.Time
}

func (i dirInfo) Name() string       { return i.name }
func (i dirInfo) Size() int64        { return 0 }
func (i dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0555 }
func (i dirInfo) ModTime() time.Time { return i.modTime }
func (i dirInfo) IsDir() bool        { return true }
func (i dirInfo) Sys() interface{}   { return nil }
