// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loader

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/devblok/korender/utility/kar"
)

// Dir serves assets from a directory.
func Dir(path string) fs.FS {
	return os.DirFS(path)
}

// Archive serves assets from a memory mapped kar archive.
type Archive struct {
	fs.FS

	reader  *mmap.ReaderAt
	archive *kar.Archive
}

// OpenArchive maps the kar archive at path.
func OpenArchive(path string) (*Archive, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &Archive{FS: ar.FS(), reader: r, archive: ar}, nil
}

// Header returns the archive header.
func (a *Archive) Header() kar.Header {
	return a.archive.Header()
}

// Close unmaps the archive.
func (a *Archive) Close() error {
	return a.reader.Close()
}

type overlay []fs.FS

// Overlay composes file systems, a file is served by the first
// system that has it.
func Overlay(systems ...fs.FS) fs.FS {
	return overlay(systems)
}

// Open implements fs.FS
func (o overlay) Open(name string) (fs.File, error) {
	for _, fsys := range o {
		f, err := fsys.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
