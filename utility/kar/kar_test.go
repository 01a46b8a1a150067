// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"golang.org/x/exp/mmap"

	"github.com/devblok/korender/utility/kar"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	for name, contents := range files {
		if err := builder.Add(name, strings.NewReader(contents)); err != nil {
			t.Fatal(err)
		}
	}
	if builder.Len() != len(files) {
		t.Fatalf("incorrect number of files present: %d", builder.Len())
	}

	buf := bytes.NewBuffer([]byte{})
	written, err := builder.WriteTo(buf)
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(buf.Len()) {
		t.Fatalf("reported %d bytes written, buffer holds %d", written, buf.Len())
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	data := buildArchive(t, map[string]string{"test": testString1, "test2": testString2})

	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test2")
	if err != nil {
		t.Fatal(err)
	}
	result, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != testString2 {
		t.Errorf("test string does not match up: %q", result)
	}
	if f.Entry().Size != int64(len(testString2)) {
		t.Errorf("bad entry size: %d", f.Entry().Size)
	}
}

func TestCreateAndReadAll(t *testing.T) {
	data := buildArchive(t, map[string]string{"test": testString1, "test2": testString2})

	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	for name, expected := range map[string]string{"test": testString1, "test2": testString2} {
		f, err := ar.ReadAll(name)
		if err != nil {
			t.Fatal(err)
		}
		if string(f) != expected {
			t.Errorf("%s: test string does not match up", name)
		}
	}

	header := ar.Header()
	if header.Author != "devblok" || len(header.Index) != 2 {
		t.Errorf("unexpected header: %+v", header)
	}
	if header.Index[0].Name != "test" || header.Index[1].Offset != header.Index[0].CompressedSize {
		t.Errorf("unexpected index layout: %+v", header.Index)
	}

	if _, err := ar.ReadAll("missing"); !errors.Is(err, kar.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsOtherFiles(t *testing.T) {
	if _, err := kar.Open(bytes.NewReader([]byte("PK\x03\x04 definitely a zip file"))); !errors.Is(err, kar.ErrFileFormat) {
		t.Errorf("expected ErrFileFormat, got %v", err)
	}
	if _, err := kar.Open(bytes.NewReader([]byte("KAR"))); !errors.Is(err, kar.ErrFileFormat) {
		t.Errorf("expected ErrFileFormat on short input, got %v", err)
	}

	truncated := buildArchive(t, map[string]string{"test": testString1})[:30]
	if _, err := kar.Open(bytes.NewReader(truncated)); !errors.Is(err, kar.ErrFileFormat) {
		t.Errorf("expected ErrFileFormat on truncated header, got %v", err)
	}
}

func TestOpenmmap(t *testing.T) {
	data := buildArchive(t, map[string]string{"test/test1.txt": "this is a test"})
	path := filepath.Join(t.TempDir(), "opentest.kar")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	r, err := mmap.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ar, err := kar.Open(r)
	if err != nil {
		t.Fatal(err)
	}
	if f, err := ar.ReadAll("test/test1.txt"); err != nil {
		t.Error(err)
	} else if string(f) != "this is a test" {
		t.Errorf("result is not expected value: %q", f)
	}
}

func TestFS(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"materials/crate.json": `{"Name": "Crate"}`,
		"shaders/pbr.vert":     "void main() {}",
		"shaders/pbr.frag":     "void main() {}",
		"readme.txt":           "assets",
	})
	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if err := fstest.TestFS(ar.FS(), "materials/crate.json", "shaders/pbr.vert", "shaders/pbr.frag", "readme.txt"); err != nil {
		t.Fatal(err)
	}

	contents, err := fs.ReadFile(ar.FS(), "shaders/pbr.frag")
	if err != nil || string(contents) != "void main() {}" {
		t.Errorf("unexpected contents %q: %v", contents, err)
	}
	if _, err := fs.ReadFile(ar.FS(), "shaders/missing.frag"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
