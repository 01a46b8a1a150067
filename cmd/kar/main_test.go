// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korender/utility/kar"
)

func TestCompressExtract(t *testing.T) {
	c := qt.New(t)
	src := c.TempDir()
	c.Assert(os.MkdirAll(filepath.Join(src, "meshes"), 0o755), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(src, "meshes", "cube.json"), []byte(`{"Name": "Cube"}`), 0o644), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(src, "readme.txt"), []byte(strings.Repeat("koru ", 100)), 0o644), qt.IsNil)

	archive := filepath.Join(c.TempDir(), "assets.kar")
	c.Assert(compressFiles(src, archive, kar.Header{Author: "tester", Version: 3}), qt.IsNil)
	c.Assert(compressFiles(src, archive, kar.Header{}), qt.ErrorMatches, "destination file exists.*")

	var out bytes.Buffer
	c.Assert(listFiles(archive, &out), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "author: tester")
	c.Assert(out.String(), qt.Contains, "meshes/cube.json")

	dst := c.TempDir()
	c.Assert(extractFiles(archive, dst), qt.IsNil)
	data, err := os.ReadFile(filepath.Join(dst, "meshes", "cube.json"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `{"Name": "Cube"}`)
	data, err = os.ReadFile(filepath.Join(dst, "readme.txt"))
	c.Assert(err, qt.IsNil)
	c.Assert(len(data), qt.Equals, 500)
}

func TestExtractNotAnArchive(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "plain.txt")
	c.Assert(os.WriteFile(path, []byte("not an archive at all"), 0o644), qt.IsNil)
	c.Assert(extractFiles(path, c.TempDir()), qt.ErrorIs, kar.ErrFileFormat)
}
