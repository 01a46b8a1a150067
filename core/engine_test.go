// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/core"
	"github.com/devblok/korender/core/renderer"
	"github.com/devblok/korender/device"
	_ "github.com/devblok/korender/device/headless"
	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/utility/kar"
)

const quad = `{"Name": "Quad", "Vertices": [{"Position": [0, 0, 0]}, {"Position": [1, 0, 0]}, {"Position": [0, 1, 0]}], "Indices": [0, 1, 2]}`

func headlessConfiguration() core.Configuration {
	cfg := core.DefaultConfiguration()
	cfg.Renderer.Backend = string(device.Headless)
	cfg.Log.Level = "warn"
	return cfg
}

func TestEngine(t *testing.T) {
	c := qt.New(t)
	assets := fstest.MapFS{"meshes/quad.json": {Data: []byte(quad)}}
	e, err := core.NewEngine(headlessConfiguration(), core.WithAssets(assets))
	c.Assert(err, qt.IsNil)
	c.Assert(e.Device.Backend(), qt.Equals, device.Headless)
	c.Assert(e.Start(device.OffscreenWindow{Width: 64, Height: 64}), qt.IsNil)
	defer e.Close()

	c.Assert(e.Manager.Stats().Pinned, qt.Equals, len(resource.Types))
	d := renderer.NewDrawable(e.Manager, "quad.json")
	c.Assert(d.Mesh().Name(), qt.Equals, "Quad")
	defer d.Release()

	err = e.Renderer.Record(context.Background(), 1, func(_ context.Context, _ int, list *command.List) error {
		d.Record(list, e.Renderer.ViewProjection())
		return nil
	})
	c.Assert(err, qt.IsNil)
	stats, err := e.Renderer.Flush()
	c.Assert(err, qt.IsNil)
	c.Assert(stats.Draws, qt.Equals, 1)
	c.Assert(e.Time.Fps(), qt.Equals, 60)
}

func TestEngineUnknownBackend(t *testing.T) {
	c := qt.New(t)
	cfg := headlessConfiguration()
	cfg.Renderer.Backend = "vulkan"
	_, err := core.NewEngine(cfg, core.WithAssets(fstest.MapFS{}))
	c.Assert(err, qt.ErrorIs, device.ErrNoBackend)
}

func TestEngineArchiveShadowsDirectory(t *testing.T) {
	c := qt.New(t)
	root := c.TempDir()
	c.Assert(os.MkdirAll(filepath.Join(root, "meshes"), 0o755), qt.IsNil)
	onDisk := strings.Replace(quad, "Quad", "DiskQuad", 1)
	c.Assert(os.WriteFile(filepath.Join(root, "meshes", "quad.json"), []byte(onDisk), 0o644), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(root, "meshes", "other.json"), []byte(strings.Replace(quad, "Quad", "Other", 1)), 0o644), qt.IsNil)

	b, err := kar.NewBuilder(kar.Header{Author: "tester"})
	c.Assert(err, qt.IsNil)
	defer b.Close()
	c.Assert(b.Add("meshes/quad.json", strings.NewReader(quad)), qt.IsNil)
	archive := filepath.Join(c.TempDir(), "assets.kar")
	f, err := os.Create(archive)
	c.Assert(err, qt.IsNil)
	_, err = b.WriteTo(f)
	c.Assert(err, qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)

	cfg := headlessConfiguration()
	cfg.Assets = core.AssetConfiguration{Root: root, Archive: archive}
	e, err := core.NewEngine(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(e.Start(device.OffscreenWindow{Width: 8, Height: 8}), qt.IsNil)
	defer e.Close()

	mesh, err := e.Manager.LoadMesh("quad.json")
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Name(), qt.Equals, "Quad")
	other, err := e.Manager.LoadMesh("other.json")
	c.Assert(err, qt.IsNil)
	c.Assert(other.Name(), qt.Equals, "Other")
}

func TestEngineMissingArchive(t *testing.T) {
	c := qt.New(t)
	cfg := headlessConfiguration()
	cfg.Assets.Archive = filepath.Join(c.TempDir(), "missing.kar")
	_, err := core.NewEngine(cfg)
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)
}
