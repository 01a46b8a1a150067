// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/core/renderer"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/device/headless"
	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/resource/loader"
	"github.com/devblok/korender/resource/manager"
)

var assets = fstest.MapFS{
	"meshes/pair.json": {Data: []byte(`{"Name": "Pair", "Materials": ["red.json"],
		"Vertices": [{"Position": [0, 0, 0]}, {"Position": [1, 0, 0]}, {"Position": [0, 1, 0]}, {"Position": [1, 1, 0]}],
		"Indices": [0, 1, 2, 2, 1, 3]}`)},
	"materials/red.json": {Data: []byte(`{"Name": "Red", "UsedShader": "BuiltinShader", "MaterialParams": {"Albedo": [1, 0, 0, 1]}}`)},
}

func setup(c *qt.C, cfg renderer.Configuration) (*renderer.Renderer, *manager.Manager, *headless.Device) {
	dev := headless.New(nil)
	m := manager.New(dev, loader.New(assets))
	c.Assert(m.Initialize(), qt.IsNil)
	r, err := renderer.New(cfg, dev)
	c.Assert(err, qt.IsNil)
	c.Assert(r.Initialize(device.OffscreenWindow{Width: 320, Height: 200}), qt.IsNil)
	c.Cleanup(func() {
		m.Shutdown()
		r.Destroy()
	})
	return r, m, dev
}

func TestNewWithoutDevice(t *testing.T) {
	c := qt.New(t)
	_, err := renderer.New(renderer.DefaultConfiguration(), nil)
	c.Assert(err, qt.ErrorIs, renderer.ErrNoDevice)
}

func TestFlushBeforeInitialize(t *testing.T) {
	c := qt.New(t)
	r, err := renderer.New(renderer.DefaultConfiguration(), headless.New(nil))
	c.Assert(err, qt.IsNil)
	_, err = r.Flush()
	c.Assert(err, qt.ErrorIs, device.ErrNotInitialized)
}

func TestFrame(t *testing.T) {
	c := qt.New(t)
	r, m, dev := setup(c, renderer.DefaultConfiguration())

	pair := renderer.NewDrawable(m, "pair.json")
	c.Assert(pair, qt.Not(qt.IsNil))
	defer pair.Release()
	rect := renderer.NewDrawable(m, "missing.json")
	c.Assert(rect.Mesh().Name(), qt.Equals, resource.BuiltinRectangleMesh)
	defer rect.Release()

	list := command.NewList()
	r.BeginCommand(list)
	pair.Record(list, r.ViewProjection())
	rect.Record(list, r.ViewProjection())
	pair.Record(list, r.ViewProjection())
	r.EndCommand(list)
	c.Assert(list.Sorted(), qt.IsTrue)
	r.Submit(list)
	c.Assert(r.Pending(), qt.Equals, 3)

	stats, err := r.Flush()
	c.Assert(err, qt.IsNil)
	c.Assert(stats.Draws, qt.Equals, 3)
	c.Assert(stats.Clears, qt.Equals, 1)
	c.Assert(stats.Viewports, qt.Equals, 1)
	c.Assert(stats.MaterialBinds, qt.Equals, 2)
	c.Assert(stats.MeshBinds, qt.Equals, 2)
	c.Assert(r.Pending(), qt.Equals, 0)
	c.Assert(r.Frames(), qt.Equals, uint64(1))

	trace := dev.Trace()
	c.Assert(trace[1], qt.Equals, "viewport 0 0 320 200")
}

func TestRecordParallel(t *testing.T) {
	c := qt.New(t)
	cfg := renderer.DefaultConfiguration()
	cfg.Workers = 2
	r, m, _ := setup(c, cfg)

	drawables := make([]*renderer.Drawable, 8)
	for i := range drawables {
		drawables[i] = renderer.NewDrawable(m, "pair.json")
		drawables[i].SetTransform(glm.Translate3D(float32(i), 0, 0))
		defer drawables[i].Release()
	}

	err := r.Record(context.Background(), len(drawables), func(ctx context.Context, i int, list *command.List) error {
		drawables[i].Record(list, r.ViewProjection())
		return nil
	})
	c.Assert(err, qt.IsNil)
	c.Assert(r.Pending(), qt.Equals, 8)

	stats, err := r.Flush()
	c.Assert(err, qt.IsNil)
	c.Assert(stats.Draws, qt.Equals, 8)
	c.Assert(stats.Indices, qt.Equals, 8*6)
}

func TestRecordFailure(t *testing.T) {
	c := qt.New(t)
	r, _, _ := setup(c, renderer.DefaultConfiguration())
	boom := errors.New("boom")
	err := r.Record(context.Background(), 4, func(ctx context.Context, i int, list *command.List) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	c.Assert(err, qt.ErrorIs, boom)
	c.Assert(r.Pending(), qt.Equals, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.Record(ctx, 2, func(context.Context, int, *command.List) error { return nil })
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

func TestStaleDrawsAreSkipped(t *testing.T) {
	c := qt.New(t)
	r, m, _ := setup(c, renderer.DefaultConfiguration())
	pair := renderer.NewDrawable(m, "pair.json")

	list := command.NewList()
	r.BeginCommand(list)
	pair.Record(list, r.ViewProjection())
	r.EndCommand(list)
	pair.Release()
	r.Submit(list)

	stats, err := r.Flush()
	c.Assert(err, qt.IsNil)
	c.Assert(stats.Draws, qt.Equals, 0)
	c.Assert(stats.Skipped, qt.Equals, 1)
}

func TestDepth(t *testing.T) {
	c := qt.New(t)
	_, m, _ := setup(c, renderer.DefaultConfiguration())
	rect := renderer.NewDrawable(m, "")
	defer rect.Release()

	projection := glm.Perspective(glm.DegToRad(60), 1, 1, 100)
	view := glm.LookAtV(glm.Vec3{0, 0, 10}, glm.Vec3{}, glm.Vec3{0, 1, 0})
	near := rect.Depth(projection.Mul4(view))
	rect.SetTransform(glm.Translate3D(0, 0, -50))
	far := rect.Depth(projection.Mul4(view))
	c.Assert(near < far, qt.IsTrue)
	c.Assert(near > 0 && far < 1, qt.IsTrue)
}
