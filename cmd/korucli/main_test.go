// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
)

var assets = fstest.MapFS{
	"meshes/tri.json":     {Data: []byte(`{"Name": "Tri", "Materials": ["plain.json"], "Vertices": [{"Position": [0, 0, 0]}, {"Position": [1, 0, 0]}, {"Position": [0, 1, 0]}], "Indices": [0, 1, 2]}`)},
	"materials/plain.json": {Data: []byte(`{"Name": "Plain", "UsedShader": "BuiltinShader", "MaterialParams": {"Roughness": 0.5}}`)},
}

func engine(c *qt.C) *core.Engine {
	cfg := core.DefaultConfiguration()
	cfg.Renderer.Backend = string(device.Headless)
	cfg.Log.Level = "error"
	e, err := core.NewEngine(cfg, core.WithAssets(assets))
	c.Assert(err, qt.IsNil)
	c.Assert(e.Start(device.OffscreenWindow{Width: 32, Height: 32}), qt.IsNil)
	c.Cleanup(e.Close)
	return e
}

func TestInspect(t *testing.T) {
	c := qt.New(t)
	e := engine(c)

	report, err := inspect(e, []string{"mesh:tri.json", "material:plain.json", "texture:missing.png"}, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(report.Device.Backend, qt.Equals, device.Headless)
	c.Assert(report.Frames, qt.HasLen, 2)
	c.Assert(report.Frames[1].Draws, qt.Equals, 1)
	c.Assert(report.Errors, qt.HasLen, 1)
	c.Assert(report.Cache.Meshes, qt.Equals, 2)

	names := map[string]bool{}
	for _, r := range report.Resources {
		names[r.Type+":"+r.Name] = true
	}
	c.Assert(names["mesh:Tri"], qt.IsTrue)
	c.Assert(names["material:Plain"], qt.IsTrue)
	c.Assert(names["mesh:"+resource.BuiltinRectangleMesh], qt.IsTrue)

	var buf bytes.Buffer
	c.Assert(writeReport(&buf, report), qt.IsNil)
	var decoded map[string]interface{}
	c.Assert(json.Unmarshal(buf.Bytes(), &decoded), qt.IsNil)
	c.Assert(decoded["device"], qt.Not(qt.IsNil))
}

func TestInspectBadArgument(t *testing.T) {
	c := qt.New(t)
	e := engine(c)
	_, err := inspect(e, []string{"sound:boom.wav"}, 1)
	c.Assert(err, qt.ErrorMatches, `"sound:boom.wav": expected type:file.*`)
}
