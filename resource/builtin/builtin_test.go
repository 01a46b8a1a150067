// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package builtin_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/resource/builtin"
)

func TestDescriptorsCarryReservedNames(t *testing.T) {
	c := qt.New(t)
	for _, typ := range resource.Types {
		desc, err := builtin.Desc(typ)
		c.Assert(err, qt.IsNil)
		c.Assert(desc.Type(), qt.Equals, typ)
		c.Assert(desc.Info().Name, qt.Equals, resource.BuiltinName(typ))
	}
	_, err := builtin.Desc(resource.Type(42))
	c.Assert(err, qt.ErrorIs, resource.ErrUnknownType)
}

func TestShaderSourcesCompile(t *testing.T) {
	c := qt.New(t)
	desc, err := builtin.ShaderDesc()
	c.Assert(err, qt.IsNil)
	c.Assert(device.CheckShaderSources(desc), qt.IsNil)

	layout, err := device.ReflectShader(desc)
	c.Assert(err, qt.IsNil)
	c.Assert(layout.Block, qt.Equals, device.MaterialBlock)
	for name := range builtin.MaterialDesc().Uniforms {
		_, ok := layout.Uniforms[name]
		c.Assert(ok, qt.IsTrue, qt.Commentf("uniform %s", name))
	}
}

func TestRectangle(t *testing.T) {
	c := qt.New(t)
	desc := builtin.RectangleDesc()
	c.Assert(desc.Validate(), qt.IsNil)
	c.Assert(desc.BoundsMax[0]-desc.BoundsMin[0], qt.Equals, float32(1))
	c.Assert(desc.Materials, qt.DeepEquals, []string{resource.BuiltinMaterial})
}

func TestSourceMissing(t *testing.T) {
	c := qt.New(t)
	_, err := builtin.Source(builtin.Prefix + "nope.glsl")
	c.Assert(err, qt.ErrorIs, resource.ErrMissingAsset)
	c.Assert(builtin.IsBuiltinPath(builtin.VertexSource), qt.IsTrue)
}
