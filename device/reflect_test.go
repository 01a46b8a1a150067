// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
)

const fragSource = `#version 450
layout(std140, binding = 2) uniform MaterialUBO {
	vec4 Albedo;   // base colour
	float Metallic;
	float Roughness;
	vec3 Emissive;
	float AO;
	mat4 Extra;
};
uniform sampler2D AlbedoMap;
void main() {}
`

func TestReflectUniformBlockStd140(t *testing.T) {
	c := qt.New(t)
	layout, err := device.ReflectUniformBlock([]byte(fragSource))
	c.Assert(err, qt.IsNil)
	c.Assert(layout.Block, qt.Equals, device.MaterialBlock)
	c.Assert(layout.Binding, qt.Equals, uint32(2))
	c.Assert(layout.Uniforms["Albedo"].Offset, qt.Equals, 0)
	c.Assert(layout.Uniforms["Metallic"].Offset, qt.Equals, 16)
	c.Assert(layout.Uniforms["Roughness"].Offset, qt.Equals, 20)
	c.Assert(layout.Uniforms["Emissive"].Offset, qt.Equals, 32)
	c.Assert(layout.Uniforms["AO"].Offset, qt.Equals, 44)
	c.Assert(layout.Uniforms["Extra"].Offset, qt.Equals, 48)
	c.Assert(layout.Uniforms["Extra"].Kind, qt.Equals, resource.Matrix4Value)
	c.Assert(layout.Size, qt.Equals, 112)
}

func TestReflectUniformBlockAbsent(t *testing.T) {
	c := qt.New(t)
	layout, err := device.ReflectUniformBlock([]byte("void main() {}"))
	c.Assert(err, qt.IsNil)
	c.Assert(layout.Block, qt.Equals, "")
	c.Assert(layout.Size, qt.Equals, 0)
}

func TestReflectUniformBlockUnsupported(t *testing.T) {
	c := qt.New(t)
	_, err := device.ReflectUniformBlock([]byte("uniform MaterialUBO { int Count; };"))
	c.Assert(err, qt.ErrorIs, device.ErrUnsupportedUniform)
}

func TestCheckShaderSources(t *testing.T) {
	c := qt.New(t)
	desc := &resource.ShaderDesc{
		DescInfo: resource.DescInfo{Name: "s"},
		Sources: map[resource.ShaderStage][]byte{
			resource.VertexStage:   []byte("void main() { gl_Position = vec4(0); }"),
			resource.FragmentStage: []byte(fragSource),
		},
	}
	c.Assert(device.CheckShaderSources(desc), qt.IsNil)

	delete(desc.Sources, resource.FragmentStage)
	c.Assert(device.CheckShaderSources(desc), qt.ErrorIs, resource.ErrMalformedDesc)

	desc.Sources[resource.FragmentStage] = []byte("void notmain() {}")
	c.Assert(device.CheckShaderSources(desc), qt.ErrorIs, resource.ErrMalformedDesc)
}
