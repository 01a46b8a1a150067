// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource_test

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/resource"
)

func TestIDsAreUnique(t *testing.T) {
	c := qt.New(t)
	seen := make(map[resource.ID]bool)
	for i := 0; i < 1000; i++ {
		id := resource.NewID()
		c.Assert(id, qt.Not(qt.Equals), resource.InvalidID)
		c.Assert(seen[id], qt.IsFalse)
		seen[id] = true
	}
}

func TestBaseRefCount(t *testing.T) {
	c := qt.New(t)
	var b resource.Base
	b.Init(resource.TextureType, "tex")
	c.Assert(b.RefCount(), qt.Equals, int32(0))
	c.Assert(b.Refer(), qt.Equals, int32(1))
	c.Assert(b.Refer(), qt.Equals, int32(2))
	c.Assert(b.Unrefer(), qt.Equals, int32(1))
	c.Assert(b.Type(), qt.Equals, resource.TextureType)
	c.Assert(b.Name(), qt.Equals, "tex")
	c.Assert(b.Valid(), qt.IsFalse)
}

func TestHandleBits(t *testing.T) {
	c := qt.New(t)
	h := resource.NewHandle[resource.Mesh](resource.ID(0xdead0000beef1234))
	c.Assert(h.Bits(), qt.Equals, uint64(0x1234))
	c.Assert(h.IsZero(), qt.IsFalse)

	var nilMesh resource.Mesh
	c.Assert(resource.HandleOf(nilMesh).IsZero(), qt.IsTrue)
}

func TestReservedNames(t *testing.T) {
	c := qt.New(t)
	for _, typ := range resource.Types {
		c.Assert(resource.IsReserved(resource.BuiltinName(typ)), qt.IsTrue, qt.Commentf("%s", typ))
	}
	c.Assert(resource.IsReserved("Crate"), qt.IsFalse)
}

func TestParseTextureSlot(t *testing.T) {
	c := qt.New(t)
	slot, err := resource.ParseTextureSlot("albedo")
	c.Assert(err, qt.IsNil)
	c.Assert(slot, qt.Equals, resource.AlbedoSlot)

	slot, err = resource.ParseTextureSlot("Custom2")
	c.Assert(err, qt.IsNil)
	c.Assert(slot, qt.Equals, resource.Custom0Slot+2)
	c.Assert(slot.String(), qt.Equals, "Custom2")

	_, err = resource.ParseTextureSlot("Shininess")
	c.Assert(err, qt.ErrorIs, resource.ErrMalformedDesc)
}

func TestValueFromFloats(t *testing.T) {
	c := qt.New(t)
	v, err := resource.ValueFromFloats([]float32{1, 2, 3})
	c.Assert(err, qt.IsNil)
	c.Assert(v.Kind, qt.Equals, resource.Vector3Value)
	c.Assert(v.Vec4(glm.Vec4{0, 0, 0, 1}), qt.Equals, glm.Vec4{1, 2, 3, 1})

	_, err = resource.ValueFromFloats([]float32{1, 2, 3, 4, 5})
	c.Assert(err, qt.ErrorIs, resource.ErrMalformedDesc)
}

func TestUniformLayoutPack(t *testing.T) {
	c := qt.New(t)
	layout := resource.UniformLayout{
		Block: "MaterialUBO",
		Size:  32,
		Uniforms: map[string]resource.UniformInfo{
			"Roughness": {Offset: 0, Size: 4, Kind: resource.FloatValue},
			"Color":     {Offset: 16, Size: 16, Kind: resource.Vector4Value},
		},
	}
	buf := layout.Pack(map[string]resource.MaterialValue{
		"Roughness":         resource.Float(0.5),
		"MaterialUBO.Color": resource.Vec4(glm.Vec4{1, 0, 0, 1}),
		"Unused":            resource.Float(9),
	})
	c.Assert(buf, qt.HasLen, 32)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	c.Assert(f(0), qt.Equals, float32(0.5))
	c.Assert(f(4), qt.Equals, float32(0))
	c.Assert(f(16), qt.Equals, float32(1))
	c.Assert(f(28), qt.Equals, float32(1))
}

type testMesh struct{ resource.MeshData }

func (*testMesh) Unload() {}

func TestMeshDataSetup(t *testing.T) {
	c := qt.New(t)
	desc := &resource.MeshDesc{
		DescInfo: resource.DescInfo{Name: "tri"},
		Vertices: []resource.Vertex{
			{Position: glm.Vec3{-1, 0, 0}},
			{Position: glm.Vec3{1, 0, 0}},
			{Position: glm.Vec3{0, 2, -1}},
		},
		Indices: []uint32{0, 1, 2},
	}
	var m testMesh
	c.Assert(m.Setup(desc), qt.IsNil)
	c.Assert(m.Valid(), qt.IsTrue)
	c.Assert(m.IndexCount(), qt.Equals, uint32(3))
	c.Assert(m.SubMeshes(), qt.HasLen, 1)
	min, max := m.Bounds()
	c.Assert(min, qt.Equals, glm.Vec3{-1, 0, -1})
	c.Assert(max, qt.Equals, glm.Vec3{1, 2, 0})

	var empty testMesh
	err := empty.Setup(&resource.MeshDesc{DescInfo: resource.DescInfo{Name: "empty"}})
	c.Assert(errors.Is(err, resource.ErrMalformedDesc), qt.IsTrue)
	c.Assert(empty.Valid(), qt.IsFalse)
	c.Assert(empty.ID(), qt.Not(qt.Equals), resource.InvalidID)
}

func TestMeshDescRejectsOutOfRangeIndices(t *testing.T) {
	c := qt.New(t)
	desc := &resource.MeshDesc{
		Vertices: make([]resource.Vertex, 2),
		Indices:  []uint32{0, 1, 2},
	}
	c.Assert(desc.Validate(), qt.ErrorIs, resource.ErrMalformedDesc)
}

func TestTextureDescValidate(t *testing.T) {
	c := qt.New(t)
	c.Assert((&resource.TextureDesc{}).Validate(), qt.ErrorIs, resource.ErrMalformedDesc)
	desc := &resource.TextureDesc{Image: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	c.Assert(desc.Validate(), qt.IsNil)
}

func TestParseType(t *testing.T) {
	c := qt.New(t)
	for _, typ := range resource.Types {
		parsed, ok := resource.ParseType(typ.String())
		c.Assert(ok, qt.IsTrue)
		c.Assert(parsed, qt.Equals, typ)
	}
	_, ok := resource.ParseType("sound")
	c.Assert(ok, qt.IsFalse)
}
