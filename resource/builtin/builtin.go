// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package builtin provides the descriptors of the fallback resources the
// resource cache generates at startup.
package builtin

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/packr"

	"github.com/devblok/korender/resource"
)

// Prefix marks asset paths served from the builtin box.
const Prefix = "Builtin/"

// Shaders holds the builtin shader sources.
var Shaders = packr.NewBox("./shaders")

// Builtin shader stage sources
const (
	VertexSource   = Prefix + "builtin.vert"
	FragmentSource = Prefix + "builtin.frag"
)

// IsBuiltinPath reports whether path refers to the builtin box.
func IsBuiltinPath(path string) bool {
	return strings.HasPrefix(path, Prefix)
}

// Source returns a file from the builtin box.
func Source(path string) ([]byte, error) {
	name := strings.TrimPrefix(path, Prefix)
	if !Shaders.Has(name) {
		return nil, fmt.Errorf("builtin %q: %w", name, resource.ErrMissingAsset)
	}
	return Shaders.Find(name)
}

// Desc returns the descriptor of the builtin resource of type t.
func Desc(t resource.Type) (resource.Desc, error) {
	switch t {
	case resource.TextureType:
		return TextureDesc(), nil
	case resource.ShaderType:
		return ShaderDesc()
	case resource.MaterialType:
		return MaterialDesc(), nil
	case resource.MeshType:
		return RectangleDesc(), nil
	}
	return nil, resource.ErrUnknownType
}

// TextureDesc describes a 2x2 opaque white texture.
func TextureDesc() *resource.TextureDesc {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &resource.TextureDesc{
		DescInfo: resource.DescInfo{Name: resource.BuiltinTexture, FilePath: Prefix + resource.BuiltinTexture},
		Image:    img,
	}
}

// ShaderDesc describes the default PBR shader.
func ShaderDesc() (*resource.ShaderDesc, error) {
	desc := &resource.ShaderDesc{
		DescInfo: resource.DescInfo{Name: resource.BuiltinShader, FilePath: Prefix + resource.BuiltinShader},
		Stages: map[resource.ShaderStage]string{
			resource.VertexStage:   VertexSource,
			resource.FragmentStage: FragmentSource,
		},
		Sources: make(map[resource.ShaderStage][]byte),
	}
	for stage, path := range desc.Stages {
		src, err := Source(path)
		if err != nil {
			return nil, err
		}
		desc.Sources[stage] = src
	}
	return desc, nil
}

// MaterialDesc describes the default PBR material, a white dielectric
// sampling the builtin texture.
func MaterialDesc() *resource.MaterialDesc {
	return &resource.MaterialDesc{
		DescInfo: resource.DescInfo{Name: resource.BuiltinMaterial, FilePath: Prefix + resource.BuiltinMaterial},
		Shader:   resource.BuiltinShader,
		Uniforms: map[string]resource.MaterialValue{
			"Albedo":    resource.Vec4(glm.Vec4{1, 1, 1, 1}),
			"Metallic":  resource.Float(0),
			"Roughness": resource.Float(0.5),
			"AO":        resource.Float(1),
		},
		TexturePaths: map[resource.TextureSlot]string{
			resource.AlbedoSlot: resource.BuiltinTexture,
		},
	}
}

// RectangleDesc describes a unit rectangle in the XY plane facing +Z,
// drawn with the builtin material.
func RectangleDesc() *resource.MeshDesc {
	normal := glm.Vec3{0, 0, 1}
	tangent := glm.Vec3{1, 0, 0}
	desc := &resource.MeshDesc{
		DescInfo: resource.DescInfo{Name: resource.BuiltinRectangleMesh, FilePath: Prefix + resource.BuiltinRectangleMesh},
		Vertices: []resource.Vertex{
			{Position: glm.Vec3{-0.5, -0.5, 0}, Normal: normal, TexCoord: glm.Vec2{0, 1}, Tangent: tangent},
			{Position: glm.Vec3{0.5, -0.5, 0}, Normal: normal, TexCoord: glm.Vec2{1, 1}, Tangent: tangent},
			{Position: glm.Vec3{0.5, 0.5, 0}, Normal: normal, TexCoord: glm.Vec2{1, 0}, Tangent: tangent},
			{Position: glm.Vec3{-0.5, 0.5, 0}, Normal: normal, TexCoord: glm.Vec2{0, 0}, Tangent: tangent},
		},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
		SubMeshes: []resource.SubMesh{{Name: resource.BuiltinRectangleMesh, IndexCount: 6}},
		Materials: []string{resource.BuiltinMaterial},
	}
	desc.ComputeBounds()
	return desc
}
