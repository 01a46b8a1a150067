// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"fmt"
	"image"
	"math"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Desc is a transient, type specific description of how to build a
// resource. Descriptors are produced by loaders and consumed once by
// a Factory.
type Desc interface {
	Info() *DescInfo
	Type() Type
}

// DescInfo carries the fields shared by every descriptor.
type DescInfo struct {
	// Name is unique within the resource type.
	Name string

	// FilePath is the config or asset file the descriptor came from.
	FilePath string
}

// Info implements Desc
func (d *DescInfo) Info() *DescInfo { return d }

// Vertex is the vertex layout of every mesh.
type Vertex struct {
	Position glm.Vec3
	Normal   glm.Vec3
	TexCoord glm.Vec2
	Tangent  glm.Vec3
}

// SubMesh is an index range drawn with a single material.
type SubMesh struct {
	Name          string
	BaseVertex    uint32
	BaseIndex     uint32
	IndexCount    uint32
	MaterialIndex int
}

// MeshDesc describes a mesh.
type MeshDesc struct {
	DescInfo

	Vertices  []Vertex
	Indices   []uint32
	SubMeshes []SubMesh
	BoundsMin glm.Vec3
	BoundsMax glm.Vec3

	// Materials names the material config of each sub-mesh.
	Materials []string

	// ResolvedMaterials holds one acquired material per Materials entry,
	// filled by the cache before the descriptor reaches a Factory.
	ResolvedMaterials []Material
}

// Type implements Desc
func (*MeshDesc) Type() Type { return MeshType }

// Validate checks that the descriptor describes drawable geometry.
func (d *MeshDesc) Validate() error {
	if len(d.Vertices) == 0 || len(d.Indices) == 0 {
		return fmt.Errorf("mesh %q has no geometry: %w", d.Name, ErrMalformedDesc)
	}
	for _, idx := range d.Indices {
		if int(idx) >= len(d.Vertices) {
			return fmt.Errorf("mesh %q index %d out of range: %w", d.Name, idx, ErrMalformedDesc)
		}
	}
	for _, sm := range d.SubMeshes {
		if uint64(sm.BaseIndex)+uint64(sm.IndexCount) > uint64(len(d.Indices)) {
			return fmt.Errorf("mesh %q sub-mesh %q out of range: %w", d.Name, sm.Name, ErrMalformedDesc)
		}
	}
	return nil
}

// ComputeBounds sets BoundsMin and BoundsMax from the vertex positions.
func (d *MeshDesc) ComputeBounds() {
	if len(d.Vertices) == 0 {
		d.BoundsMin, d.BoundsMax = glm.Vec3{}, glm.Vec3{}
		return
	}
	min := glm.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := glm.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range d.Vertices {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	d.BoundsMin, d.BoundsMax = min, max
}

// Dependencies returns the resources the descriptor holds references to.
func (d *MeshDesc) Dependencies() []Resource {
	var deps []Resource
	for _, m := range d.ResolvedMaterials {
		if m != nil {
			deps = append(deps, m)
		}
	}
	return deps
}

// MaterialDesc describes a material.
type MaterialDesc struct {
	DescInfo

	// Shader names the shader config the material renders with.
	Shader       string
	Uniforms     map[string]MaterialValue
	TexturePaths map[TextureSlot]string

	// Filled by the cache before the descriptor reaches a Factory.
	ResolvedShader   Shader
	ResolvedTextures map[TextureSlot]Texture
}

// Type implements Desc
func (*MaterialDesc) Type() Type { return MaterialType }

// Dependencies returns the resources the descriptor holds references to.
func (d *MaterialDesc) Dependencies() []Resource {
	var deps []Resource
	if d.ResolvedShader != nil {
		deps = append(deps, d.ResolvedShader)
	}
	for _, t := range d.ResolvedTextures {
		if t != nil {
			deps = append(deps, t)
		}
	}
	return deps
}

// ShaderDesc describes a shader program.
type ShaderDesc struct {
	DescInfo

	// Stages maps each stage to its source path.
	Stages map[ShaderStage]string

	// Sources maps each stage to its source text.
	Sources map[ShaderStage][]byte
}

// Type implements Desc
func (*ShaderDesc) Type() Type { return ShaderType }

// TextureDesc describes a texture.
type TextureDesc struct {
	DescInfo

	Image *image.RGBA
}

// Type implements Desc
func (*TextureDesc) Type() Type { return TextureType }

// Validate checks that the texture has pixels.
func (d *TextureDesc) Validate() error {
	if d.Image == nil || d.Image.Bounds().Empty() {
		return fmt.Errorf("texture %q has no pixels: %w", d.Name, ErrMalformedDesc)
	}
	return nil
}

// Dependent is implemented by descriptors that carry acquired resources.
type Dependent interface {
	Dependencies() []Resource
}
