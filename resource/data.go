// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"image"
	"sort"

	glm "github.com/go-gl/mathgl/mgl32"
)

// MeshData holds the CPU side of a mesh. Backends embed it and
// implement Unload.
type MeshData struct {
	Base

	vertices  []Vertex
	indices   []uint32
	subMeshes []SubMesh
	min, max  glm.Vec3
	materials []Material
}

// Setup initialises the mesh from desc. The mesh gets an ID even when
// desc is malformed, in which case it stays invalid and the validation
// error is returned.
func (m *MeshData) Setup(desc *MeshDesc) error {
	m.Base.Init(MeshType, desc.Name)
	if err := desc.Validate(); err != nil {
		return err
	}
	m.vertices = desc.Vertices
	m.indices = desc.Indices
	m.subMeshes = desc.SubMeshes
	if len(m.subMeshes) == 0 {
		m.subMeshes = []SubMesh{{Name: desc.Name, IndexCount: uint32(len(desc.Indices))}}
	}
	if desc.BoundsMin == desc.BoundsMax {
		desc.ComputeBounds()
	}
	m.min, m.max = desc.BoundsMin, desc.BoundsMax
	m.materials = append([]Material(nil), desc.ResolvedMaterials...)
	m.SetValid(true)
	return nil
}

// Vertices implements Mesh
func (m *MeshData) Vertices() []Vertex { return m.vertices }

// Indices implements Mesh
func (m *MeshData) Indices() []uint32 { return m.indices }

// SubMeshes implements Mesh
func (m *MeshData) SubMeshes() []SubMesh { return m.subMeshes }

// IndexCount implements Mesh
func (m *MeshData) IndexCount() uint32 { return uint32(len(m.indices)) }

// Bounds implements Mesh
func (m *MeshData) Bounds() (glm.Vec3, glm.Vec3) { return m.min, m.max }

// Materials implements Mesh
func (m *MeshData) Materials() []Material { return m.materials }

// MaterialData holds the CPU side of a material.
type MaterialData struct {
	Base

	shader   Shader
	textures map[TextureSlot]Texture
	uniforms map[string]MaterialValue
	buffer   []byte
}

// Setup initialises the material from desc. The material is valid when
// its resolved shader is.
func (m *MaterialData) Setup(desc *MaterialDesc) error {
	m.Base.Init(MaterialType, desc.Name)
	m.shader = desc.ResolvedShader
	m.textures = make(map[TextureSlot]Texture, len(desc.ResolvedTextures))
	for slot, tex := range desc.ResolvedTextures {
		if tex != nil {
			m.textures[slot] = tex
		}
	}
	m.uniforms = make(map[string]MaterialValue, len(desc.Uniforms))
	for name, value := range desc.Uniforms {
		m.uniforms[name] = value
	}
	if m.shader == nil || !m.shader.Valid() {
		return ErrInvalidResource
	}
	m.buffer = m.shader.Layout().Pack(m.uniforms)
	m.SetValid(true)
	return nil
}

// Shader implements Material
func (m *MaterialData) Shader() Shader { return m.shader }

// Texture implements Material
func (m *MaterialData) Texture(slot TextureSlot) Texture { return m.textures[slot] }

// Textures implements Material
func (m *MaterialData) Textures() map[TextureSlot]Texture { return m.textures }

// Uniform implements Material
func (m *MaterialData) Uniform(name string) (MaterialValue, bool) {
	v, ok := m.uniforms[name]
	return v, ok
}

// Uniforms implements Material
func (m *MaterialData) Uniforms() map[string]MaterialValue { return m.uniforms }

// UniformBuffer implements Material
func (m *MaterialData) UniformBuffer() []byte { return m.buffer }

// ShaderData holds the CPU side of a shader program. Whether the program
// is valid is decided by the backend compiling it.
type ShaderData struct {
	Base

	stages []ShaderStage
	layout UniformLayout
}

// Setup initialises the shader from desc and its reflected layout.
func (s *ShaderData) Setup(desc *ShaderDesc, layout UniformLayout) {
	s.Base.Init(ShaderType, desc.Name)
	s.stages = s.stages[:0]
	for stage := range desc.Sources {
		s.stages = append(s.stages, stage)
	}
	sort.Slice(s.stages, func(i, j int) bool { return s.stages[i] < s.stages[j] })
	s.layout = layout
}

// Stages implements Shader
func (s *ShaderData) Stages() []ShaderStage { return s.stages }

// Layout implements Shader
func (s *ShaderData) Layout() UniformLayout { return s.layout }

// TextureData holds the CPU side of a texture.
type TextureData struct {
	Base

	image *image.RGBA
}

// Setup initialises the texture from desc.
func (t *TextureData) Setup(desc *TextureDesc) error {
	t.Base.Init(TextureType, desc.Name)
	if err := desc.Validate(); err != nil {
		return err
	}
	t.image = desc.Image
	t.SetValid(true)
	return nil
}

// Width implements Texture
func (t *TextureData) Width() int {
	if t.image == nil {
		return 0
	}
	return t.image.Bounds().Dx()
}

// Height implements Texture
func (t *TextureData) Height() int {
	if t.image == nil {
		return 0
	}
	return t.image.Bounds().Dy()
}

// Pixels returns the RGBA image the texture was built from.
func (t *TextureData) Pixels() *image.RGBA { return t.image }
