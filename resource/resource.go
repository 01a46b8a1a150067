// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package resource defines the engine's cached, reference counted rendering
// resources, the descriptors they are built from, and the contracts between
// the resource cache, asset loaders and graphics devices.
package resource

import (
	"fmt"
	"sync/atomic"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Type identifies the kind of a resource.
type Type int

// Resource types known to the cache.
const (
	MeshType Type = iota
	MaterialType
	ShaderType
	TextureType

	numTypes
)

// Types lists every resource type in builtin generation order.
var Types = [...]Type{TextureType, ShaderType, MaterialType, MeshType}

// Valid reports whether t is one of the known resource types.
func (t Type) Valid() bool {
	return t >= MeshType && t < numTypes
}

func (t Type) String() string {
	switch t {
	case MeshType:
		return "mesh"
	case MaterialType:
		return "material"
	case ShaderType:
		return "shader"
	case TextureType:
		return "texture"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType returns the type named by s as printed by String.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if t.String() == s {
			return t, true
		}
	}
	return numTypes, false
}

// Resource is a backend allocated object owned by the resource cache.
// Reference counting is explicit: every successful acquisition calls Refer,
// every release calls Unrefer.
type Resource interface {
	// ID returns the process-unique identifier assigned at construction.
	ID() ID

	// Name returns the name the resource is indexed under, unique per Type.
	Name() string

	// Type returns the resource type tag. It must be checked
	// before asserting a Resource to a concrete interface.
	Type() Type

	// Valid reports whether the backend successfully built the resource.
	Valid() bool

	// RefCount returns the current number of holders.
	RefCount() int32

	// Refer adds a holder and returns the new count.
	Refer() int32

	// Unrefer removes a holder and returns the new count.
	Unrefer() int32

	// Unload frees backend objects. Called exactly once by the cache.
	Unload()
}

// Mesh is geometry uploaded to a device.
type Mesh interface {
	Resource

	Vertices() []Vertex
	Indices() []uint32
	SubMeshes() []SubMesh
	IndexCount() uint32
	Bounds() (min, max glm.Vec3)

	// Materials returns the material bound to each sub-mesh, by
	// SubMesh.MaterialIndex. Entries may be nil.
	Materials() []Material
}

// Material is a shader plus the uniform values and textures it is fed with.
type Material interface {
	Resource

	Shader() Shader
	Texture(slot TextureSlot) Texture
	Textures() map[TextureSlot]Texture
	Uniform(name string) (MaterialValue, bool)
	Uniforms() map[string]MaterialValue

	// UniformBuffer returns the material values packed with the
	// shader's uniform block layout.
	UniformBuffer() []byte
}

// Shader is a linked shader program.
type Shader interface {
	Resource

	Stages() []ShaderStage
	Layout() UniformLayout
}

// Texture is a sampled image.
type Texture interface {
	Resource

	Width() int
	Height() int
}

// Factory constructs resources from descriptors. Graphics devices implement it.
// Returned resources may be non-nil but invalid when the backend rejected the
// descriptor, callers must check Valid.
type Factory interface {
	CreateMesh(desc *MeshDesc) (Mesh, error)
	CreateMaterial(desc *MaterialDesc) (Material, error)
	CreateShader(desc *ShaderDesc) (Shader, error)
	CreateTexture(desc *TextureDesc) (Texture, error)
}

// Loader turns asset config files into descriptors.
type Loader interface {
	LoadMesh(filename string) (*MeshDesc, error)
	LoadMaterial(filename string) (*MaterialDesc, error)
	LoadShader(filename string) (*ShaderDesc, error)
	LoadTexture(filename string) (*TextureDesc, error)
}

// Base implements the bookkeeping part of Resource. Backends embed it
// and call Init before handing the resource out.
type Base struct {
	id    ID
	name  string
	typ   Type
	valid bool
	refs  atomic.Int32
}

// Init assigns a fresh ID and resets the reference count.
func (b *Base) Init(typ Type, name string) {
	b.id = NewID()
	b.name = name
	b.typ = typ
	b.valid = false
	b.refs.Store(0)
}

// ID implements Resource
func (b *Base) ID() ID { return b.id }

// Name implements Resource
func (b *Base) Name() string { return b.name }

// Type implements Resource
func (b *Base) Type() Type { return b.typ }

// Valid implements Resource
func (b *Base) Valid() bool { return b.valid }

// SetValid marks the resource as usable or not.
func (b *Base) SetValid(valid bool) { b.valid = valid }

// RefCount implements Resource
func (b *Base) RefCount() int32 { return b.refs.Load() }

// Refer implements Resource
func (b *Base) Refer() int32 { return b.refs.Add(1) }

// Unrefer implements Resource
func (b *Base) Unrefer() int32 { return b.refs.Add(-1) }
