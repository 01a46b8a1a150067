// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"sync"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/resource/manager"
)

// Drawable is a mesh placed in the world. It holds one reference to its
// mesh, which in turn holds its materials.
type Drawable struct {
	manager  *manager.Manager
	mesh     resource.Mesh
	fallback resource.Material

	mutex     sync.RWMutex
	transform glm.Mat4
}

// NewDrawable loads the mesh config through m, using the builtin
// rectangle when it cannot be loaded. It returns nil when not even the
// builtin is available.
func NewDrawable(m *manager.Manager, meshConfig string) *Drawable {
	mesh, err := resource.As[resource.Mesh](m.LoadOrBuiltin(resource.MeshType, meshConfig), resource.MeshType)
	if err != nil {
		return nil
	}
	return &Drawable{
		manager:   m,
		mesh:      mesh,
		transform: glm.Ident4(),
	}
}

// Mesh returns the drawn mesh.
func (d *Drawable) Mesh() resource.Mesh { return d.mesh }

// SetTransform sets the model matrix.
// Has to be thread-safe
func (d *Drawable) SetTransform(m glm.Mat4) {
	d.mutex.Lock()
	d.transform = m
	d.mutex.Unlock()
}

// Transform gets the model matrix.
// Has to be thread-safe
func (d *Drawable) Transform() glm.Mat4 {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.transform
}

// material returns the material of a sub-mesh, the builtin material when
// the mesh has none for it.
func (d *Drawable) material(sm resource.SubMesh) resource.Material {
	materials := d.mesh.Materials()
	if sm.MaterialIndex >= 0 && sm.MaterialIndex < len(materials) && materials[sm.MaterialIndex] != nil {
		return materials[sm.MaterialIndex]
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.fallback == nil {
		d.fallback, _ = resource.As[resource.Material](d.manager.Builtin(resource.MaterialType), resource.MaterialType)
	}
	return d.fallback
}

// Depth returns the normalised depth of the mesh centre under viewProjection.
func (d *Drawable) Depth(viewProjection glm.Mat4) float32 {
	min, max := d.mesh.Bounds()
	centre := min.Add(max).Mul(0.5)
	clip := viewProjection.Mul4(d.Transform()).Mul4x1(centre.Vec4(1))
	if clip[3] == 0 {
		return 0
	}
	return clip[2]/clip[3]*0.5 + 0.5
}

// Record appends one draw per sub-mesh to list.
func (d *Drawable) Record(list *command.List, viewProjection glm.Mat4) {
	model := d.Transform()
	depth := d.Depth(viewProjection)
	mesh := resource.HandleOf(d.mesh)
	for _, sm := range d.mesh.SubMeshes() {
		material := d.material(sm)
		call := command.DrawCall{
			IndexCount:    sm.IndexCount,
			IndexOffset:   sm.BaseIndex,
			VertexOffset:  sm.BaseVertex,
			InstanceCount: 1,
			Mesh:          mesh,
			Material:      resource.HandleOf(material),
			Model:         model,
			Depth:         depth,
		}
		if material != nil {
			call.Pipeline = resource.HandleOf(material.Shader())
		}
		list.Draw(call)
	}
}

// Release drops the references the drawable holds.
func (d *Drawable) Release() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.fallback != nil {
		d.manager.Release(d.fallback.ID())
		d.fallback = nil
	}
	if d.mesh != nil {
		d.manager.Release(d.mesh.ID())
	}
}
