// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/resource"
)

// DrawUniforms are uploaded before every draw.
type DrawUniforms struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

// MVP returns projection * view * model.
func (u DrawUniforms) MVP() glm.Mat4 {
	return u.Projection.Mul4(u.View).Mul4(u.Model)
}

// Backend is the set of state changes an Executor drives.
type Backend interface {
	Clear(color glm.Vec4, depth float32) error
	SetViewport(x, y, width, height float32) error
	BindMaterial(material resource.Material) error
	BindMesh(mesh resource.Mesh) error
	UploadDrawUniforms(uniforms DrawUniforms) error
	DrawIndexed(indexCount, firstIndex, instanceCount uint32) error
}

// Executor replays command lists against a Backend, resolving draw
// handles through the device arenas.
type Executor struct {
	Meshes    *Arena[resource.Mesh]
	Materials *Arena[resource.Material]
	Backend   Backend
	Log       *log.Entry

	view       glm.Mat4
	projection glm.Mat4
}

// NewExecutor creates an executor with identity camera matrices.
func NewExecutor(meshes *Arena[resource.Mesh], materials *Arena[resource.Material], backend Backend, logger *log.Entry) *Executor {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Executor{
		Meshes:     meshes,
		Materials:  materials,
		Backend:    backend,
		Log:        logger,
		view:       glm.Ident4(),
		projection: glm.Ident4(),
	}
}

// Execute replays list in order. Bind calls are skipped when the same
// material or mesh is already bound. Draws whose mesh no longer resolves
// are skipped and counted, a draw without a resolvable material is
// skipped as well.
func (e *Executor) Execute(list *command.List) (Stats, error) {
	var (
		stats         Stats
		boundMaterial resource.ID
		boundMesh     resource.ID
	)
	for i, cmd := range list.Commands() {
		switch c := cmd.(type) {
		case command.Clear:
			if err := e.Backend.Clear(c.Color, c.Depth); err != nil {
				return stats, fmt.Errorf("device.Execute(): command %d: %w", i, err)
			}
			stats.Clears++
		case command.SetViewport:
			if err := e.Backend.SetViewport(c.X, c.Y, c.Width, c.Height); err != nil {
				return stats, fmt.Errorf("device.Execute(): command %d: %w", i, err)
			}
			stats.Viewports++
		case command.SetCamera:
			e.view, e.projection = c.View, c.Projection
			stats.Cameras++
		case command.DrawIndexed:
			call := c.Call
			mesh, ok := e.Meshes.Resolve(call.Mesh)
			if !ok {
				e.Log.WithField("mesh", call.Mesh.ID()).Debug("skipping draw of unknown mesh")
				stats.Skipped++
				continue
			}
			material, ok := e.Materials.Resolve(call.Material)
			if !ok {
				e.Log.WithField("material", call.Material.ID()).Debug("skipping draw of unknown material")
				stats.Skipped++
				continue
			}
			if material.ID() != boundMaterial {
				if err := e.Backend.BindMaterial(material); err != nil {
					return stats, fmt.Errorf("device.Execute(): command %d: %w", i, err)
				}
				boundMaterial = material.ID()
				stats.MaterialBinds++
			}
			if mesh.ID() != boundMesh {
				if err := e.Backend.BindMesh(mesh); err != nil {
					return stats, fmt.Errorf("device.Execute(): command %d: %w", i, err)
				}
				boundMesh = mesh.ID()
				stats.MeshBinds++
			}
			if err := e.Backend.UploadDrawUniforms(DrawUniforms{Model: call.Model, View: e.view, Projection: e.projection}); err != nil {
				return stats, fmt.Errorf("device.Execute(): command %d: %w", i, err)
			}
			count := call.IndexCount
			if count == 0 {
				count = mesh.IndexCount()
			}
			instances := call.InstanceCount
			if instances == 0 {
				instances = 1
			}
			if err := e.Backend.DrawIndexed(count, call.IndexOffset, instances); err != nil {
				return stats, fmt.Errorf("device.Execute(): command %d: %w", i, err)
			}
			stats.Draws++
			stats.Indices += int(count * instances)
		default:
			e.Log.WithField("kind", cmd.Kind()).Warn("unknown command")
		}
	}
	return stats, nil
}
