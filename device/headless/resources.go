// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package headless

import (
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
)

type mesh struct {
	resource.MeshData
	arena *device.Arena[resource.Mesh]
}

// Unload implements resource.Resource
func (m *mesh) Unload() {
	m.arena.Remove(m.ID())
	m.SetValid(false)
}

type material struct {
	resource.MaterialData
	arena *device.Arena[resource.Material]
}

// Unload implements resource.Resource
func (m *material) Unload() {
	m.arena.Remove(m.ID())
	m.SetValid(false)
}

type shader struct {
	resource.ShaderData
	arena *device.Arena[resource.Shader]
}

// Unload implements resource.Resource
func (s *shader) Unload() {
	s.arena.Remove(s.ID())
	s.SetValid(false)
}

type texture struct {
	resource.TextureData
	arena *device.Arena[resource.Texture]
}

// Unload implements resource.Resource
func (t *texture) Unload() {
	t.arena.Remove(t.ID())
	t.SetValid(false)
}
