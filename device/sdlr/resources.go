// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package sdlr

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

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

// colour returns the albedo uniform as an SDL colour, white when unset.
func (m *material) colour() sdl.Color {
	albedo := glmWhite
	if v, ok := m.Uniform("Albedo"); ok {
		albedo = v.Vec4(glmWhite)
	}
	return sdl.Color{
		R: channel(albedo[0]),
		G: channel(albedo[1]),
		B: channel(albedo[2]),
		A: channel(albedo[3]),
	}
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

// texture uploads its pixels on first use, SDL textures belong to a
// renderer which may not exist when the resource is created.
type texture struct {
	resource.TextureData
	arena *device.Arena[resource.Texture]
	sdl   *sdl.Texture
}

func (t *texture) upload(r *sdl.Renderer) (*sdl.Texture, error) {
	if t.sdl != nil {
		return t.sdl, nil
	}
	img := t.Pixels()
	tex, err := r.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STATIC, int32(t.Width()), int32(t.Height()))
	if err != nil {
		return nil, err
	}
	if err := tex.Update(nil, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
		tex.Destroy()
		return nil, err
	}
	if err := tex.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		tex.Destroy()
		return nil, err
	}
	t.sdl = tex
	return tex, nil
}

// Unload implements resource.Resource
func (t *texture) Unload() {
	t.arena.Remove(t.ID())
	if t.sdl != nil {
		t.sdl.Destroy()
		t.sdl = nil
	}
	t.SetValid(false)
}
