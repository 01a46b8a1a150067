// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sdlr implements a device on top of the SDL2 2D renderer.
// Meshes are transformed on the CPU and drawn as coloured, optionally
// textured, triangles.
package sdlr

import (
	"fmt"
	"sync"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
)

var glmWhite = glm.Vec4{1, 1, 1, 1}

func init() {
	device.Register(device.SDL, func(logger *log.Entry) (device.Device, error) {
		return New(logger), nil
	})
}

// Device implements device.Device with an SDL renderer. All methods
// must be called from the thread that initialised SDL.
type Device struct {
	log *log.Entry

	mu       sync.Mutex
	window   *Window
	renderer *sdl.Renderer
	info     device.Info

	meshes    *device.Arena[resource.Mesh]
	materials *device.Arena[resource.Material]
	shaders   *device.Arena[resource.Shader]
	textures  *device.Arena[resource.Texture]
	exec      *device.Executor

	// bound state
	viewport device.Viewport
	material *material
	mesh     *mesh
	mvp      glm.Mat4
	vertices []sdl.Vertex
	indices  []int32
}

// New creates an SDL device. A nil logger uses the standard logger.
func New(logger *log.Entry) *Device {
	if logger == nil {
		logger = log.WithField("backend", string(device.SDL))
	}
	d := &Device{
		log:       logger,
		meshes:    device.NewArena[resource.Mesh](),
		materials: device.NewArena[resource.Material](),
		shaders:   device.NewArena[resource.Shader](),
		textures:  device.NewArena[resource.Texture](),
		mvp:       glm.Ident4(),
	}
	d.exec = device.NewExecutor(d.meshes, d.materials, (*backend)(d), logger)
	return d
}

// Initialize implements device.Device, window must be a *Window.
func (d *Device) Initialize(window device.Window) error {
	w, ok := window.(*Window)
	if !ok || w == nil || w.Window == nil {
		return fmt.Errorf("sdlr.Initialize(): %w", device.ErrBadWindow)
	}
	r, err := sdl.CreateRenderer(w.Window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("sdlr.Initialize(): %w", err)
	}
	if err := r.SetDrawBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		r.Destroy()
		return fmt.Errorf("sdlr.Initialize(): %w", err)
	}
	info := device.Info{Name: "sdl", Backend: device.SDL}
	if ri, err := r.GetInfo(); err == nil {
		info.Name = ri.Name
		info.MaxTextureSize = int(ri.MaxTextureWidth)
	}
	if driver, err := sdl.GetCurrentVideoDriver(); err == nil {
		info.Driver = driver
	}

	d.mu.Lock()
	d.window, d.renderer, d.info = w, r, info
	d.mu.Unlock()

	width, height := w.Size()
	d.viewport = device.Viewport{Width: float32(width), Height: float32(height)}
	d.log.WithFields(log.Fields{"renderer": info.Name, "driver": info.Driver}).Info("sdl device initialized")
	return nil
}

// Backend implements device.Device
func (d *Device) Backend() device.BackendAPI { return device.SDL }

// Info implements device.Device
func (d *Device) Info() device.Info {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// CreateMesh implements resource.Factory
func (d *Device) CreateMesh(desc *resource.MeshDesc) (resource.Mesh, error) {
	m := &mesh{arena: d.meshes}
	if err := m.Setup(desc); err != nil {
		d.log.WithError(err).WithField("mesh", desc.Name).Warn("mesh rejected")
		return m, nil
	}
	d.meshes.Insert(m)
	return m, nil
}

// CreateMaterial implements resource.Factory
func (d *Device) CreateMaterial(desc *resource.MaterialDesc) (resource.Material, error) {
	m := &material{arena: d.materials}
	if err := m.Setup(desc); err != nil {
		d.log.WithError(err).WithField("material", desc.Name).Warn("material rejected")
		return m, nil
	}
	d.materials.Insert(m)
	return m, nil
}

// CreateShader implements resource.Factory. SDL has no programmable
// pipeline, the sources are only checked and reflected for the material
// layout.
func (d *Device) CreateShader(desc *resource.ShaderDesc) (resource.Shader, error) {
	s := &shader{arena: d.shaders}
	if err := device.CheckShaderSources(desc); err != nil {
		s.Setup(desc, resource.UniformLayout{})
		d.log.WithError(err).Warn("shader rejected")
		return s, nil
	}
	layout, err := device.ReflectShader(desc)
	s.Setup(desc, layout)
	if err != nil {
		d.log.WithError(err).WithField("shader", desc.Name).Warn("shader reflection failed")
		return s, nil
	}
	s.SetValid(true)
	d.shaders.Insert(s)
	return s, nil
}

// CreateTexture implements resource.Factory
func (d *Device) CreateTexture(desc *resource.TextureDesc) (resource.Texture, error) {
	t := &texture{arena: d.textures}
	if err := t.Setup(desc); err != nil {
		d.log.WithError(err).WithField("texture", desc.Name).Warn("texture rejected")
		return t, nil
	}
	if limit := d.Info().MaxTextureSize; limit > 0 && (t.Width() > limit || t.Height() > limit) {
		t.SetValid(false)
		d.log.WithField("texture", desc.Name).Warnf("texture exceeds %dx%d", limit, limit)
		return t, nil
	}
	d.textures.Insert(t)
	return t, nil
}

// ExecuteCommandList implements device.Device
func (d *Device) ExecuteCommandList(list *command.List) (device.Stats, error) {
	if d.renderer == nil {
		return device.Stats{}, fmt.Errorf("sdlr.ExecuteCommandList(): %w", device.ErrNotInitialized)
	}
	return d.exec.Execute(list)
}

// Present implements device.Presenter
func (d *Device) Present() error {
	if d.renderer == nil {
		return fmt.Errorf("sdlr.Present(): %w", device.ErrNotInitialized)
	}
	d.renderer.Present()
	return nil
}

// Destroy implements device.Device
func (d *Device) Destroy() {
	for _, t := range d.textures.Clear() {
		if tex, ok := t.(*texture); ok && tex.sdl != nil {
			tex.sdl.Destroy()
			tex.sdl = nil
		}
	}
	d.meshes.Clear()
	d.materials.Clear()
	d.shaders.Clear()
	d.material, d.mesh = nil, nil

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.renderer != nil {
		if err := d.renderer.Destroy(); err != nil {
			d.log.WithError(err).Warn("destroying renderer")
		}
		d.renderer = nil
	}
	d.window = nil
}

func channel(v float32) uint8 {
	return uint8(glm.Clamp(v, 0, 1)*255 + 0.5)
}

type backend Device

func (b *backend) Clear(color glm.Vec4, depth float32) error {
	if err := b.renderer.SetDrawColor(channel(color[0]), channel(color[1]), channel(color[2]), channel(color[3])); err != nil {
		return err
	}
	return b.renderer.Clear()
}

func (b *backend) SetViewport(x, y, width, height float32) error {
	b.viewport = device.Viewport{X: x, Y: y, Width: width, Height: height}
	return b.renderer.SetViewport(&sdl.Rect{X: int32(x), Y: int32(y), W: int32(width), H: int32(height)})
}

func (b *backend) BindMaterial(m resource.Material) error {
	bound, ok := m.(*material)
	if !ok {
		return fmt.Errorf("material %q: %w", m.Name(), resource.ErrTypeMismatch)
	}
	b.material = bound
	return nil
}

func (b *backend) BindMesh(m resource.Mesh) error {
	bound, ok := m.(*mesh)
	if !ok {
		return fmt.Errorf("mesh %q: %w", m.Name(), resource.ErrTypeMismatch)
	}
	b.mesh = bound
	return nil
}

func (b *backend) UploadDrawUniforms(u device.DrawUniforms) error {
	b.mvp = u.MVP()
	return nil
}

// DrawIndexed projects the bound mesh and renders it in one call. The SDL
// renderer already works in viewport space, so the projected vertices
// are relative to the viewport origin. Triangles with a vertex behind
// the camera are dropped. Instances share one model matrix here and
// would overdraw each other, so only one is drawn.
func (b *backend) DrawIndexed(indexCount, firstIndex, instanceCount uint32) error {
	if b.mesh == nil || b.material == nil {
		return device.ErrNotInitialized
	}
	indices := b.mesh.Indices()
	if int(firstIndex)+int(indexCount) > len(indices) {
		return fmt.Errorf("draw of %d indices at %d: %w", indexCount, firstIndex, resource.ErrMalformedDesc)
	}

	view := device.Viewport{Width: b.viewport.Width, Height: b.viewport.Height}
	colour := b.material.colour()
	vertices := b.mesh.Vertices()
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	visible := make(map[uint32]int32, len(vertices))
	project := func(i uint32) (int32, bool) {
		if at, ok := visible[i]; ok {
			return at, at >= 0
		}
		p, ok := view.Project(b.mvp, vertices[i].Position)
		if !ok {
			visible[i] = -1
			return -1, false
		}
		at := int32(len(b.vertices))
		b.vertices = append(b.vertices, sdl.Vertex{
			Position: sdl.FPoint{X: p[0], Y: p[1]},
			Color:    colour,
			TexCoord: sdl.FPoint{X: vertices[i].TexCoord[0], Y: vertices[i].TexCoord[1]},
		})
		visible[i] = at
		return at, true
	}

	tri := indices[firstIndex : firstIndex+indexCount]
	for i := 0; i+2 < len(tri); i += 3 {
		a, okA := project(tri[i])
		c, okB := project(tri[i+1])
		e, okC := project(tri[i+2])
		if okA && okB && okC {
			b.indices = append(b.indices, a, c, e)
		}
	}
	if len(b.indices) == 0 {
		return nil
	}

	var tex *sdl.Texture
	if t, ok := b.material.Texture(resource.AlbedoSlot).(*texture); ok && t.Valid() {
		var err error
		if tex, err = t.upload(b.renderer); err != nil {
			b.log.WithError(err).WithField("texture", t.Name()).Warn("texture upload failed")
			tex = nil
		}
	}
	return b.renderer.RenderGeometry(tex, b.vertices, b.indices)
}
