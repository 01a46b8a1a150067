// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package headless implements a device without a rendering context.
// It validates descriptors the way a GPU backend would and records what
// command execution would have done.
package headless

import (
	"fmt"
	"sync"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
)

func init() {
	device.Register(device.Headless, func(logger *log.Entry) (device.Device, error) {
		return New(logger), nil
	})
}

// Counts is the number of Create calls per resource type.
type Counts struct {
	Meshes    int
	Materials int
	Shaders   int
	Textures  int
}

// Device implements device.Device without a GPU.
type Device struct {
	log *log.Entry

	mu          sync.Mutex
	window      device.Window
	initialized bool
	counts      Counts
	trace       []string

	meshes    *device.Arena[resource.Mesh]
	materials *device.Arena[resource.Material]
	shaders   *device.Arena[resource.Shader]
	textures  *device.Arena[resource.Texture]
	exec      *device.Executor
}

// New creates a headless device. A nil logger uses the standard logger.
func New(logger *log.Entry) *Device {
	if logger == nil {
		logger = log.WithField("backend", string(device.Headless))
	}
	d := &Device{
		log:       logger,
		meshes:    device.NewArena[resource.Mesh](),
		materials: device.NewArena[resource.Material](),
		shaders:   device.NewArena[resource.Shader](),
		textures:  device.NewArena[resource.Texture](),
	}
	d.exec = device.NewExecutor(d.meshes, d.materials, (*tracer)(d), logger)
	return d
}

// Initialize implements device.Device
func (d *Device) Initialize(window device.Window) error {
	if window == nil {
		return fmt.Errorf("headless.Initialize(): %w", device.ErrBadWindow)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.window = window
	d.initialized = true
	w, h := window.Size()
	d.log.WithFields(log.Fields{"width": w, "height": h}).Debug("headless device initialized")
	return nil
}

// Backend implements device.Device
func (d *Device) Backend() device.BackendAPI { return device.Headless }

// Info implements device.Device
func (d *Device) Info() device.Info {
	return device.Info{
		Name:           "headless",
		Backend:        device.Headless,
		Driver:         "cpu",
		MaxTextureSize: 16384,
	}
}

// Counts returns how many resources of each type were requested.
func (d *Device) Counts() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts
}

// Trace returns the backend calls made by command execution so far.
func (d *Device) Trace() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.trace...)
}

// Live returns the number of valid, not yet unloaded resources per type.
func (d *Device) Live() Counts {
	return Counts{
		Meshes:    d.meshes.Len(),
		Materials: d.materials.Len(),
		Shaders:   d.shaders.Len(),
		Textures:  d.textures.Len(),
	}
}

// CreateMesh implements resource.Factory
func (d *Device) CreateMesh(desc *resource.MeshDesc) (resource.Mesh, error) {
	d.mu.Lock()
	d.counts.Meshes++
	d.mu.Unlock()

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
	d.mu.Lock()
	d.counts.Materials++
	d.mu.Unlock()

	m := &material{arena: d.materials}
	if err := m.Setup(desc); err != nil {
		d.log.WithError(err).WithField("material", desc.Name).Warn("material rejected")
		return m, nil
	}
	d.materials.Insert(m)
	return m, nil
}

// CreateShader implements resource.Factory
func (d *Device) CreateShader(desc *resource.ShaderDesc) (resource.Shader, error) {
	d.mu.Lock()
	d.counts.Shaders++
	d.mu.Unlock()

	s := &shader{arena: d.shaders}
	if err := device.CheckShaderSources(desc); err != nil {
		s.Setup(desc, resource.UniformLayout{})
		d.log.WithError(err).Warn("shader compilation failed")
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
	d.mu.Lock()
	d.counts.Textures++
	d.mu.Unlock()

	t := &texture{arena: d.textures}
	if err := t.Setup(desc); err != nil {
		d.log.WithError(err).WithField("texture", desc.Name).Warn("texture rejected")
		return t, nil
	}
	if limit := d.Info().MaxTextureSize; t.Width() > limit || t.Height() > limit {
		t.SetValid(false)
		d.log.WithField("texture", desc.Name).Warnf("texture exceeds %dx%d", limit, limit)
		return t, nil
	}
	d.textures.Insert(t)
	return t, nil
}

// ExecuteCommandList implements device.Device
func (d *Device) ExecuteCommandList(list *command.List) (device.Stats, error) {
	d.mu.Lock()
	initialized := d.initialized
	d.mu.Unlock()
	if !initialized {
		return device.Stats{}, fmt.Errorf("headless.ExecuteCommandList(): %w", device.ErrNotInitialized)
	}
	return d.exec.Execute(list)
}

// Destroy implements device.Device. Handles to resources still alive
// stop resolving.
func (d *Device) Destroy() {
	d.materials.Clear()
	d.meshes.Clear()
	d.shaders.Clear()
	d.textures.Clear()
	d.mu.Lock()
	d.initialized = false
	d.mu.Unlock()
}

type tracer Device

func (t *tracer) record(format string, args ...interface{}) error {
	t.mu.Lock()
	t.trace = append(t.trace, fmt.Sprintf(format, args...))
	t.mu.Unlock()
	return nil
}

func (t *tracer) Clear(color glm.Vec4, depth float32) error {
	return t.record("clear %v %v", color, depth)
}

func (t *tracer) SetViewport(x, y, width, height float32) error {
	return t.record("viewport %v %v %v %v", x, y, width, height)
}

func (t *tracer) BindMaterial(m resource.Material) error {
	return t.record("bind material %s", m.Name())
}

func (t *tracer) BindMesh(m resource.Mesh) error {
	return t.record("bind mesh %s", m.Name())
}

func (t *tracer) UploadDrawUniforms(device.DrawUniforms) error {
	return nil
}

func (t *tracer) DrawIndexed(indexCount, firstIndex, instanceCount uint32) error {
	return t.record("draw %d %d %d", indexCount, firstIndex, instanceCount)
}
