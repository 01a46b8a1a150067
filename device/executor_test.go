// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource"
)

type traceBackend struct {
	trace []string
	last  device.DrawUniforms
}

func (b *traceBackend) Clear(color glm.Vec4, depth float32) error {
	b.trace = append(b.trace, "clear")
	return nil
}

func (b *traceBackend) SetViewport(x, y, w, h float32) error {
	b.trace = append(b.trace, fmt.Sprintf("viewport %vx%v", w, h))
	return nil
}

func (b *traceBackend) BindMaterial(m resource.Material) error {
	b.trace = append(b.trace, "material "+m.Name())
	return nil
}

func (b *traceBackend) BindMesh(m resource.Mesh) error {
	b.trace = append(b.trace, "mesh "+m.Name())
	return nil
}

func (b *traceBackend) UploadDrawUniforms(u device.DrawUniforms) error {
	b.last = u
	return nil
}

func (b *traceBackend) DrawIndexed(count, first, instances uint32) error {
	b.trace = append(b.trace, fmt.Sprintf("draw %d", count))
	return nil
}

type shader struct{ resource.ShaderData }

func (*shader) Unload() {}

type material struct{ resource.MaterialData }

func (*material) Unload() {}

type mesh struct{ resource.MeshData }

func (*mesh) Unload() {}

func newShader(c *qt.C) *shader {
	s := &shader{}
	s.Setup(&resource.ShaderDesc{DescInfo: resource.DescInfo{Name: "s"}}, resource.UniformLayout{})
	s.SetValid(true)
	return s
}

func newMaterial(c *qt.C, name string, s resource.Shader) *material {
	m := &material{}
	c.Assert(m.Setup(&resource.MaterialDesc{DescInfo: resource.DescInfo{Name: name}, ResolvedShader: s}), qt.IsNil)
	return m
}

func newMesh(c *qt.C, name string) *mesh {
	m := &mesh{}
	c.Assert(m.Setup(&resource.MeshDesc{
		DescInfo: resource.DescInfo{Name: name},
		Vertices: make([]resource.Vertex, 3),
		Indices:  []uint32{0, 1, 2},
	}), qt.IsNil)
	return m
}

func TestExecutorReplaysInOrderAndElidesBinds(t *testing.T) {
	c := qt.New(t)
	meshes := device.NewArena[resource.Mesh]()
	materials := device.NewArena[resource.Material]()
	s := newShader(c)
	matA, matB := newMaterial(c, "A", s), newMaterial(c, "B", s)
	cube, quad := newMesh(c, "cube"), newMesh(c, "quad")
	meshes.Insert(cube)
	meshes.Insert(quad)
	materials.Insert(matA)
	materials.Insert(matB)

	l := command.NewList()
	l.Clear(glm.Vec4{}, 1)
	l.SetViewport(0, 0, 640, 480)
	view := glm.Translate3D(0, 0, -5)
	l.SetCamera(view, glm.Ident4())
	ha, hb := resource.HandleOf[resource.Material](matA), resource.HandleOf[resource.Material](matB)
	hc, hq := resource.HandleOf[resource.Mesh](cube), resource.HandleOf[resource.Mesh](quad)
	l.DrawIndexed(hc, ha, glm.Ident4(), 3, 0)
	l.DrawIndexed(hc, ha, glm.Ident4(), 3, 0)
	l.DrawIndexed(hq, ha, glm.Ident4(), 0, 0)
	l.DrawIndexed(hq, hb, glm.Ident4(), 3, 0)
	l.End()

	backend := &traceBackend{}
	stats, err := device.NewExecutor(meshes, materials, backend, nil).Execute(l)
	c.Assert(err, qt.IsNil)
	c.Assert(backend.trace, qt.DeepEquals, []string{
		"clear",
		"viewport 640x480",
		"material A", "mesh cube", "draw 3",
		"draw 3",
		"mesh quad", "draw 3",
		"material B", "draw 3",
	})
	c.Assert(stats, qt.Equals, device.Stats{
		Draws: 4, Indices: 12, Clears: 1, Viewports: 1, Cameras: 1,
		MaterialBinds: 2, MeshBinds: 2,
	})
	c.Assert(backend.last.View, qt.Equals, view)
}

func TestExecutorSkipsStaleHandles(t *testing.T) {
	c := qt.New(t)
	meshes := device.NewArena[resource.Mesh]()
	materials := device.NewArena[resource.Material]()
	mat := newMaterial(c, "A", newShader(c))
	cube := newMesh(c, "cube")
	materials.Insert(mat)
	meshes.Insert(cube)
	meshes.Remove(cube.ID())

	l := command.NewList()
	l.DrawIndexed(resource.HandleOf[resource.Mesh](cube), resource.HandleOf[resource.Material](mat), glm.Ident4(), 3, 0)
	l.DrawIndexed(resource.NewHandle[resource.Mesh](resource.NewID()), resource.HandleOf[resource.Material](mat), glm.Ident4(), 3, 0)

	backend := &traceBackend{}
	stats, err := device.NewExecutor(meshes, materials, backend, nil).Execute(l)
	c.Assert(err, qt.IsNil)
	c.Assert(stats.Skipped, qt.Equals, 2)
	c.Assert(stats.Draws, qt.Equals, 0)
	c.Assert(backend.trace, qt.HasLen, 0)
}

func TestArenaResolve(t *testing.T) {
	c := qt.New(t)
	arena := device.NewArena[resource.Mesh]()
	m := newMesh(c, "m")
	arena.Insert(m)
	got, ok := arena.Resolve(resource.HandleOf[resource.Mesh](m))
	c.Assert(ok, qt.IsTrue)
	c.Assert(got.ID(), qt.Equals, m.ID())

	m.SetValid(false)
	_, ok = arena.Resolve(resource.HandleOf[resource.Mesh](m))
	c.Assert(ok, qt.IsFalse)

	c.Assert(arena.Clear(), qt.HasLen, 1)
	c.Assert(arena.Len(), qt.Equals, 0)
}

func TestRegistry(t *testing.T) {
	c := qt.New(t)
	_, err := device.New("nonexistent", nil)
	c.Assert(err, qt.ErrorIs, device.ErrNoBackend)

	device.Register("registry-test", func(*log.Entry) (device.Device, error) { return nil, nil })
	c.Assert(device.Backends(), qt.Contains, device.BackendAPI("registry-test"))
	c.Assert(func() {
		device.Register("registry-test", func(*log.Entry) (device.Device, error) { return nil, nil })
	}, qt.PanicMatches, ".*called twice.*")
}
