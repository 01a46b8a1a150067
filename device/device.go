// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device defines the graphics device contract shared by rendering
// backends, and the pieces backends are built from: typed resource arenas,
// a command list executor and uniform block reflection.
package device

import (
	"errors"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/resource"
)

// package errors
var (
	ErrNoBackend      = errors.New("device: no such backend")
	ErrNotInitialized = errors.New("device: not initialized")
	ErrBadWindow      = errors.New("device: window not supported by backend")
)

// BackendAPI names a rendering backend.
type BackendAPI string

// Known backends
const (
	Headless BackendAPI = "headless"
	SDL      BackendAPI = "sdl"
)

// Info describes the rendering device in use
type Info struct {
	Name           string
	Backend        BackendAPI
	Driver         string
	MaxTextureSize int
	Extensions     []string
}

// Window is the surface a device renders to.
type Window interface {
	// NativeHandle returns the platform window handle, zero for offscreen windows.
	NativeHandle() uintptr

	// Size returns the drawable size in pixels.
	Size() (width, height int)
}

// Device describes a non-concrete rendering device. All calls must
// happen on the thread that owns the rendering context.
type Device interface {
	resource.Factory

	// Initialize binds the device to window.
	Initialize(window Window) error

	Backend() BackendAPI
	Info() Info

	// ExecuteCommandList replays the list in order. The device does not
	// reorder commands, callers sort beforehand.
	ExecuteCommandList(list *command.List) (Stats, error)

	// Destroy releases the context and any device owned objects.
	Destroy()
}

// Stats counts what an execution did.
type Stats struct {
	Draws         int
	Indices       int
	Clears        int
	Viewports     int
	Cameras       int
	MaterialBinds int
	MeshBinds     int

	// Skipped counts draws whose handles no longer resolve.
	Skipped int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Draws += o.Draws
	s.Indices += o.Indices
	s.Clears += o.Clears
	s.Viewports += o.Viewports
	s.Cameras += o.Cameras
	s.MaterialBinds += o.MaterialBinds
	s.MeshBinds += o.MeshBinds
	s.Skipped += o.Skipped
}

// OffscreenWindow is a Window without a platform surface.
type OffscreenWindow struct {
	Width, Height int
}

// NativeHandle implements Window
func (OffscreenWindow) NativeHandle() uintptr { return 0 }

// Size implements Window
func (w OffscreenWindow) Size() (int, int) { return w.Width, w.Height }

// Presenter is implemented by devices that show finished frames on a
// window.
type Presenter interface {
	Present() error
}
