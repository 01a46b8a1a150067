// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package sdlr

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

// Window wraps an SDL window so it can be handed to a device.
type Window struct {
	*sdl.Window
}

// NewWindow opens a resizable window centred on screen.
func NewWindow(title string, width, height int) (*Window, error) {
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(width),
		int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, err
	}
	return &Window{Window: w}, nil
}

// NativeHandle implements device.Window
func (w *Window) NativeHandle() uintptr {
	return uintptr(unsafe.Pointer(w.Window))
}

// Size implements device.Window
func (w *Window) Size() (int, int) {
	width, height := w.GetSize()
	return int(width), int(height)
}
