// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package command records per-frame rendering work as sorted,
// backend independent command lists.
package command

import (
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/resource"
)

// DrawCall is a single indexed draw of a mesh with a material.
type DrawCall struct {
	VertexCount   uint32
	IndexCount    uint32
	VertexOffset  uint32
	IndexOffset   uint32
	InstanceCount uint32

	Mesh     resource.Handle[resource.Mesh]
	Material resource.Handle[resource.Material]
	Pipeline resource.Handle[resource.Shader]

	Model glm.Mat4

	// Depth is the normalised view depth in [0, 1].
	Depth float32

	// SortKey orders draws, generated when left zero.
	SortKey uint64
}

// Kind tags the variant of a Command.
type Kind int

// Command kinds
const (
	DrawIndexedKind Kind = iota
	SetViewportKind
	ClearKind
	SetCameraKind
)

func (k Kind) String() string {
	switch k {
	case DrawIndexedKind:
		return "DrawIndexed"
	case SetViewportKind:
		return "SetViewport"
	case ClearKind:
		return "Clear"
	case SetCameraKind:
		return "SetCamera"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command is one entry of a command list. Devices switch on Kind
// and assert to the concrete variant.
type Command interface {
	Kind() Kind
}

// DrawIndexed issues a draw call.
type DrawIndexed struct {
	Call DrawCall
}

// Kind implements Command
func (DrawIndexed) Kind() Kind { return DrawIndexedKind }

// SetViewport changes the viewport rectangle.
type SetViewport struct {
	X, Y          float32
	Width, Height float32
}

// Kind implements Command
func (SetViewport) Kind() Kind { return SetViewportKind }

// Clear clears the colour and depth targets.
type Clear struct {
	Color glm.Vec4
	Depth float32
}

// Kind implements Command
func (Clear) Kind() Kind { return ClearKind }

// SetCamera sets the matrices used for following draws.
type SetCamera struct {
	View       glm.Mat4
	Projection glm.Mat4
}

// Kind implements Command
func (SetCamera) Kind() Kind { return SetCameraKind }
