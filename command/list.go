// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package command

import (
	glm "github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"

	"github.com/devblok/korender/resource"
)

// Sort key layout
const (
	materialShift = 48
	pipelineShift = 32
	meshShift     = 16
	depthMask     = 0xFFFF
)

// SortKey packs the ordering fields of a draw into 64 bits: material in
// [63:48], pipeline in [47:32], mesh in [31:16] and quantised depth in
// [15:0]. Only the low 16 bits of each handle ID are used, so distinct
// resources may collide into the same bucket.
func SortKey(material resource.Handle[resource.Material], pipeline resource.Handle[resource.Shader], mesh resource.Handle[resource.Mesh], depth float32) uint64 {
	if depth < 0 || depth != depth {
		depth = 0
	} else if depth > 1 {
		depth = 1
	}
	return material.Bits()<<materialShift |
		pipeline.Bits()<<pipelineShift |
		mesh.Bits()<<meshShift |
		uint64(depth*depthMask)&depthMask
}

// GenerateSortKey computes the sort key of call.
func GenerateSortKey(call DrawCall) uint64 {
	return SortKey(call.Material, call.Pipeline, call.Mesh, call.Depth)
}

// List is a per-frame command buffer. A new List is recording.
// Once ended, recording calls are ignored until Begin or Reset.
type List struct {
	draws     []DrawCall
	commands  []Command
	recording bool
	sorted    bool
}

// NewList returns an empty list in the recording state.
func NewList() *List {
	return &List{recording: true, sorted: true}
}

// Begin clears the list and starts recording.
func (l *List) Begin() {
	l.Reset()
}

// Reset clears both buffers and re-enters the recording state.
func (l *List) Reset() {
	l.draws = l.draws[:0]
	l.commands = l.commands[:0]
	l.recording = true
	l.sorted = true
}

// End stops recording.
func (l *List) End() {
	l.recording = false
}

// Recording reports whether the list accepts commands.
func (l *List) Recording() bool { return l.recording }

// Sorted reports whether the draw calls are in key order.
func (l *List) Sorted() bool { return l.sorted }

// Draw appends call, generating its sort key when it has none.
func (l *List) Draw(call DrawCall) {
	if !l.recording {
		return
	}
	if call.SortKey == 0 {
		call.SortKey = GenerateSortKey(call)
	}
	l.draws = append(l.draws, call)
	l.commands = append(l.commands, DrawIndexed{Call: call})
	l.sorted = false
}

// DrawIndexed draws indexCount indices of mesh starting at firstIndex.
func (l *List) DrawIndexed(mesh resource.Handle[resource.Mesh], material resource.Handle[resource.Material], model glm.Mat4, indexCount, firstIndex uint32) {
	l.Draw(DrawCall{
		Mesh:          mesh,
		Material:      material,
		Model:         model,
		IndexCount:    indexCount,
		IndexOffset:   firstIndex,
		InstanceCount: 1,
	})
}

// DrawInstanced draws the whole of mesh once per model matrix.
func (l *List) DrawInstanced(mesh resource.Mesh, material resource.Material, models []glm.Mat4) {
	if !l.recording || mesh == nil {
		return
	}
	mh, mth := resource.HandleOf(mesh), resource.HandleOf(material)
	for _, model := range models {
		l.DrawIndexed(mh, mth, model, mesh.IndexCount(), 0)
	}
}

// SetViewport appends a viewport change.
func (l *List) SetViewport(x, y, width, height float32) {
	if !l.recording {
		return
	}
	l.commands = append(l.commands, SetViewport{X: x, Y: y, Width: width, Height: height})
}

// Clear appends a clear of the colour and depth targets.
func (l *List) Clear(color glm.Vec4, depth float32) {
	if !l.recording {
		return
	}
	l.commands = append(l.commands, Clear{Color: color, Depth: depth})
}

// SetCamera appends a camera change.
func (l *List) SetCamera(view, projection glm.Mat4) {
	if !l.recording {
		return
	}
	l.commands = append(l.commands, SetCamera{View: view, Projection: projection})
}

// Sort orders draw calls by ascending sort key, keeping recording order
// between equal keys, and rebuilds the command buffer from the draw calls.
// Non-draw commands are dropped by a sort.
func (l *List) Sort() {
	if l.sorted {
		return
	}
	slices.SortStableFunc(l.draws, func(a, b DrawCall) int {
		switch {
		case a.SortKey < b.SortKey:
			return -1
		case a.SortKey > b.SortKey:
			return 1
		}
		return 0
	})
	l.commands = l.commands[:0]
	for _, call := range l.draws {
		l.commands = append(l.commands, DrawIndexed{Call: call})
	}
	l.sorted = true
}

// DrawCallCount returns the number of recorded draws.
func (l *List) DrawCallCount() int { return len(l.draws) }

// DrawCalls returns the recorded draws. The slice is owned by the list.
func (l *List) DrawCalls() []DrawCall { return l.draws }

// Commands returns the command buffer. The slice is owned by the list.
func (l *List) Commands() []Command { return l.commands }
