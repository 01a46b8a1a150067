// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	glm "github.com/go-gl/mathgl/mgl32"
)

// ShaderStage represents the pipeline stage a shader source belongs to
type ShaderStage int

// Identifies shader stages
const (
	VertexStage ShaderStage = iota
	FragmentStage
	UnknownStage
)

// ParseShaderStage maps config stage names ("vert", "frag") to a ShaderStage.
func ParseShaderStage(s string) ShaderStage {
	switch s {
	case "vert":
		return VertexStage
	case "frag":
		return FragmentStage
	}
	return UnknownStage
}

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vert"
	case FragmentStage:
		return "frag"
	}
	return "unknown"
}

// TextureSlot is the binding a material texture is sampled from.
type TextureSlot uint32

// Texture slots. Custom slots extend up to MaxTextureSlots.
const (
	AlbedoSlot TextureSlot = iota
	NormalSlot
	MetallicSlot
	RoughnessSlot
	AOSlot
	EmissiveSlot
	HeightSlot
	OpacitySlot
	Custom0Slot

	MaxTextureSlots = 16
)

var slotNames = [...]string{"Albedo", "Normal", "Metallic", "Roughness", "AO", "Emissive", "Height", "Opacity"}

func (s TextureSlot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return "Custom" + strconv.Itoa(int(s-Custom0Slot))
}

// ParseTextureSlot maps a slot name as used in material configs to a TextureSlot.
func ParseTextureSlot(name string) (TextureSlot, error) {
	for i, n := range slotNames {
		if strings.EqualFold(n, name) {
			return TextureSlot(i), nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "Custom"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 && int(Custom0Slot)+n < MaxTextureSlots {
			return Custom0Slot + TextureSlot(n), nil
		}
	}
	return 0, fmt.Errorf("unknown texture slot %q: %w", name, ErrMalformedDesc)
}

// ValueKind is the type of a material uniform value.
type ValueKind int

// Uniform value kinds.
const (
	FloatValue ValueKind = iota
	Vector2Value
	Vector3Value
	Vector4Value
	Matrix4Value
)

// Components returns the number of floats a kind holds.
func (k ValueKind) Components() int {
	switch k {
	case FloatValue:
		return 1
	case Vector2Value:
		return 2
	case Vector3Value:
		return 3
	case Vector4Value:
		return 4
	case Matrix4Value:
		return 16
	}
	return 0
}

// Std140Size returns the size of the kind inside a std140 uniform block.
func (k ValueKind) Std140Size() int {
	switch k {
	case FloatValue:
		return 4
	case Vector2Value:
		return 8
	case Vector3Value:
		return 12
	case Vector4Value:
		return 16
	case Matrix4Value:
		return 64
	}
	return 16
}

// Std140Align returns the base alignment of the kind inside a std140 block.
func (k ValueKind) Std140Align() int {
	switch k {
	case FloatValue:
		return 4
	case Vector2Value:
		return 8
	}
	return 16
}

// MaterialValue is a typed uniform value.
type MaterialValue struct {
	Kind ValueKind
	Data []float32
}

// ValueFromFloats picks the value kind from the number of floats given.
func ValueFromFloats(data []float32) (MaterialValue, error) {
	var kind ValueKind
	switch len(data) {
	case 1:
		kind = FloatValue
	case 2:
		kind = Vector2Value
	case 3:
		kind = Vector3Value
	case 4:
		kind = Vector4Value
	case 16:
		kind = Matrix4Value
	default:
		return MaterialValue{}, fmt.Errorf("%d components is not a uniform value: %w", len(data), ErrMalformedDesc)
	}
	return MaterialValue{Kind: kind, Data: append([]float32(nil), data...)}, nil
}

// Float returns a scalar value.
func Float(v float32) MaterialValue {
	return MaterialValue{Kind: FloatValue, Data: []float32{v}}
}

// Vec4 returns a four component value.
func Vec4(v glm.Vec4) MaterialValue {
	return MaterialValue{Kind: Vector4Value, Data: v[:]}
}

// Vec4 returns the value widened or truncated to four components,
// missing components are filled from fill.
func (v MaterialValue) Vec4(fill glm.Vec4) glm.Vec4 {
	out := fill
	for i := 0; i < 4 && i < len(v.Data); i++ {
		out[i] = v.Data[i]
	}
	return out
}

// UniformInfo locates one member of a uniform block.
type UniformInfo struct {
	Offset int
	Size   int
	Kind   ValueKind
}

// UniformLayout is the reflected layout of a shader's material uniform block.
type UniformLayout struct {
	Block    string
	Binding  uint32
	Size     int
	Uniforms map[string]UniformInfo
}

// Pack writes values into a buffer laid out as l. Values that are not part
// of the block are ignored, block members without a value stay zeroed.
func (l UniformLayout) Pack(values map[string]MaterialValue) []byte {
	buf := make([]byte, l.Size)
	for name, value := range values {
		info, ok := l.Uniforms[name]
		if !ok {
			info, ok = l.Uniforms[strings.TrimPrefix(name, l.Block+".")]
		}
		if !ok {
			continue
		}
		n := info.Kind.Components()
		if n > len(value.Data) {
			n = len(value.Data)
		}
		for i := 0; i < n; i++ {
			off := info.Offset + 4*i
			if off+4 > len(buf) {
				break
			}
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(value.Data[i]))
		}
	}
	return buf
}
