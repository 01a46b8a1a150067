// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/devblok/korender/resource"
)

// MaterialBlock is the uniform block material values are uploaded to.
const MaterialBlock = "MaterialUBO"

var (
	blockRe   = regexp.MustCompile(`(?s)(?:layout\s*\(([^)]*)\)\s*)?uniform\s+(\w+)\s*\{([^}]*)\}`)
	memberRe  = regexp.MustCompile(`^\s*(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*$`)
	bindingRe = regexp.MustCompile(`binding\s*=\s*(\d+)`)
	commentRe = regexp.MustCompile(`(?s)//[^\n]*|/\*.*?\*/`)
)

var glslKinds = map[string]resource.ValueKind{
	"float": resource.FloatValue,
	"vec2":  resource.Vector2Value,
	"vec3":  resource.Vector3Value,
	"vec4":  resource.Vector4Value,
	"mat4":  resource.Matrix4Value,
}

// ErrUnsupportedUniform is returned for block members without a MaterialValue kind.
var ErrUnsupportedUniform = errors.New("device: unsupported uniform type")

// ReflectUniformBlock finds the MaterialUBO block in GLSL source and
// computes its std140 layout. Source without the block yields an
// empty layout.
func ReflectUniformBlock(source []byte) (resource.UniformLayout, error) {
	layout := resource.UniformLayout{Uniforms: make(map[string]resource.UniformInfo)}
	text := commentRe.ReplaceAllString(string(source), "")
	for _, m := range blockRe.FindAllStringSubmatch(text, -1) {
		if m[2] != MaterialBlock {
			continue
		}
		layout.Block = m[2]
		if b := bindingRe.FindStringSubmatch(m[1]); b != nil {
			binding, err := strconv.ParseUint(b[1], 10, 32)
			if err != nil {
				return layout, fmt.Errorf("device.ReflectUniformBlock(): %w", err)
			}
			layout.Binding = uint32(binding)
		}
		offset := 0
		for _, decl := range strings.Split(m[3], ";") {
			if strings.TrimSpace(decl) == "" {
				continue
			}
			mm := memberRe.FindStringSubmatch(decl)
			if mm == nil {
				return layout, fmt.Errorf("device.ReflectUniformBlock(): cannot parse %q", strings.TrimSpace(decl))
			}
			kind, ok := glslKinds[mm[1]]
			if !ok || mm[3] != "" {
				return layout, fmt.Errorf("device.ReflectUniformBlock(): %s %s: %w", mm[1], mm[2], ErrUnsupportedUniform)
			}
			offset = alignUp(offset, kind.Std140Align())
			layout.Uniforms[mm[2]] = resource.UniformInfo{Offset: offset, Size: kind.Std140Size(), Kind: kind}
			offset += kind.Std140Size()
		}
		layout.Size = alignUp(offset, 16)
		break
	}
	return layout, nil
}

// ReflectShader reflects the material block from every stage of desc.
// Stages declaring the block differently are an error.
func ReflectShader(desc *resource.ShaderDesc) (resource.UniformLayout, error) {
	var found resource.UniformLayout
	for stage, src := range desc.Sources {
		layout, err := ReflectUniformBlock(src)
		if err != nil {
			return layout, fmt.Errorf("%s stage: %w", stage, err)
		}
		if layout.Block == "" {
			continue
		}
		if found.Block != "" && found.Size != layout.Size {
			return layout, fmt.Errorf("device.ReflectShader(): %s block differs between stages", MaterialBlock)
		}
		found = layout
	}
	if found.Uniforms == nil {
		found.Uniforms = make(map[string]resource.UniformInfo)
	}
	return found, nil
}

var mainRe = regexp.MustCompile(`void\s+main\s*\(`)

// CheckShaderSources verifies that desc carries a vertex and a fragment
// stage, each with a main entry point.
func CheckShaderSources(desc *resource.ShaderDesc) error {
	for _, stage := range []resource.ShaderStage{resource.VertexStage, resource.FragmentStage} {
		src, ok := desc.Sources[stage]
		if !ok || len(src) == 0 {
			return fmt.Errorf("shader %q: missing %s stage: %w", desc.Name, stage, resource.ErrMalformedDesc)
		}
		if !mainRe.Match(src) {
			return fmt.Errorf("shader %q: %s stage has no main: %w", desc.Name, stage, resource.ErrMalformedDesc)
		}
	}
	return nil
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
