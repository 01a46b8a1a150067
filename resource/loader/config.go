// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loader

import (
	"encoding/json"
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/resource"
)

type meshConfig struct {
	Name      string
	MeshAsset string
	Materials []string

	// Inline geometry for procedural meshes
	Vertices []vertexConfig
	Indices  []uint32
}

type vertexConfig struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

func (v vertexConfig) vertex() resource.Vertex {
	return resource.Vertex{
		Position: glm.Vec3(v.Position),
		Normal:   glm.Vec3(v.Normal),
		TexCoord: glm.Vec2(v.TexCoord),
	}
}

type materialConfig struct {
	Name           string
	UsedShader     string
	MaterialParams map[string]paramConfig
	Textures       map[string]string
}

// paramConfig is a number or an array of 2, 3, 4 or 16 numbers.
type paramConfig []float32

func (p *paramConfig) UnmarshalJSON(data []byte) error {
	var scalar float32
	if err := json.Unmarshal(data, &scalar); err == nil {
		*p = paramConfig{scalar}
		return nil
	}
	var array []float32
	if err := json.Unmarshal(data, &array); err != nil {
		return fmt.Errorf("expected number or array of numbers: %w", err)
	}
	*p = array
	return nil
}

func (p paramConfig) value() (resource.MaterialValue, error) {
	return resource.ValueFromFloats(p)
}

type shaderConfig struct {
	Name   string
	Stages []struct {
		Name   string
		Source string
	}
}
