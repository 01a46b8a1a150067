// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loader

import (
	"fmt"
	"path"
	"strings"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/util/collada"
)

func importMesh(name string, data []byte, desc *resource.MeshDesc) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".dae":
		return importCollada(data, desc)
	}
	return fmt.Errorf("unsupported mesh asset %s: %w", name, resource.ErrMalformedDesc)
}

// corner identifies a unique combination of position, normal and
// texture coordinate indices.
type corner [3]int

// importCollada converts every triangle group of the first geometry
// into a sub-mesh. Corners sharing all attributes share a vertex.
func importCollada(data []byte, desc *resource.MeshDesc) error {
	doc, err := collada.Decode(data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, resource.ErrMalformedDesc)
	}
	mesh := &doc.Geometries[0].Mesh
	zUp := doc.Asset.UpAxis == "Z_UP"

	vertices := make(map[corner]uint32)
	for gi := range mesh.Triangles {
		tri := &mesh.Triangles[gi]
		stride := tri.Stride()
		in, ok := tri.Input("VERTEX")
		if !ok || stride == 0 {
			return fmt.Errorf("triangles %d have no vertex input: %w", gi, resource.ErrMalformedDesc)
		}
		positions, err := mesh.FindSource(in.Source)
		if err != nil {
			return fmt.Errorf("%v: %w", err, resource.ErrMalformedDesc)
		}
		normals, normalOffset := optionalSource(mesh, tri, "NORMAL")
		texCoords, texOffset := optionalSource(mesh, tri, "TEXCOORD")

		sub := resource.SubMesh{
			Name:      tri.Material,
			BaseIndex: uint32(len(desc.Indices)),
		}
		for c := 0; c+stride <= len(tri.Index); c += stride {
			p := tri.Index[c : c+stride]
			key := corner{p[in.Offset], -1, -1}
			if normals != nil {
				key[1] = p[normalOffset]
			}
			if texCoords != nil {
				key[2] = p[texOffset]
			}
			idx, ok := vertices[key]
			if !ok {
				v, err := buildVertex(key, positions, normals, texCoords, zUp)
				if err != nil {
					return err
				}
				idx = uint32(len(desc.Vertices))
				desc.Vertices = append(desc.Vertices, v)
				vertices[key] = idx
			}
			desc.Indices = append(desc.Indices, idx)
		}
		sub.IndexCount = uint32(len(desc.Indices)) - sub.BaseIndex
		desc.SubMeshes = append(desc.SubMeshes, sub)
	}
	return nil
}

func optionalSource(mesh *collada.Mesh, tri *collada.Triangles, semantic string) (*collada.Source, uint) {
	in, ok := tri.Input(semantic)
	if !ok {
		return nil, 0
	}
	src, err := mesh.FindSource(in.Source)
	if err != nil {
		return nil, 0
	}
	return src, in.Offset
}

func buildVertex(key corner, positions, normals, texCoords *collada.Source, zUp bool) (resource.Vertex, error) {
	var v resource.Vertex
	p, ok := positions.Element(key[0])
	if !ok || len(p) < 3 {
		return v, fmt.Errorf("position %d out of range: %w", key[0], resource.ErrMalformedDesc)
	}
	v.Position = toYUp(glm.Vec3{p[0], p[1], p[2]}, zUp)
	if normals != nil {
		if n, ok := normals.Element(key[1]); ok && len(n) >= 3 {
			v.Normal = toYUp(glm.Vec3{n[0], n[1], n[2]}, zUp)
		}
	}
	if texCoords != nil {
		if t, ok := texCoords.Element(key[2]); ok && len(t) >= 2 {
			v.TexCoord = glm.Vec2{t[0], 1 - t[1]}
		}
	}
	return v, nil
}

func toYUp(v glm.Vec3, zUp bool) glm.Vec3 {
	if !zUp {
		return v
	}
	return glm.Vec3{v[0], v[2], -v[1]}
}
