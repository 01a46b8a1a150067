// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package manager

import "github.com/devblok/korender/resource"

func loadAs[T resource.Resource](m *Manager, t resource.Type, filename string) (T, error) {
	var zero T
	res, err := m.LoadResource(t, filename)
	if err != nil {
		return zero, err
	}
	typed, err := resource.As[T](res, t)
	if err != nil {
		m.Release(res.ID())
		return zero, err
	}
	return typed, nil
}

// LoadMesh loads a mesh config.
func (m *Manager) LoadMesh(filename string) (resource.Mesh, error) {
	return loadAs[resource.Mesh](m, resource.MeshType, filename)
}

// LoadMaterial loads a material config.
func (m *Manager) LoadMaterial(filename string) (resource.Material, error) {
	return loadAs[resource.Material](m, resource.MaterialType, filename)
}

// LoadShader loads a shader config.
func (m *Manager) LoadShader(filename string) (resource.Shader, error) {
	return loadAs[resource.Shader](m, resource.ShaderType, filename)
}

// LoadTexture loads a texture file.
func (m *Manager) LoadTexture(filename string) (resource.Texture, error) {
	return loadAs[resource.Texture](m, resource.TextureType, filename)
}
