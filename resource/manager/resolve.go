// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package manager

import (
	"fmt"

	"github.com/devblok/korender/resource"
)

// resolve loads the dependencies desc names but does not hold yet.
// Whatever was resolved stays in desc on error, so the caller can
// release it.
func (m *Manager) resolve(desc resource.Desc) error {
	switch d := desc.(type) {
	case *resource.MaterialDesc:
		if d.ResolvedShader == nil {
			shader, err := dependency[resource.Shader](m, resource.ShaderType, d.Shader)
			if err != nil {
				return err
			}
			d.ResolvedShader = shader
		}
		for slot, path := range d.TexturePaths {
			if d.ResolvedTextures[slot] != nil {
				continue
			}
			texture, err := dependency[resource.Texture](m, resource.TextureType, path)
			if err != nil {
				return err
			}
			if d.ResolvedTextures == nil {
				d.ResolvedTextures = make(map[resource.TextureSlot]resource.Texture)
			}
			d.ResolvedTextures[slot] = texture
		}
	case *resource.MeshDesc:
		if d.ResolvedMaterials != nil {
			return nil
		}
		names := d.Materials
		if len(names) == 0 {
			names = []string{resource.BuiltinMaterial}
		}
		for _, name := range names {
			material, err := dependency[resource.Material](m, resource.MaterialType, name)
			if err != nil {
				return err
			}
			d.ResolvedMaterials = append(d.ResolvedMaterials, material)
		}
	}
	return nil
}

// dependency acquires a resource another one refers to. Reserved names
// refer to builtins, anything else is a config file that falls back to
// the builtin when it cannot be loaded.
func dependency[T resource.Resource](m *Manager, t resource.Type, name string) (T, error) {
	var res resource.Resource
	switch {
	case name == "":
		res = m.Builtin(t)
	case resource.IsReserved(name):
		res = m.Acquire(t, name)
	default:
		res = m.LoadOrBuiltin(t, name)
	}
	if res == nil {
		var zero T
		return zero, fmt.Errorf("%s dependency %q unavailable: %w", t, name, resource.ErrMissingAsset)
	}
	typed, err := resource.As[T](res, t)
	if err != nil {
		m.Release(res.ID())
		return typed, err
	}
	return typed, nil
}
