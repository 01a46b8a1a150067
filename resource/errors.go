// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "errors"

// package errors
var (
	ErrMissingAsset    = errors.New("resource: asset not found")
	ErrMalformedDesc   = errors.New("resource: malformed descriptor")
	ErrInvalidResource = errors.New("resource: backend produced an invalid resource")
	ErrReservedName    = errors.New("resource: name is reserved for builtin resources")
	ErrTypeMismatch    = errors.New("resource: unexpected resource type")
	ErrUnknownType     = errors.New("resource: unknown resource type")
)

// Builtin resource names. User assets may not use them.
const (
	BuiltinRectangleMesh = "BuiltinRectangle"
	BuiltinShader        = "BuiltinShader"
	BuiltinMaterial      = "BuiltinMaterial"
	BuiltinTexture       = "BuiltinTexture"
)

// BuiltinName returns the name of the builtin fallback for t.
func BuiltinName(t Type) string {
	switch t {
	case MeshType:
		return BuiltinRectangleMesh
	case MaterialType:
		return BuiltinMaterial
	case ShaderType:
		return BuiltinShader
	case TextureType:
		return BuiltinTexture
	}
	return ""
}

// IsReserved reports whether name belongs to a builtin resource.
func IsReserved(name string) bool {
	switch name {
	case BuiltinRectangleMesh, BuiltinShader, BuiltinMaterial, BuiltinTexture:
		return true
	}
	return false
}
