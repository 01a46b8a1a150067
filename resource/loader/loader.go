// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package loader reads asset config files into resource descriptors.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/resource/builtin"
)

// Roots are the directories config files of each type live in.
type Roots struct {
	Meshes    string
	Materials string
	Shaders   string
	Textures  string
}

// DefaultRoots is the standard asset tree layout.
var DefaultRoots = Roots{
	Meshes:    "meshes",
	Materials: "materials",
	Shaders:   "shaders",
	Textures:  "textures",
}

// Option configures a Loader.
type Option func(*Loader)

// WithRoots overrides the config directories.
func WithRoots(roots Roots) Option {
	return func(l *Loader) { l.roots = roots }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Entry) Option {
	return func(l *Loader) { l.log = logger }
}

// Loader implements resource.Loader over a file system. Asset paths
// referenced from configs are relative to the file system root, paths
// starting with builtin.Prefix are served from the builtin box.
type Loader struct {
	fsys  fs.FS
	roots Roots
	log   *log.Entry
}

// New creates a loader reading from fsys.
func New(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fsys:  fsys,
		roots: DefaultRoots,
		log:   log.WithField("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ReadFile reads an asset file.
func (l *Loader) ReadFile(name string) ([]byte, error) {
	if builtin.IsBuiltinPath(name) {
		return builtin.Source(name)
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, resource.ErrMissingAsset)
	}
	return data, err
}

func (l *Loader) readConfig(root, filename string, v interface{}) (string, error) {
	p := path.Join(root, filename)
	data, err := l.ReadFile(p)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return p, fmt.Errorf("%s: %v: %w", p, err, resource.ErrMalformedDesc)
	}
	return p, nil
}

// LoadMesh implements resource.Loader
func (l *Loader) LoadMesh(filename string) (*resource.MeshDesc, error) {
	var cfg meshConfig
	p, err := l.readConfig(l.roots.Meshes, filename, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("%s: mesh has no name: %w", p, resource.ErrMalformedDesc)
	}

	desc := &resource.MeshDesc{
		DescInfo:  resource.DescInfo{Name: cfg.Name, FilePath: p},
		Materials: cfg.Materials,
	}
	switch {
	case cfg.MeshAsset != "":
		data, err := l.ReadFile(cfg.MeshAsset)
		if err != nil {
			return nil, err
		}
		if err := importMesh(cfg.MeshAsset, data, desc); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	case len(cfg.Vertices) > 0:
		desc.Vertices = make([]resource.Vertex, len(cfg.Vertices))
		for i, v := range cfg.Vertices {
			desc.Vertices[i] = v.vertex()
		}
		desc.Indices = cfg.Indices
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	if len(desc.SubMeshes) == 0 {
		desc.SubMeshes = []resource.SubMesh{{Name: cfg.Name, IndexCount: uint32(len(desc.Indices))}}
	}
	for i := range desc.SubMeshes {
		desc.SubMeshes[i].MaterialIndex = materialIndex(i, len(desc.Materials))
	}
	desc.ComputeBounds()
	return desc, nil
}

// materialIndex maps sub-mesh i to a material, reusing the last one
// when the config names fewer materials than there are sub-meshes.
func materialIndex(i, materials int) int {
	if materials == 0 {
		return 0
	}
	if i >= materials {
		return materials - 1
	}
	return i
}

// LoadMaterial implements resource.Loader
func (l *Loader) LoadMaterial(filename string) (*resource.MaterialDesc, error) {
	var cfg materialConfig
	p, err := l.readConfig(l.roots.Materials, filename, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("%s: material has no name: %w", p, resource.ErrMalformedDesc)
	}

	desc := &resource.MaterialDesc{
		DescInfo:     resource.DescInfo{Name: cfg.Name, FilePath: p},
		Shader:       cfg.UsedShader,
		Uniforms:     make(map[string]resource.MaterialValue, len(cfg.MaterialParams)),
		TexturePaths: make(map[resource.TextureSlot]string, len(cfg.Textures)),
	}
	for name, param := range cfg.MaterialParams {
		value, err := param.value()
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %s: %w", p, name, err)
		}
		desc.Uniforms[name] = value
	}
	for slotName, texture := range cfg.Textures {
		slot, err := resource.ParseTextureSlot(slotName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		desc.TexturePaths[slot] = texture
	}
	return desc, nil
}

// LoadShader implements resource.Loader
func (l *Loader) LoadShader(filename string) (*resource.ShaderDesc, error) {
	var cfg shaderConfig
	p, err := l.readConfig(l.roots.Shaders, filename, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("%s: shader has no name: %w", p, resource.ErrMalformedDesc)
	}

	desc := &resource.ShaderDesc{
		DescInfo: resource.DescInfo{Name: cfg.Name, FilePath: p},
		Stages:   make(map[resource.ShaderStage]string),
		Sources:  make(map[resource.ShaderStage][]byte),
	}
	for _, st := range cfg.Stages {
		stage := resource.ParseShaderStage(st.Name)
		if stage == resource.UnknownStage {
			l.log.WithFields(log.Fields{"shader": cfg.Name, "stage": st.Name}).Warn("skipping unknown shader stage")
			continue
		}
		src, err := l.ReadFile(st.Source)
		if err != nil {
			return nil, err
		}
		desc.Stages[stage] = st.Source
		desc.Sources[stage] = src
	}
	return desc, nil
}

// LoadTexture implements resource.Loader. The texture is named by filename.
func (l *Loader) LoadTexture(filename string) (*resource.TextureDesc, error) {
	p := path.Join(l.roots.Textures, filename)
	data, err := l.ReadFile(p)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &resource.TextureDesc{
		DescInfo: resource.DescInfo{Name: filename, FilePath: p},
		Image:    img,
	}, nil
}
