// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package manager implements the resource cache. A Manager loads every
// named asset at most once, hands out counted references to it and
// unloads it when the last reference is released.
package manager

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/resource/builtin"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Entry) Option {
	return func(m *Manager) { m.log = logger }
}

// Manager caches resources by type and name. The factory is usually a
// graphics device, so calls that may create resources must come from
// the thread owning the device.
type Manager struct {
	factory resource.Factory
	loader  resource.Loader
	log     *log.Entry

	mu        sync.Mutex
	resources map[resource.ID]resource.Resource
	names     map[resource.Type]map[string]resource.ID
	deps      map[resource.ID][]resource.Resource
	pinned    map[resource.ID]bool
}

// Stats counts cached resources.
type Stats struct {
	Meshes    int
	Materials int
	Shaders   int
	Textures  int
	Pinned    int
}

// New creates an empty cache building resources with factory from
// descriptors produced by loader.
func New(factory resource.Factory, loader resource.Loader, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		loader:  loader,
		log:     log.WithField("component", "resources"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.reset()
	return m
}

func (m *Manager) reset() {
	m.resources = make(map[resource.ID]resource.Resource)
	m.names = make(map[resource.Type]map[string]resource.ID)
	for _, t := range resource.Types {
		m.names[t] = make(map[string]resource.ID)
	}
	m.deps = make(map[resource.ID][]resource.Resource)
	m.pinned = make(map[resource.ID]bool)
}

// Initialize generates the builtin resources. Builtins are pinned, the
// cache keeps a reference of its own so they are never evicted before
// Shutdown.
func (m *Manager) Initialize() error {
	for _, t := range resource.Types {
		desc, err := builtin.Desc(t)
		if err != nil {
			return fmt.Errorf("manager.Initialize(): %w", err)
		}
		res, err := m.load(t, desc, true)
		if err != nil {
			return fmt.Errorf("manager.Initialize(): builtin %s: %w", t, err)
		}
		// The reference returned by load becomes the pin.
		m.mu.Lock()
		again := m.pinned[res.ID()]
		m.pinned[res.ID()] = true
		m.mu.Unlock()
		if again {
			m.Release(res.ID())
			continue
		}
		m.log.WithField("name", res.Name()).Infof("built-in %s created", t)
	}
	return nil
}

// Shutdown forgets every name and unloads every resource regardless
// of outstanding references.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	resources := m.resources
	m.reset()
	m.mu.Unlock()

	for _, res := range resources {
		res.Unload()
	}
	m.log.WithField("count", len(resources)).Debug("resource cache shut down")
}

// LoadResource loads the config file filename of type t and returns
// the resource with one reference held by the caller. A resource
// already cached under the config's name is returned without being
// loaded again.
func (m *Manager) LoadResource(t resource.Type, filename string) (resource.Resource, error) {
	var (
		desc resource.Desc
		err  error
	)
	switch t {
	case resource.MeshType:
		desc, err = asDesc(m.loader.LoadMesh(filename))
	case resource.MaterialType:
		desc, err = asDesc(m.loader.LoadMaterial(filename))
	case resource.ShaderType:
		desc, err = asDesc(m.loader.LoadShader(filename))
	case resource.TextureType:
		desc, err = asDesc(m.loader.LoadTexture(filename))
	default:
		return nil, fmt.Errorf("manager.LoadResource(): %s: %w", t, resource.ErrUnknownType)
	}
	if err != nil {
		return nil, fmt.Errorf("manager.LoadResource(): %s %s: %w", t, filename, err)
	}
	return m.LoadResourceFromDescriptor(t, desc)
}

// asDesc converts typed loader results, keeping a nil descriptor nil.
func asDesc[D resource.Desc](desc D, err error) (resource.Desc, error) {
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// LoadResourceFromDescriptor returns the resource named by desc, creating
// it when it is not cached yet. Dependencies the descriptor names but has
// not resolved are loaded first, falling back to builtins. References held
// in resolved dependency fields are taken over by the cache.
//
// The check, create and insert steps run under one lock, concurrent
// callers never create the same resource twice.
func (m *Manager) LoadResourceFromDescriptor(t resource.Type, desc resource.Desc) (resource.Resource, error) {
	return m.load(t, desc, false)
}

func (m *Manager) load(t resource.Type, desc resource.Desc, allowReserved bool) (resource.Resource, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("manager.Load(): %w", resource.ErrUnknownType)
	}
	if desc == nil || desc.Type() != t {
		m.releaseDeps(desc)
		return nil, fmt.Errorf("manager.Load(): descriptor is not a %s: %w", t, resource.ErrTypeMismatch)
	}
	name := desc.Info().Name
	if name == "" {
		m.releaseDeps(desc)
		return nil, fmt.Errorf("manager.Load(): %s without a name: %w", t, resource.ErrMalformedDesc)
	}
	if !allowReserved && resource.IsReserved(name) {
		m.releaseDeps(desc)
		return nil, fmt.Errorf("manager.Load(): %s %q: %w", t, name, resource.ErrReservedName)
	}

	if res := m.Acquire(t, name); res != nil {
		m.releaseDeps(desc)
		return res, nil
	}

	if err := m.resolve(desc); err != nil {
		m.releaseDeps(desc)
		return nil, fmt.Errorf("manager.Load(): %s %q: %w", t, name, err)
	}

	m.mu.Lock()
	if res := m.acquireLocked(t, name); res != nil {
		m.mu.Unlock()
		m.releaseDeps(desc)
		return res, nil
	}
	res, err := m.create(desc)
	if err != nil {
		m.mu.Unlock()
		m.releaseDeps(desc)
		m.log.WithError(err).WithFields(log.Fields{"type": t, "name": name}).Warn("resource creation failed")
		return nil, fmt.Errorf("manager.Load(): %s %q: %w", t, name, err)
	}
	id := res.ID()
	m.resources[id] = res
	m.names[t][name] = id
	if dep, ok := desc.(resource.Dependent); ok {
		m.deps[id] = dep.Dependencies()
	}
	res.Refer()
	m.mu.Unlock()

	m.log.WithFields(log.Fields{"type": t, "name": name, "id": id}).Debug("resource loaded")
	return res, nil
}

// create calls the factory and checks the result. m.mu is held.
func (m *Manager) create(desc resource.Desc) (resource.Resource, error) {
	var (
		res resource.Resource
		err error
	)
	switch d := desc.(type) {
	case *resource.MeshDesc:
		res, err = asResource(m.factory.CreateMesh(d))
	case *resource.MaterialDesc:
		res, err = asResource(m.factory.CreateMaterial(d))
	case *resource.ShaderDesc:
		res, err = asResource(m.factory.CreateShader(d))
	case *resource.TextureDesc:
		res, err = asResource(m.factory.CreateTexture(d))
	default:
		return nil, resource.ErrTypeMismatch
	}
	if err != nil {
		if res != nil {
			res.Unload()
		}
		if errors.Is(err, resource.ErrInvalidResource) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, resource.ErrInvalidResource)
	}
	if res == nil || !res.Valid() {
		if res != nil {
			res.Unload()
		}
		return nil, resource.ErrInvalidResource
	}
	if res.Type() != desc.Type() {
		res.Unload()
		return nil, resource.ErrTypeMismatch
	}
	return res, nil
}

func asResource[R resource.Resource](res R, err error) (resource.Resource, error) {
	if any(res) == nil {
		return nil, err
	}
	return res, err
}

// Acquire returns the resource of type t cached under name with one more
// reference, or nil when there is none.
func (m *Manager) Acquire(t resource.Type, name string) resource.Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireLocked(t, name)
}

func (m *Manager) acquireLocked(t resource.Type, name string) resource.Resource {
	id, ok := m.names[t][name]
	if !ok {
		return nil
	}
	res, ok := m.resources[id]
	if !ok {
		return nil
	}
	res.Refer()
	return res
}

// AcquireID returns the resource with the given ID with one more
// reference, or nil when it is not cached.
func (m *Manager) AcquireID(id resource.ID) resource.Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.resources[id]
	if !ok {
		return nil
	}
	res.Refer()
	return res
}

// Release drops one reference to the resource with the given ID. The
// resource is evicted and unloaded when no references remain, along
// with the references it held on its dependencies. Unknown IDs are
// ignored.
func (m *Manager) Release(id resource.ID) {
	m.mu.Lock()
	evicted := m.releaseLocked(id)
	m.mu.Unlock()

	for _, res := range evicted {
		m.log.WithFields(log.Fields{"type": res.Type(), "name": res.Name(), "id": res.ID()}).Debug("resource evicted")
		res.Unload()
	}
}

// releaseLocked returns the resources evicted by the release, dependents
// before their dependencies.
func (m *Manager) releaseLocked(id resource.ID) []resource.Resource {
	res, ok := m.resources[id]
	if !ok {
		return nil
	}
	if m.pinned[id] && res.RefCount() <= 1 {
		m.log.WithField("name", res.Name()).Warn("ignoring release of built-in resource without references")
		return nil
	}
	if res.Unrefer() > 0 {
		return nil
	}

	delete(m.resources, id)
	if m.names[res.Type()][res.Name()] == id {
		delete(m.names[res.Type()], res.Name())
	}
	evicted := []resource.Resource{res}
	for _, dep := range m.deps[id] {
		evicted = append(evicted, m.releaseLocked(dep.ID())...)
	}
	delete(m.deps, id)
	return evicted
}

// releaseDeps drops the references a descriptor holds on resolved
// dependencies.
func (m *Manager) releaseDeps(desc resource.Desc) {
	dep, ok := desc.(resource.Dependent)
	if !ok || desc == nil {
		return
	}
	for _, r := range dep.Dependencies() {
		m.Release(r.ID())
	}
	switch d := desc.(type) {
	case *resource.MeshDesc:
		d.ResolvedMaterials = nil
	case *resource.MaterialDesc:
		d.ResolvedShader = nil
		d.ResolvedTextures = nil
	}
}

// LoadOrBuiltin loads filename, substituting the builtin resource of
// type t when loading fails for any reason. It returns nil only when
// the builtins have not been generated.
func (m *Manager) LoadOrBuiltin(t resource.Type, filename string) resource.Resource {
	res, err := m.LoadResource(t, filename)
	if err == nil {
		return res
	}
	m.log.WithError(err).WithField("file", filename).Warnf("using built-in %s", t)
	return m.Builtin(t)
}

// Builtin returns the builtin resource of type t with one more reference.
func (m *Manager) Builtin(t resource.Type) resource.Resource {
	return m.Acquire(t, resource.BuiltinName(t))
}

// List returns the cached resources of type t sorted by name. No
// references are taken.
func (m *Manager) List(t resource.Type) []resource.Resource {
	m.mu.Lock()
	out := make([]resource.Resource, 0, len(m.names[t]))
	for _, id := range m.names[t] {
		out = append(out, m.resources[id])
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Stats returns the number of cached resources per type.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Meshes:    len(m.names[resource.MeshType]),
		Materials: len(m.names[resource.MaterialType]),
		Shaders:   len(m.names[resource.ShaderType]),
		Textures:  len(m.names[resource.TextureType]),
		Pinned:    len(m.pinned),
	}
}
