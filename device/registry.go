// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Constructor builds a device for a registered backend.
type Constructor func(logger *log.Entry) (Device, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[BackendAPI]Constructor)
)

// Register makes a backend available by api. Backend packages call it
// from init. Registering the same api twice panics.
func Register(api BackendAPI, ctor Constructor) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if ctor == nil {
		panic("device: Register constructor is nil")
	}
	if _, dup := backends[api]; dup {
		panic("device: Register called twice for backend " + string(api))
	}
	backends[api] = ctor
}

// Backends returns the registered backend names, sorted.
func Backends() []BackendAPI {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	apis := maps.Keys(backends)
	slices.Sort(apis)
	return apis
}

// New creates a device of the given backend. A nil logger uses the
// standard logger.
func New(api BackendAPI, logger *log.Entry) (Device, error) {
	backendsMu.RLock()
	ctor, ok := backends[api]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("device.New(): %q: %w", api, ErrNoBackend)
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return ctor(logger.WithField("backend", string(api)))
}
