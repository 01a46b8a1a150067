// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"sync"

	"github.com/devblok/korender/resource"
)

// Arena maps IDs to the live resources of one type a device created.
// Resources remove themselves when unloaded, so a handle to an evicted
// resource fails to resolve instead of reaching freed backend objects.
type Arena[T resource.Resource] struct {
	mu    sync.RWMutex
	items map[resource.ID]T
}

// NewArena returns an empty arena.
func NewArena[T resource.Resource]() *Arena[T] {
	return &Arena[T]{items: make(map[resource.ID]T)}
}

// Insert adds r under its ID.
func (a *Arena[T]) Insert(r T) {
	a.mu.Lock()
	a.items[r.ID()] = r
	a.mu.Unlock()
}

// Remove drops the entry for id.
func (a *Arena[T]) Remove(id resource.ID) {
	a.mu.Lock()
	delete(a.items, id)
	a.mu.Unlock()
}

// Get returns the resource stored under id.
func (a *Arena[T]) Get(id resource.ID) (T, bool) {
	a.mu.RLock()
	r, ok := a.items[id]
	a.mu.RUnlock()
	return r, ok
}

// Resolve returns the valid resource h refers to.
func (a *Arena[T]) Resolve(h resource.Handle[T]) (T, bool) {
	r, ok := a.Get(h.ID())
	if !ok || !r.Valid() {
		var zero T
		return zero, false
	}
	return r, true
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// Clear empties the arena and returns what it held.
func (a *Arena[T]) Clear() []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]T, 0, len(a.items))
	for id, r := range a.items {
		out = append(out, r)
		delete(a.items, id)
	}
	return out
}
