// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

// Handle is a typed, non-owning reference to a resource. Holding a
// Handle does not keep the resource alive; devices resolve it by ID
// and a handle to an evicted resource simply fails to resolve.
type Handle[T Resource] struct {
	id ID
}

// HandleOf returns a handle to r. A nil r yields the zero handle.
func HandleOf[T Resource](r T) Handle[T] {
	if any(r) == nil {
		return Handle[T]{}
	}
	return Handle[T]{id: r.ID()}
}

// NewHandle wraps an ID without checking that it refers to a T.
func NewHandle[T Resource](id ID) Handle[T] {
	return Handle[T]{id: id}
}

// ID returns the referenced resource ID.
func (h Handle[T]) ID() ID { return h.id }

// IsZero reports whether the handle references nothing.
func (h Handle[T]) IsZero() bool { return h.id == InvalidID }

// Bits returns the low 16 bits of the ID, used to bucket draws
// by resource. Different resources may share the same bits.
func (h Handle[T]) Bits() uint64 { return uint64(h.id) & 0xFFFF }
