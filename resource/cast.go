// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "fmt"

// As converts r to T after checking that its type tag is t.
func As[T Resource](r Resource, t Type) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrInvalidResource
	}
	if r.Type() != t {
		return zero, fmt.Errorf("%q is a %s, not a %s: %w", r.Name(), r.Type(), t, ErrTypeMismatch)
	}
	typed, ok := r.(T)
	if !ok {
		return zero, fmt.Errorf("%s %q: %w", t, r.Name(), ErrTypeMismatch)
	}
	return typed, nil
}
