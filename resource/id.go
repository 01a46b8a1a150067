// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ID uniquely identifies a resource within the process.
// The high 32 bits hold the process start time in seconds,
// the low 32 bits a sequence number. IDs are never reused.
type ID uint64

// InvalidID is never assigned to a resource.
const InvalidID ID = 0

var (
	idEpoch    = uint64(time.Now().Unix()) & 0xFFFFFFFF
	idSequence atomic.Uint32
)

// NewID returns the next unique resource ID.
func NewID() ID {
	return ID(idEpoch<<32 | uint64(idSequence.Add(1)))
}

// Sequence returns the low 32 bits of the ID.
func (id ID) Sequence() uint32 {
	return uint32(id)
}

func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}
