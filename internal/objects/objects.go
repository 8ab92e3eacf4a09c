// Package objects enumerates the global object array.
package objects

import (
	"iter"

	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
)

// MaxObjects caps the element count read from the target.
const MaxObjects = 1 << 24

// Array is a view of the chunked object array.
type Array struct {
	mem  *memory.Accessor
	addr memory.Address
	off  *profile.Offsets
}

// New returns the array rooted at addr.
func New(mem *memory.Accessor, addr memory.Address, off *profile.Offsets) *Array {
	return &Array{mem: mem, addr: addr, off: off}
}

// Num returns the number of slots, clamped to [0, MaxObjects].
func (a *Array) Num() int {
	n := a.mem.I32(a.addr.Add(a.off.ObjectArray.NumElements))
	if n < 0 {
		return 0
	}
	return min(int(n), MaxObjects)
}

// At returns the object in slot i, or Null when the slot or its chunk is
// empty.
func (a *Array) At(i int) memory.Address {
	if i < 0 || i >= a.Num() {
		return memory.Null
	}
	per := int(a.off.ObjectArray.ElementsPerChunk)
	if per <= 0 {
		return memory.Null
	}

	chunks := a.mem.Ptr(a.addr.Add(a.off.ObjectArray.Objects))
	if chunks.IsNull() {
		return memory.Null
	}
	chunk := a.mem.Ptr(chunks.Add(uint32(i/per) * 8))
	if chunk.IsNull() {
		return memory.Null
	}
	return a.mem.Ptr(chunk.Add(uint32(i%per) * a.off.ObjectArray.ItemSize))
}

// All yields every occupied slot with its index.
func (a *Array) All() iter.Seq2[int, memory.Address] {
	return func(yield func(int, memory.Address) bool) {
		n := a.Num()
		for i := 0; i < n; i++ {
			addr := a.At(i)
			if addr.IsNull() {
				continue
			}
			if !yield(i, addr) {
				return
			}
		}
	}
}
