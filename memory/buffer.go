package memory

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Buffer is a growable, contiguous address space held in memory.
// Allocation and writes are not synchronized with reads; finish building
// before reading concurrently.
type Buffer struct {
	base Address
	data []byte
	mu   sync.RWMutex
}

// NewBuffer creates an empty Buffer whose first byte lives at base.
func NewBuffer(base Address) *Buffer {
	return &Buffer{base: base}
}

// Base returns the address of the first byte.
func (b *Buffer) Base() Address { return b.base }

// Len returns the number of allocated bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Alloc reserves size zeroed bytes aligned to align and returns their address.
func (b *Buffer) Alloc(size, align int) Address {
	b.mu.Lock()
	defer b.mu.Unlock()

	if align > 1 {
		if mod := len(b.data) % align; mod != 0 {
			b.data = append(b.data, make([]byte, align-mod)...)
		}
	}
	addr := b.base + Address(len(b.data))
	b.data = append(b.data, make([]byte, size)...)
	return addr
}

func (b *Buffer) slice(addr Address, n int) ([]byte, error) {
	if addr < b.base {
		return nil, fmt.Errorf("%w: %v (+%d)", ErrUnmapped, addr, n)
	}
	off := uint64(addr - b.base)
	if off > uint64(len(b.data)) || uint64(n) > uint64(len(b.data))-off {
		return nil, fmt.Errorf("%w: %v (+%d)", ErrUnmapped, addr, n)
	}
	return b.data[off : off+uint64(n)], nil
}

// ReadMemory implements Reader.
func (b *Buffer) ReadMemory(addr Address, p []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	src, err := b.slice(addr, len(p))
	if err != nil {
		return err
	}
	copy(p, src)
	return nil
}

// PutBytes writes p at addr. Writing outside allocated memory panics.
func (b *Buffer) PutBytes(addr Address, p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dst, err := b.slice(addr, len(p))
	if err != nil {
		panic(err)
	}
	copy(dst, p)
}

// PutU8 writes an unsigned 8-bit integer.
func (b *Buffer) PutU8(addr Address, v uint8) {
	b.PutBytes(addr, []byte{v})
}

// PutU16 writes an unsigned 16-bit integer.
func (b *Buffer) PutU16(addr Address, v uint16) {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], v)
	b.PutBytes(addr, p[:])
}

// PutU32 writes an unsigned 32-bit integer.
func (b *Buffer) PutU32(addr Address, v uint32) {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], v)
	b.PutBytes(addr, p[:])
}

// PutU64 writes an unsigned 64-bit integer.
func (b *Buffer) PutU64(addr Address, v uint64) {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], v)
	b.PutBytes(addr, p[:])
}

// PutPtr writes a 64-bit pointer.
func (b *Buffer) PutPtr(addr, v Address) {
	b.PutU64(addr, uint64(v))
}

// Chunk returns a copy of the buffer contents as a snapshot chunk.
func (b *Buffer) Chunk() Chunk {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := make([]byte, len(b.data))
	copy(data, b.data)
	return Chunk{Address: b.base, Data: data}
}
