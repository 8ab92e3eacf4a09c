// Package names decodes pooled engine names.
package names

import (
	"strconv"
	"strings"

	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
)

// MaxBlocks bounds the block index of a name reference.
const MaxBlocks = 8192

// Header is the decoded header of a name pool entry.
type Header struct {
	Wide bool
	Len  uint16
}

// DecodeHeader unpacks an entry header.
func DecodeHeader(info uint16, off *profile.Offsets) Header {
	return Header{
		Wide: (info>>off.FNameEntry.WideBitOffset)&1 == 1,
		Len:  info >> off.FNameEntry.LenBitOffset,
	}
}

// UnitSize returns the size of one code unit.
func (h Header) UnitSize() uint32 {
	if h.Wide {
		return 2
	}
	return 1
}

// EntrySize returns the storage size of an entry, header included,
// rounded up to the pool stride.
func EntrySize(h Header, off *profile.Offsets) uint32 {
	bytes := off.FNameEntry.HeaderSize + uint32(h.Len)*h.UnitSize()
	return (bytes + off.Stride - 1) &^ (off.Stride - 1)
}

// Pool resolves name indices against the engine's name pool.
type Pool struct {
	mem  *memory.Accessor
	addr memory.Address
	off  *profile.Offsets
}

// NewPool returns a Pool for the name pool located at addr.
func NewPool(mem *memory.Accessor, addr memory.Address, off *profile.Offsets) *Pool {
	return &Pool{mem: mem, addr: addr, off: off}
}

// Entry returns the address of the entry for index, or memory.Null.
func (p *Pool) Entry(index uint32) memory.Address {
	bits := p.off.NamePool.BlockOffsetBits
	block := index >> bits
	offset := index & (1<<bits - 1)
	if block >= MaxBlocks {
		return memory.Null
	}

	blockAddr := p.mem.Ptr(p.addr.Add(p.off.NamePool.Blocks + block*8))
	if blockAddr.IsNull() {
		return memory.Null
	}
	return blockAddr + memory.Address(p.off.Stride)*memory.Address(offset)
}

// Header reads the header of the entry at entry.
func (p *Pool) Header(entry memory.Address) Header {
	return DecodeHeader(p.mem.U16(entry.Add(p.off.FNameEntry.InfoOffset)), p.off)
}

// Base returns the undecorated string stored for index.
func (p *Pool) Base(index uint32) string {
	entry := p.Entry(index)
	if entry.IsNull() {
		return ""
	}

	h := p.Header(entry)
	if h.Len == 0 {
		return ""
	}
	data := entry.Add(p.off.FNameEntry.HeaderSize)
	if h.Wide {
		return p.mem.Wide(data, int(h.Len))
	}
	return p.mem.Narrow(data, int(h.Len))
}

// Name resolves the FName stored at fname to its display string.
func (p *Pool) Name(fname memory.Address) string {
	index := p.mem.U32(fname.Add(p.off.FName.ComparisonIndex))
	number := p.mem.U32(fname.Add(p.off.FName.Number))
	return Display(p.Base(index), number)
}

// Display decorates a base string with its instance number and strips any
// path qualification.
func Display(base string, number uint32) string {
	name := base
	if number > 0 {
		name += "_" + strconv.FormatUint(uint64(number), 10)
	}
	if pos := strings.LastIndexByte(name, '/'); pos >= 0 {
		name = name[pos+1:]
	}
	return name
}
