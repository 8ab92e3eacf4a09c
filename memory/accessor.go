package memory

import (
	"encoding/binary"
	"sync/atomic"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Accessor performs typed reads over a Reader. Target memory is untrusted
// and may change while it is read, so reads never fail: a faulted read
// yields zero bytes and is counted.
type Accessor struct {
	r      Reader
	faults atomic.Uint64
}

// NewAccessor wraps r.
func NewAccessor(r Reader) *Accessor {
	return &Accessor{r: r}
}

// Faults returns the number of reads that could not be satisfied.
func (a *Accessor) Faults() uint64 {
	return a.faults.Load()
}

func (a *Accessor) read(addr Address, p []byte) bool {
	if err := a.r.ReadMemory(addr, p); err != nil {
		a.faults.Add(1)
		clear(p)
		return false
	}
	return true
}

// U8 reads an unsigned 8-bit integer.
func (a *Accessor) U8(addr Address) uint8 {
	var b [1]byte
	a.read(addr, b[:])
	return b[0]
}

// U16 reads an unsigned 16-bit integer.
func (a *Accessor) U16(addr Address) uint16 {
	var b [2]byte
	a.read(addr, b[:])
	return binary.LittleEndian.Uint16(b[:])
}

// U32 reads an unsigned 32-bit integer.
func (a *Accessor) U32(addr Address) uint32 {
	var b [4]byte
	a.read(addr, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// I32 reads a signed 32-bit integer.
func (a *Accessor) I32(addr Address) int32 {
	return int32(a.U32(addr))
}

// U64 reads an unsigned 64-bit integer.
func (a *Accessor) U64(addr Address) uint64 {
	var b [8]byte
	a.read(addr, b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Ptr reads a 64-bit pointer.
func (a *Accessor) Ptr(addr Address) Address {
	return Address(a.U64(addr))
}

// Bytes reads n bytes. A faulted read returns n zero bytes and false.
func (a *Accessor) Bytes(addr Address, n int) ([]byte, bool) {
	if n <= 0 {
		return nil, true
	}
	p := make([]byte, n)
	ok := a.read(addr, p)
	return p, ok
}

// Narrow reads n Latin-1 characters and transcodes them to UTF-8.
// A faulted read yields the empty string.
func (a *Accessor) Narrow(addr Address, n int) string {
	raw, ok := a.Bytes(addr, n)
	if !ok || len(raw) == 0 {
		return ""
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return string(out)
}

// Wide reads units UTF-16LE code units and transcodes them to UTF-8.
// Undecodable input yields the empty string.
func (a *Accessor) Wide(addr Address, units int) string {
	if units <= 0 {
		return ""
	}
	raw, ok := a.Bytes(addr, units*2)
	if !ok {
		return ""
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return ""
	}
	return string(out)
}
