// Package memory provides read access to the address space of a target
// process, either captured in a snapshot file or held in memory.
package memory

import (
	"errors"
	"fmt"
)

// Address is a location in the target address space.
type Address uint64

// Null is the absent address.
const Null Address = 0

// IsNull reports whether a is the absent address.
func (a Address) IsNull() bool { return a == Null }

// Add returns a displaced by off bytes.
func (a Address) Add(off uint32) Address { return a + Address(off) }

func (a Address) String() string { return fmt.Sprintf("0x%X", uint64(a)) }

// Reader reads raw bytes from a target address space.
// Implementations must be safe for concurrent use.
type Reader interface {
	// ReadMemory fills p with the bytes at addr. A read that cannot be
	// satisfied completely returns an error.
	ReadMemory(addr Address, p []byte) error
}

// Errors returned by readers and snapshot parsing.
var (
	ErrUnmapped      = errors.New("memory: address not mapped")
	ErrInvalidMagic  = errors.New("memory: invalid magic signature, not a snapshot file")
	ErrVersion       = errors.New("memory: unsupported snapshot version")
	ErrTruncatedFile = errors.New("memory: file is truncated")
	ErrOverlap       = errors.New("memory: overlapping regions")
)

// FormatError provides detailed information about snapshot parsing failures.
type FormatError struct {
	Offset  int64  // Byte offset within the file
	Message string // Description of the error
	Err     error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memory: format error at offset 0x%x: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("memory: format error at offset 0x%x: %s", e.Offset, e.Message)
}

func (e *FormatError) Unwrap() error { return e.Err }
