package memory

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/skdltmxn/uedump/internal/stream"
)

// Magic signature of snapshot files.
const Magic = "UEDUMP\x00\x01"

// MagicSize is the size of the magic signature in bytes
const MagicSize = 8

// HeaderSize is the total size of the Header structure
const HeaderSize = 56

// ProfileNameSize is the size of the profile name field in bytes
const ProfileNameSize = 16

// Version is the snapshot format version written by WriteSnapshot.
const Version uint32 = 1

// MaxRegions bounds the region table of a snapshot.
const MaxRegions = 1 << 20

// Header is located at file offset 0 and describes the snapshot layout
// and the entry points into the captured address space.
type Header struct {
	// FileMagic must equal the Magic constant
	FileMagic [MagicSize]byte

	// Version of the snapshot format
	Version uint32

	// NumRegions is the number of entries in the region table that
	// immediately follows the header
	NumRegions uint32

	// Roots locate the engine globals in the captured address space
	ModuleBase  uint64
	NamePool    uint64
	ObjectArray uint64

	// Profile names the offset profile the snapshot was captured for,
	// NUL padded. Empty means unspecified.
	Profile [ProfileNameSize]byte
}

// Roots are the addresses the reconstruction starts from.
type Roots struct {
	ModuleBase  Address
	NamePool    Address
	ObjectArray Address
	Profile     string
}

// ReadHeader reads and validates a Header from the given reader.
// The reader should be positioned at the beginning of the snapshot file.
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header

	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncatedFile
		}
		return nil, fmt.Errorf("memory: failed to read header: %w", err)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	return &h, nil
}

// Validate checks the Header for internal consistency.
func (h *Header) Validate() error {
	if string(h.FileMagic[:]) != Magic {
		return ErrInvalidMagic
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if h.NumRegions > MaxRegions {
		return &FormatError{Offset: 12, Message: fmt.Sprintf("too many regions: %d", h.NumRegions)}
	}
	return nil
}

// TableSize returns the size of the region table in bytes.
func (h *Header) TableSize() int {
	return int(h.NumRegions) * RegionEntrySize
}

// Roots returns the root addresses recorded in the header.
func (h *Header) Roots() Roots {
	profile, _ := stream.NewReader(h.Profile[:]).ReadFixedString(ProfileNameSize)
	return Roots{
		ModuleBase:  Address(h.ModuleBase),
		NamePool:    Address(h.NamePool),
		ObjectArray: Address(h.ObjectArray),
		Profile:     profile,
	}
}

func newHeader(roots Roots, numRegions int) Header {
	h := Header{
		Version:     Version,
		NumRegions:  uint32(numRegions),
		ModuleBase:  uint64(roots.ModuleBase),
		NamePool:    uint64(roots.NamePool),
		ObjectArray: uint64(roots.ObjectArray),
	}
	copy(h.FileMagic[:], Magic)
	copy(h.Profile[:], roots.Profile)
	return h
}
