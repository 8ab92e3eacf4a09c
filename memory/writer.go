package memory

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Chunk is a captured range of bytes to be written into a snapshot.
type Chunk struct {
	Address Address
	Data    []byte
}

// WriteSnapshot writes a snapshot file holding the given chunks.
func WriteSnapshot(w io.Writer, roots Roots, chunks ...Chunk) error {
	if len(roots.Profile) > ProfileNameSize {
		return fmt.Errorf("memory: profile name %q longer than %d bytes", roots.Profile, ProfileNameSize)
	}

	sorted := append([]Chunk(nil), chunks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })
	for i := 1; i < len(sorted); i++ {
		prevEnd := sorted[i-1].Address + Address(len(sorted[i-1].Data))
		if sorted[i].Address < prevEnd {
			return fmt.Errorf("%w: %v and %v", ErrOverlap, sorted[i-1].Address, sorted[i].Address)
		}
	}

	var buf bytes.Buffer
	h := newHeader(roots, len(sorted))
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return err
	}

	offset := uint64(HeaderSize + len(sorted)*RegionEntrySize)
	for _, c := range sorted {
		entry := [3]uint64{uint64(c.Address), uint64(len(c.Data)), offset}
		if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
			return err
		}
		offset += uint64(len(c.Data))
	}
	for _, c := range sorted {
		buf.Write(c.Data)
	}

	_, err := w.Write(buf.Bytes())
	return err
}
