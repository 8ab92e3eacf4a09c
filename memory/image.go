package memory

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Image is a snapshot of a target address space backed by a file.
// It is safe for concurrent reads.
type Image struct {
	data   io.ReaderAt
	closer io.Closer // may be nil if data doesn't need closing
	size   int64
	header *Header
	table  *RegionTable
}

// Open opens a snapshot file from the given path.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memory: failed to open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("memory: failed to stat file: %w", err)
	}

	img, err := NewImage(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}

	img.closer = f
	return img, nil
}

// NewImage creates an Image from an io.ReaderAt.
// The caller is responsible for closing the underlying reader if needed.
func NewImage(r io.ReaderAt, size int64) (*Image, error) {
	if size < HeaderSize {
		return nil, ErrTruncatedFile
	}

	hdrData := make([]byte, HeaderSize)
	if _, err := r.ReadAt(hdrData, 0); err != nil {
		return nil, fmt.Errorf("memory: failed to read header: %w", err)
	}

	h, err := ReadHeader(bytes.NewReader(hdrData))
	if err != nil {
		return nil, err
	}

	if size < HeaderSize+int64(h.TableSize()) {
		return nil, ErrTruncatedFile
	}
	tableData := make([]byte, h.TableSize())
	if len(tableData) > 0 {
		if _, err := r.ReadAt(tableData, HeaderSize); err != nil {
			return nil, fmt.Errorf("memory: failed to read region table: %w", err)
		}
	}

	table, err := ParseRegionTable(tableData, h.NumRegions, size)
	if err != nil {
		return nil, err
	}

	return &Image{
		data:   r,
		size:   size,
		header: h,
		table:  table,
	}, nil
}

// Close releases resources associated with the image.
func (img *Image) Close() error {
	if img.closer != nil {
		return img.closer.Close()
	}
	return nil
}

// Header returns the snapshot header.
func (img *Image) Header() *Header {
	return img.header
}

// Roots returns the root addresses recorded in the snapshot.
func (img *Image) Roots() Roots {
	return img.header.Roots()
}

// Regions returns the captured regions sorted by address.
func (img *Image) Regions() []Region {
	return img.table.Regions
}

// FileSize returns the total size of the snapshot file.
func (img *Image) FileSize() int64 {
	return img.size
}

// ReadMemory implements Reader. Reads must not straddle regions.
func (img *Image) ReadMemory(addr Address, p []byte) error {
	reg, err := img.table.Find(addr, len(p))
	if err != nil {
		return err
	}
	off := int64(reg.FileOffset) + int64(addr-reg.Address)
	n, err := img.data.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("memory: failed to read %v: %w", addr, err)
}
