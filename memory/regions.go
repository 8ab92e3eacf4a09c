package memory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/skdltmxn/uedump/internal/stream"
)

// RegionEntrySize is the size of one region table entry in bytes.
const RegionEntrySize = 24

// Region describes a captured range of the target address space.
type Region struct {
	// Address is the first captured address
	Address Address

	// Size is the number of captured bytes
	Size uint64

	// FileOffset is where the bytes live in the snapshot file
	FileOffset uint64
}

// End returns one past the last captured address.
func (r Region) End() Address {
	return r.Address + Address(r.Size)
}

// Contains reports whether [addr, addr+n) lies inside the region.
func (r Region) Contains(addr Address, n int) bool {
	if addr < r.Address {
		return false
	}
	off := uint64(addr - r.Address)
	return off <= r.Size && uint64(n) <= r.Size-off
}

// RegionTable is the sorted list of captured regions.
type RegionTable struct {
	Regions []Region
}

// ParseRegionTable reads the region table from the given byte slice.
// fileSize bounds the data backing each region.
func ParseRegionTable(data []byte, numRegions uint32, fileSize int64) (*RegionTable, error) {
	r := stream.NewReader(data)
	table := &RegionTable{Regions: make([]Region, 0, numRegions)}

	for i := uint32(0); i < numRegions; i++ {
		entry, err := r.SubReader(RegionEntrySize)
		if err != nil {
			return nil, &FormatError{Offset: HeaderSize + int64(r.Offset()), Message: "truncated region table", Err: err}
		}

		var reg Region
		addr, _ := entry.ReadU64()
		reg.Address = Address(addr)
		reg.Size, _ = entry.ReadU64()
		reg.FileOffset, _ = entry.ReadU64()

		if reg.FileOffset+reg.Size > uint64(fileSize) || reg.FileOffset+reg.Size < reg.FileOffset {
			return nil, &FormatError{
				Offset:  HeaderSize + int64(i)*RegionEntrySize,
				Message: fmt.Sprintf("region %d data out of file bounds", i),
				Err:     ErrTruncatedFile,
			}
		}
		if reg.End() < reg.Address {
			return nil, &FormatError{
				Offset:  HeaderSize + int64(i)*RegionEntrySize,
				Message: fmt.Sprintf("region %d wraps the address space", i),
			}
		}
		table.Regions = append(table.Regions, reg)
	}

	if err := table.sort(); err != nil {
		return nil, err
	}
	return table, nil
}

func (t *RegionTable) sort() error {
	sort.Slice(t.Regions, func(i, j int) bool {
		return t.Regions[i].Address < t.Regions[j].Address
	})
	for i := 1; i < len(t.Regions); i++ {
		if t.Regions[i].Address < t.Regions[i-1].End() {
			return fmt.Errorf("%w: %v and %v", ErrOverlap, t.Regions[i-1].Address, t.Regions[i].Address)
		}
	}
	return nil
}

// Find returns the region containing [addr, addr+n).
func (t *RegionTable) Find(addr Address, n int) (Region, error) {
	i := sort.Search(len(t.Regions), func(i int) bool {
		return t.Regions[i].End() > addr
	})
	if i < len(t.Regions) && t.Regions[i].Contains(addr, n) {
		return t.Regions[i], nil
	}
	return Region{}, fmt.Errorf("%w: %v (+%d)", ErrUnmapped, addr, n)
}

// IsUnmapped reports whether err is an unmapped-address error.
func IsUnmapped(err error) bool {
	return errors.Is(err, ErrUnmapped)
}
