// Package bootmem normalizes the firmware/bootloader-provided memory map
// into a stable, merged, read-only sequence of typed regions. It is the
// first stage of the two-stage boot memory pipeline: the frame allocator
// (kernel/pmm) is built on top of the regions this package produces.
package bootmem

import "groveos/kernel/memutil"

// MaxMemoryRegions is the fixed capacity of a BootMemoryMap's region array.
// Exceeding it during normalization is a surfaced error, never a silent
// reallocation.
const MaxMemoryRegions = 512

// BootMemoryMap is a fixed-capacity, ordered sequence of normalized memory
// regions plus a cached usable-byte total. It is created empty, populated
// exactly once by Normalize (invoked from Init), and read-only thereafter.
type BootMemoryMap struct {
	regions           [MaxMemoryRegions]MemoryRegion
	len               int
	usableMemoryBytes uint64
}

// empty returns a zeroed BootMemoryMap.
func empty() BootMemoryMap {
	return BootMemoryMap{}
}

// Normalize turns an ordered sequence of raw boot-protocol entries into a
// normalized BootMemoryMap. For each entry in order: zero-length entries
// are dropped, the entry type is mapped to a MemoryRegionKind, base+length
// is overflow-checked, and the region is merged into the previous one if
// they share a kind and the previous region's end touches this base,
// otherwise appended. Usable regions contribute to UsableMemoryBytes as
// they are appended or extended. Normalize never sorts, never coalesces
// overlaps, and never splits regions — overlapping boot-protocol entries
// are a boot-protocol bug and are reflected verbatim.
func Normalize(entries []RawMemoryMapEntry) (BootMemoryMap, error) {
	m := empty()

	for _, entry := range entries {
		if entry.Length == 0 {
			continue
		}

		region := MemoryRegion{
			Base:   entry.Base,
			Length: entry.Length,
			Kind:   kindFromRaw(entry.Type),
		}

		if _, ok := region.end(); !ok {
			return BootMemoryMap{}, ErrAddressOverflow
		}

		merged, err := m.tryMergeWithPrevious(region)
		if err != nil {
			return BootMemoryMap{}, err
		}
		if merged {
			continue
		}

		if m.len >= MaxMemoryRegions {
			return BootMemoryMap{}, ErrTooManyRegions
		}

		m.regions[m.len] = region
		m.len++
		if region.Kind == Usable {
			sum, ok := memutil.CheckedAdd(m.usableMemoryBytes, region.Length)
			if !ok {
				return BootMemoryMap{}, ErrAddressOverflow
			}
			m.usableMemoryBytes = sum
		}
	}

	return m, nil
}

// tryMergeWithPrevious extends the last appended region in place if it has
// the same kind as next and its end equals next's base. Returns whether a
// merge happened.
func (m *BootMemoryMap) tryMergeWithPrevious(next MemoryRegion) (bool, error) {
	if m.len == 0 {
		return false, nil
	}

	previous := &m.regions[m.len-1]
	prevEnd, _ := previous.end()
	if previous.Kind != next.Kind || prevEnd != next.Base {
		return false, nil
	}

	newLength, ok := memutil.CheckedAdd(previous.Length, next.Length)
	if !ok {
		return false, ErrAddressOverflow
	}
	previous.Length = newLength

	if previous.Kind == Usable {
		sum, ok := memutil.CheckedAdd(m.usableMemoryBytes, next.Length)
		if !ok {
			return false, ErrAddressOverflow
		}
		m.usableMemoryBytes = sum
	}

	return true, nil
}

// Regions returns the live prefix of the region array in normalized order.
func (m *BootMemoryMap) Regions() []MemoryRegion {
	return m.regions[:m.len]
}

// UsableMemoryBytes returns the cached sum of Length over every final
// region of kind Usable.
func (m *BootMemoryMap) UsableMemoryBytes() uint64 {
	return m.usableMemoryBytes
}
