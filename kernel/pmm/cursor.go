package pmm

import "groveos/kernel/memutil"

// MaxFrameRegions is the fixed capacity of a cursorFrameAllocator's region
// array.
const MaxFrameRegions = 512

// MaxRecycledFrames is the fixed capacity of the recycled-frame LIFO
// buffer.
const MaxRecycledFrames = 512

// frameRegion is a frame-aligned byte range carved out of a Usable boot
// memory region. next is the bump cursor: addresses in [start, next) have
// been issued at least once, [next, end) are untouched.
type frameRegion struct {
	start, next, end uint64
}

func (r frameRegion) frameCount() uint64 {
	return (r.end - r.start) / FrameSize
}

// overlaps reports whether this region shares any byte with
// [otherStart, otherEnd).
func (r frameRegion) overlaps(otherStart, otherEnd uint64) bool {
	return r.start < otherEnd && otherStart < r.end
}

// cursorFrameAllocator implements backend using a bump cursor per region
// plus a LIFO recycled-frame list. Additional backends would implement the
// same interface.
type cursorFrameAllocator struct {
	regions      [MaxFrameRegions]frameRegion
	regionLen    int
	regionCursor int

	recycled    [MaxRecycledFrames]uint64
	recycledLen int

	totalFrames uint64
	usedFrames  uint64
	freeFrames  uint64
}

// initializeFromMemoryRegions clears all allocator state and carves a
// fresh set of frame regions out of the Usable input regions. Non-usable
// or zero-length regions are skipped; region endpoints are rounded inward
// to frame boundaries, and a region that becomes empty after rounding is
// dropped.
func (c *cursorFrameAllocator) initializeFromMemoryRegions(regions []memoryRegion) error {
	c.regionLen = 0
	c.regionCursor = 0
	c.recycledLen = 0
	c.totalFrames = 0
	c.usedFrames = 0
	c.freeFrames = 0

	for _, region := range regions {
		if !region.usable || region.length == 0 {
			continue
		}

		end, ok := memutil.CheckedAdd(region.base, region.length)
		if !ok {
			return ErrAddressOverflow
		}

		startAligned, err := memutil.AlignUp(region.base, FrameSize)
		if err != nil {
			return ErrAddressOverflow
		}
		endAligned := memutil.AlignDown(end, FrameSize)

		if startAligned >= endAligned {
			continue
		}

		if c.regionLen >= MaxFrameRegions {
			return ErrTooManyRegions
		}

		fr := frameRegion{start: startAligned, next: startAligned, end: endAligned}
		total, ok := memutil.CheckedAdd(c.totalFrames, fr.frameCount())
		if !ok {
			return ErrAddressOverflow
		}
		c.totalFrames = total

		c.regions[c.regionLen] = fr
		c.regionLen++
	}

	c.freeFrames = c.totalFrames
	return nil
}

// containsFrameAddress reports whether address is frame-aligned and falls
// inside some current region's [start, end) range.
func (c *cursorFrameAllocator) containsFrameAddress(address uint64) bool {
	if address%FrameSize != 0 {
		return false
	}

	for _, region := range c.regions[:c.regionLen] {
		if address >= region.start && address < region.end {
			return true
		}
	}
	return false
}

func (c *cursorFrameAllocator) popRecycled() (uint64, bool) {
	if c.recycledLen == 0 {
		return 0, false
	}
	c.recycledLen--
	return c.recycled[c.recycledLen], true
}

func (c *cursorFrameAllocator) pushRecycled(address uint64) error {
	if c.recycledLen >= MaxRecycledFrames {
		return ErrFreeListFull
	}
	c.recycled[c.recycledLen] = address
	c.recycledLen++
	return nil
}

func (c *cursorFrameAllocator) recomputeTotalFrames() error {
	var total uint64
	for _, region := range c.regions[:c.regionLen] {
		sum, ok := memutil.CheckedAdd(total, region.frameCount())
		if !ok {
			return ErrAddressOverflow
		}
		total = sum
	}
	c.totalFrames = total
	c.freeFrames = saturatingSub(c.totalFrames, c.usedFrames)
	return nil
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// allocFrame serves a recycled address first, LIFO, then falls back to the
// bump cursor, scanning regions in array order starting at regionCursor.
func (c *cursorFrameAllocator) allocFrame() (PhysFrame, error) {
	if address, ok := c.popRecycled(); ok {
		c.usedFrames++
		c.freeFrames = saturatingSub(c.freeFrames, 1)
		return FromStartAddress(address)
	}

	for c.regionCursor < c.regionLen {
		region := &c.regions[c.regionCursor]
		if region.next < region.end {
			address := region.next
			next, ok := memutil.CheckedAdd(region.next, FrameSize)
			if !ok {
				return PhysFrame{}, ErrAddressOverflow
			}
			region.next = next

			c.usedFrames++
			c.freeFrames = saturatingSub(c.freeFrames, 1)
			return FromStartAddress(address)
		}

		c.regionCursor++
	}

	return PhysFrame{}, ErrOutOfMemory
}

// freeFrame validates the address, rejects double-frees and over-frees,
// and pushes the address onto the recycled list.
func (c *cursorFrameAllocator) freeFrame(frame PhysFrame) error {
	address := frame.StartAddress()
	if !c.containsFrameAddress(address) {
		return ErrInvalidFrameAddress
	}
	if c.usedFrames == 0 || c.freeFrames >= c.totalFrames {
		return ErrInvalidFrameAddress
	}

	if err := c.pushRecycled(address); err != nil {
		return err
	}
	c.usedFrames--
	c.freeFrames++
	return nil
}

// allocContiguous serves count consecutive frames from a single region,
// scanning from regionCursor. The recycled list is never consulted: it
// carries no adjacency information. regionCursor advances to the region
// that served the request even if that region still has slack afterwards.
func (c *cursorFrameAllocator) allocContiguous(count uint64) (PhysFrame, error) {
	if count == 0 {
		return PhysFrame{}, ErrInvalidFrameCount
	}

	sizeBytes, ok := memutil.CheckedMul(count, FrameSize)
	if !ok {
		return PhysFrame{}, ErrAddressOverflow
	}

	for idx := c.regionCursor; idx < c.regionLen; idx++ {
		region := &c.regions[idx]
		candidateEnd, ok := memutil.CheckedAdd(region.next, sizeBytes)
		if !ok {
			return PhysFrame{}, ErrAddressOverflow
		}

		if candidateEnd <= region.end {
			start := region.next
			region.next = candidateEnd
			c.regionCursor = idx
			c.usedFrames += count
			c.freeFrames = saturatingSub(c.freeFrames, count)
			return FromStartAddress(start)
		}

		if region.next == region.end && c.regionCursor == idx {
			c.regionCursor++
		}
	}

	return PhysFrame{}, ErrOutOfMemory
}

// reserveRange removes the frame-aligned superset of [base, base+length)
// from the allocatable pool. Only valid before any allocation has been
// issued. The replacement region array is built in a local buffer and
// swapped in only on success, so a TooManyRegions failure midway through
// leaves the original state untouched.
func (c *cursorFrameAllocator) reserveRange(base, length uint64) error {
	if length == 0 {
		return nil
	}
	if c.usedFrames != 0 {
		return ErrInvalidReserveRange
	}

	reserveEnd, ok := memutil.CheckedAdd(base, length)
	if !ok {
		return ErrAddressOverflow
	}
	reserveStart := memutil.AlignDown(base, FrameSize)
	reserveEndAligned, err := memutil.AlignUp(reserveEnd, FrameSize)
	if err != nil {
		return ErrAddressOverflow
	}

	var nextRegions [MaxFrameRegions]frameRegion
	nextLen := 0

	appendRegion := func(r frameRegion) error {
		if nextLen >= MaxFrameRegions {
			return ErrTooManyRegions
		}
		nextRegions[nextLen] = r
		nextLen++
		return nil
	}

	for _, region := range c.regions[:c.regionLen] {
		if !region.overlaps(reserveStart, reserveEndAligned) {
			if err := appendRegion(region); err != nil {
				return err
			}
			continue
		}

		if reserveStart > region.start {
			leftEnd := min(reserveStart, region.end)
			if region.start < leftEnd {
				if err := appendRegion(frameRegion{start: region.start, next: region.start, end: leftEnd}); err != nil {
					return err
				}
			}
		}

		if reserveEndAligned < region.end {
			rightStart := max(reserveEndAligned, region.start)
			if rightStart < region.end {
				if err := appendRegion(frameRegion{start: rightStart, next: rightStart, end: region.end}); err != nil {
					return err
				}
			}
		}
	}

	c.regions = nextRegions
	c.regionLen = nextLen
	c.regionCursor = 0
	c.recycledLen = 0
	return c.recomputeTotalFrames()
}

func (c *cursorFrameAllocator) stats() Stats {
	return Stats{
		TotalFrames: c.totalFrames,
		FreeFrames:  c.freeFrames,
		UsedFrames:  c.usedFrames,
	}
}
