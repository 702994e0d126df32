package pmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usableRegion(base, length uint64) memoryRegion {
	return memoryRegion{base: base, length: length, usable: true}
}

func reservedRegion(base, length uint64) memoryRegion {
	return memoryRegion{base: base, length: length, usable: false}
}

func newCursorAllocator(t *testing.T, regions []memoryRegion) *cursorFrameAllocator {
	t.Helper()
	c := &cursorFrameAllocator{}
	require.NoError(t, c.initializeFromMemoryRegions(regions))
	return c
}

// S1 — exhaust and refuse.
func TestCursorExhaustAndRefuse(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x3000)})

	first, err := c.allocFrame()
	require.NoError(t, err)
	second, err := c.allocFrame()
	require.NoError(t, err)
	third, err := c.allocFrame()
	require.NoError(t, err)

	assert.Equal(t, uint64(0x1000), first.StartAddress())
	assert.Equal(t, uint64(0x2000), second.StartAddress())
	assert.Equal(t, uint64(0x3000), third.StartAddress())

	_, err = c.allocFrame()
	assert.ErrorIs(t, err, ErrOutOfMemory)

	stats := c.stats()
	assert.Equal(t, Stats{TotalFrames: 3, UsedFrames: 3, FreeFrames: 0}, stats)
}

// S2 — recycle LIFO.
func TestCursorRecycleLIFO(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x8000, 0x2000)})

	f0, err := c.allocFrame()
	require.NoError(t, err)
	f1, err := c.allocFrame()
	require.NoError(t, err)
	require.NoError(t, c.freeFrame(f0))
	r, err := c.allocFrame()
	require.NoError(t, err)

	assert.Equal(t, uint64(0x8000), f0.StartAddress())
	assert.Equal(t, uint64(0x9000), f1.StartAddress())
	assert.Equal(t, f0.StartAddress(), r.StartAddress())
}

// S3 — skip non-usable.
func TestCursorSkipsNonUsableRegions(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{
		reservedRegion(0x0, 0x5000),
		usableRegion(0x8000, 0x1000),
		reservedRegion(0x9000, 0x2000),
	})

	frame, err := c.allocFrame()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x8000), frame.StartAddress())

	_, err = c.allocFrame()
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

// S4 — round to boundaries.
func TestCursorRoundsToFrameBoundaries(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1003, 0x3001)})

	first, err := c.allocFrame()
	require.NoError(t, err)
	second, err := c.allocFrame()
	require.NoError(t, err)

	assert.Equal(t, uint64(0x2000), first.StartAddress())
	assert.Equal(t, uint64(0x3000), second.StartAddress())

	_, err = c.allocFrame()
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

// S5 — contiguous then tail.
func TestCursorContiguousThenTail(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x5000)})

	start, err := c.allocContiguous(3)
	require.NoError(t, err)
	next, err := c.allocFrame()
	require.NoError(t, err)

	assert.Equal(t, uint64(0x1000), start.StartAddress())
	assert.Equal(t, uint64(0x4000), next.StartAddress())
}

func TestCursorRejectsInvalidFreeAddress(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x2000)})

	invalid, err := FromStartAddress(0x7000)
	require.NoError(t, err)

	err = c.freeFrame(invalid)
	assert.ErrorIs(t, err, ErrInvalidFrameAddress)
}

func TestCursorRejectsDoubleFreeBeyondIssuedCount(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x1000)})

	frame, err := c.allocFrame()
	require.NoError(t, err)
	require.NoError(t, c.freeFrame(frame))

	err = c.freeFrame(frame)
	assert.ErrorIs(t, err, ErrInvalidFrameAddress)
}

func TestCursorAllocContiguousZeroCountRejected(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x1000)})

	_, err := c.allocContiguous(0)
	assert.ErrorIs(t, err, ErrInvalidFrameCount)
}

func TestCursorAllocContiguousNeverConsultsRecycledList(t *testing.T) {
	// Two adjacent frames of one region recycled back: a contiguous
	// request for 2 frames must still fail, because the recycled list
	// carries no adjacency information. This is an intentional quirk,
	// not a bug.
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x2000)})

	f0, err := c.allocFrame()
	require.NoError(t, err)
	f1, err := c.allocFrame()
	require.NoError(t, err)
	require.NoError(t, c.freeFrame(f0))
	require.NoError(t, c.freeFrame(f1))

	_, err = c.allocContiguous(2)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

// S6 — reserve carves a hole.
func TestCursorReserveRangeCarvesHole(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x6000)})

	require.NoError(t, c.reserveRange(0x2000, 0x2000))

	f0, err := c.allocFrame()
	require.NoError(t, err)
	f1, err := c.allocFrame()
	require.NoError(t, err)
	f2, err := c.allocFrame()
	require.NoError(t, err)
	f3, err := c.allocFrame()
	require.NoError(t, err)

	assert.Equal(t, uint64(0x1000), f0.StartAddress())
	assert.Equal(t, uint64(0x4000), f1.StartAddress())
	assert.Equal(t, uint64(0x5000), f2.StartAddress())
	assert.Equal(t, uint64(0x6000), f3.StartAddress())

	_, err = c.allocFrame()
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestCursorReserveRangeRejectedAfterAllocation(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x2000)})

	_, err := c.allocFrame()
	require.NoError(t, err)

	err = c.reserveRange(0x1000, 0x1000)
	assert.ErrorIs(t, err, ErrInvalidReserveRange)
}

func TestCursorReserveRangeZeroLengthIsNoop(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{usableRegion(0x1000, 0x2000)})
	before := c.stats()

	require.NoError(t, c.reserveRange(0x1000, 0))

	assert.Equal(t, before, c.stats())
}

func TestCursorAllocContiguousAdvancesCursorEvenWithSlack(t *testing.T) {
	// alloc_contiguous advances region_cursor to the region it served
	// from, even if that region still has slack afterwards; this keeps
	// allocation ordering observable and is an intentional bookkeeping
	// choice, not an oversight.
	c := newCursorAllocator(t, []memoryRegion{
		usableRegion(0x1000, 0x1000),
		usableRegion(0x2000, 0x4000),
	})

	start, err := c.allocContiguous(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), start.StartAddress())
	assert.Equal(t, 0, c.regionCursor)

	start, err = c.allocContiguous(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2000), start.StartAddress())
	assert.Equal(t, 1, c.regionCursor)
}

func TestCursorInvariantsHoldAcrossMixedOperations(t *testing.T) {
	c := newCursorAllocator(t, []memoryRegion{
		usableRegion(0x1000, 0x4000),
		usableRegion(0x10000, 0x4000),
	})

	var held []PhysFrame
	for i := 0; i < 4; i++ {
		f, err := c.allocFrame()
		require.NoError(t, err)
		held = append(held, f)
	}
	require.NoError(t, c.freeFrame(held[1]))
	held = append(held[:1], held[2:]...)

	f, err := c.allocFrame()
	require.NoError(t, err)
	held = append(held, f)

	stats := c.stats()
	assert.Equal(t, stats.UsedFrames+stats.FreeFrames, stats.TotalFrames)

	var sumFrames uint64
	for _, region := range c.regions[:c.regionLen] {
		sumFrames += (region.end - region.start) / FrameSize
	}
	assert.Equal(t, sumFrames, stats.TotalFrames)

	for _, frame := range held {
		assert.Zero(t, frame.StartAddress()%FrameSize)
		assert.True(t, c.containsFrameAddress(frame.StartAddress()))
	}
}
