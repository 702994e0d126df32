package pmm

// Stats is a cheap snapshot of the frame allocator's bookkeeping counters.
// It is always derived from, and never stored separately from, the
// invariant total = used + free.
type Stats struct {
	TotalFrames uint64
	FreeFrames  uint64
	UsedFrames  uint64
}

// backend is the capability set every frame allocator implementation must
// provide. The public API (Init/AllocFrame/FreeFrame/AllocContiguous/
// ReserveRange/WithStats) dispatches to whichever backend is currently
// active, so a second strategy (bitmap, buddy, ...) can be added later
// without touching any exported function signature.
type backend interface {
	initializeFromMemoryRegions(regions []memoryRegion) error
	allocFrame() (PhysFrame, error)
	freeFrame(frame PhysFrame) error
	allocContiguous(count uint64) (PhysFrame, error)
	reserveRange(base, length uint64) error
	stats() Stats
}

// memoryRegion is the subset of kernel/bootmem.MemoryRegion the frame
// allocator needs: a base, a length, and whether it is Usable. Defining it
// locally (rather than importing bootmem.MemoryRegion directly into the
// backend interface) keeps the backend interface's only dependency on the
// BMM package at the Init call site.
type memoryRegion struct {
	base   uint64
	length uint64
	usable bool
}
