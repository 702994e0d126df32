package pmm

import (
	"groveos/kernel/bootmem"
	"groveos/kernel/kfmt"
	"groveos/kernel/lock"
)

var (
	globalLock lock.InterruptSafeMutex

	// active is nil in the Uninitialized state and holds the one active
	// backend once Init has run. It only ever transitions
	// nil -> non-nil; once active, it stays active across repeated Init
	// calls, which simply re-seed it in place.
	active backend
)

// Init acquires the process-wide boot memory map under its shared-access
// scope, installs an empty cursor backend if the state was Uninitialized,
// and re-seeds it from the map's Usable regions. Repeated calls re-seed the
// backend in place. A failure to seed is fatal: a malformed boot memory
// map cannot be recovered from at boot.
func Init() {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)

	if active == nil {
		active = &cursorFrameAllocator{}
	}

	err := bootmem.WithBootMemoryMap(func(m *bootmem.BootMemoryMap) error {
		return active.initializeFromMemoryRegions(toBackendRegions(m.Regions()))
	})
	if err != nil {
		panic(err)
	}

	stats := active.stats()
	kfmt.Printf(kfmt.DefaultWriter, "[pmm] frame allocator initialized: %d total frames, %d free\n",
		stats.TotalFrames, stats.FreeFrames)
}

func toBackendRegions(regions []bootmem.MemoryRegion) []memoryRegion {
	converted := make([]memoryRegion, len(regions))
	for i, r := range regions {
		converted[i] = memoryRegion{
			base:   r.Base,
			length: r.Length,
			usable: r.Kind == bootmem.Usable,
		}
	}
	return converted
}

// AllocFrame reserves and returns a single frame.
func AllocFrame() (PhysFrame, error) {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)

	if active == nil {
		return PhysFrame{}, ErrUninitialized
	}
	return active.allocFrame()
}

// FreeFrame returns frame to the recycled list for future reuse.
func FreeFrame(frame PhysFrame) error {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)

	if active == nil {
		return ErrUninitialized
	}
	return active.freeFrame(frame)
}

// AllocContiguous reserves count consecutive frames and returns the start
// of the run.
func AllocContiguous(count uint64) (PhysFrame, error) {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)

	if active == nil {
		return PhysFrame{}, ErrUninitialized
	}
	return active.allocContiguous(count)
}

// ReserveRange removes [base, base+length) from the allocatable pool
// before any allocation has been issued.
func ReserveRange(base, length uint64) error {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)

	if active == nil {
		return ErrUninitialized
	}
	return active.reserveRange(base, length)
}

// WithStats acquires the lock, invokes f with a snapshot of the current
// stats, and returns its result.
func WithStats[R any](f func(Stats) R) (R, error) {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)

	if active == nil {
		var zero R
		return zero, ErrUninitialized
	}
	return f(active.stats()), nil
}
