package bootmem

import (
	"groveos/kernel/kfmt"
	"groveos/kernel/lock"
)

var (
	globalLock lock.InterruptSafeMutex
	global     = empty()
)

// BootEntrySource supplies the raw boot-protocol entries consumed by Init.
// It stands in for the boot-protocol handshake, which is an external
// collaborator out of scope for this subsystem: Init does not know or care
// whether the entries came from a Limine response, a test fixture, or
// anything else.
type BootEntrySource func() ([]RawMemoryMapEntry, bool)

// Init acquires the boot-protocol entries from source, normalizes them,
// and installs the result into the process-wide slot. A missing response
// (source returning ok=false) is fatal: the kernel cannot proceed without
// a memory map.
func Init(source BootEntrySource) {
	entries, ok := source()
	if !ok {
		panic(ErrResponseUnavailable)
	}

	normalized, err := Normalize(entries)
	if err != nil {
		panic(err)
	}

	state := globalLock.Lock()
	defer globalLock.Unlock(state)
	global = normalized

	kfmt.Printf(kfmt.DefaultWriter, "[bootmem] normalized boot memory map: %d regions, %d usable bytes\n",
		len(global.Regions()), global.UsableMemoryBytes())
}

// WithBootMemoryMap acquires the process-wide lock, invokes f with a
// read-only view of the installed BootMemoryMap, and releases the lock on
// every exit path. It is the deterministic critical section used by the
// frame allocator's Init and by diagnostics.
func WithBootMemoryMap[R any](f func(*BootMemoryMap) R) R {
	state := globalLock.Lock()
	defer globalLock.Unlock(state)
	return f(&global)
}
