// Package lock provides the process-wide mutual-exclusion primitive used by
// the boot memory map and frame allocator singletons. Every public
// operation on those singletons acquires this lock, performs its work, and
// releases it unconditionally on all exit paths, including error returns.
package lock

import "sync"

// InterruptSafeMutex pairs a plain mutex with interrupt masking. On
// x86_64, an interrupt handler may itself try to allocate or inspect
// frames; disabling interrupts for the critical section's duration
// prevents that handler from deadlocking against this same lock. On
// aarch64, interrupt discipline is inherited from the caller, so this
// type degrades to a bare mutex there (see the arm64-tagged
// interruptState implementation).
type InterruptSafeMutex struct {
	mu sync.Mutex
}

// Lock acquires the mutex and, on x86_64, disables interrupts for the
// critical section that follows. It returns a token that must be passed
// to Unlock to restore the prior interrupt state.
func (m *InterruptSafeMutex) Lock() interruptState {
	m.mu.Lock()
	return disableInterrupts()
}

// Unlock restores the interrupt state captured by the matching Lock call
// and releases the mutex.
func (m *InterruptSafeMutex) Unlock(state interruptState) {
	restoreInterrupts(state)
	m.mu.Unlock()
}
