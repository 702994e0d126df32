// Package cpu exposes the architecture-specific primitives the frame
// allocator's locking discipline depends on: masking interrupts around a
// critical section and halting when there is nothing left to do.
package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// InterruptsEnabled reports whether maskable interrupts are currently
// unmasked, by reading the interrupt flag out of RFLAGS.
func InterruptsEnabled() bool

// Halt stops instruction execution until the next interrupt.
func Halt()
