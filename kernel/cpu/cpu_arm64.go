package cpu

// EnableInterrupts is a no-op on aarch64: interrupt discipline is
// inherited from the caller on this architecture, so the lock package
// never invokes interrupt masking here.
func EnableInterrupts() {}

// DisableInterrupts is a no-op on aarch64, for the same reason.
func DisableInterrupts() {}

// InterruptsEnabled always reports true on aarch64, since this package
// never masks interrupts here.
func InterruptsEnabled() bool { return true }

// Halt stops instruction execution until the next interrupt.
func Halt()
