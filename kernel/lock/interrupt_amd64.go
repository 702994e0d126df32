package lock

import "groveos/kernel/cpu"

// interruptState records whether interrupts were enabled before the
// critical section began, so Unlock can restore exactly that state rather
// than unconditionally re-enabling interrupts (which would be wrong for a
// nested Lock call made with interrupts already disabled by the caller).
type interruptState struct {
	wasEnabled bool
}

func disableInterrupts() interruptState {
	wasEnabled := cpu.InterruptsEnabledFn()
	cpu.DisableInterruptsFn()
	return interruptState{wasEnabled: wasEnabled}
}

func restoreInterrupts(state interruptState) {
	if state.wasEnabled {
		cpu.EnableInterruptsFn()
	}
}
