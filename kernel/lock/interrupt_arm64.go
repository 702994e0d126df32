package lock

// interruptState is empty on aarch64: interrupt discipline is inherited
// from the caller on this architecture, so InterruptSafeMutex degrades to
// a bare mutex here, with no masking and no restoration.
type interruptState struct{}

func disableInterrupts() interruptState {
	return interruptState{}
}

func restoreInterrupts(_ interruptState) {}
