//go:build amd64

package bootmem

import "groveos/kernel/cpu"

// init stubs out the real CLI/STI/pushfq opcodes InterruptSafeMutex would
// otherwise execute on every Init/WithBootMemoryMap call in this package's
// tests: they are CPL-0-only instructions and fault outside ring 0.
func init() {
	cpu.DisableInterruptsFn = func() {}
	cpu.EnableInterruptsFn = func() {}
	cpu.InterruptsEnabledFn = func() bool { return true }
}
