//go:build amd64

package lock

import "groveos/kernel/cpu"

// init stubs out the real CLI/STI/pushfq opcodes for the duration of this
// package's tests: they are CPL-0-only instructions and fault immediately
// when a hosted go test binary running in ring 3 executes them for real.
func init() {
	cpu.DisableInterruptsFn = func() {}
	cpu.EnableInterruptsFn = func() {}
	cpu.InterruptsEnabledFn = func() bool { return true }
}
