package cpu

// EnableInterruptsFn, DisableInterruptsFn, and InterruptsEnabledFn are
// indirections over the real STI/CLI/pushfq opcodes, mockable the same way
// gopher-os's cpuidFn stands in for the CPUID instruction. CLI/STI are
// CPL-0-only instructions that fault when executed by a hosted go test
// binary running in ring 3, so callers that need to exercise the
// interrupt-masking path under test replace these vars rather than calling
// EnableInterrupts/DisableInterrupts/InterruptsEnabled directly.
var (
	EnableInterruptsFn  = EnableInterrupts
	DisableInterruptsFn = DisableInterrupts
	InterruptsEnabledFn = InterruptsEnabled
)
