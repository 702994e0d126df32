// Package kmain wires the boot memory map and frame allocator together in
// the order the kernel's entry point must call them: the boot memory map
// first (it has nothing to depend on), the frame allocator second (it
// reads the installed map).
package kmain

import (
	"groveos/kernel/bootmem"
	"groveos/kernel/pmm"
)

// Init runs the two-stage boot memory pipeline. source supplies the raw
// boot-protocol entries (see bootmem.BootEntrySource); the boot-protocol
// handshake that would normally produce them is an external collaborator
// out of scope for this subsystem.
//
// Init panics if either stage fails: a malformed or missing boot memory
// map is unrecoverable this early in boot.
func Init(source bootmem.BootEntrySource) {
	bootmem.Init(source)
	pmm.Init()
}
