package bootmem

// RawMemoryRegionType is the entry-type tag as delivered by the
// boot-protocol collaborator, before it is mapped to a MemoryRegionKind.
// The boot-protocol handshake itself is out of scope for this subsystem;
// this is only the shape of the values it hands us.
type RawMemoryRegionType uint32

// Raw entry types understood by the fixed mapping table. Any value outside
// this set maps to MemoryRegionKind Unknown.
const (
	RawUsable RawMemoryRegionType = iota
	RawReserved
	RawAcpiReclaimable
	RawAcpiNvs
	RawBadMemory
	RawBootloaderReclaimable
	RawExecutableAndModules
	RawFramebuffer
)

// RawMemoryMapEntry is a single entry as delivered by the boot-protocol
// collaborator: a physical base address, a length in bytes, and a type tag.
type RawMemoryMapEntry struct {
	Base   uint64
	Length uint64
	Type   RawMemoryRegionType
}

// MemoryRegionKind is the closed set of region kinds tracked by the boot
// memory map.
type MemoryRegionKind uint8

const (
	Usable MemoryRegionKind = iota
	Reserved
	AcpiReclaimable
	AcpiNvs
	BadMemory
	BootloaderReclaimable
	ExecutableAndModules
	Framebuffer
	Unknown
)

// String implements fmt.Stringer for diagnostic logging only; it is never
// used for control flow.
func (k MemoryRegionKind) String() string {
	switch k {
	case Usable:
		return "usable"
	case Reserved:
		return "reserved"
	case AcpiReclaimable:
		return "acpi-reclaimable"
	case AcpiNvs:
		return "acpi-nvs"
	case BadMemory:
		return "bad-memory"
	case BootloaderReclaimable:
		return "bootloader-reclaimable"
	case ExecutableAndModules:
		return "executable-and-modules"
	case Framebuffer:
		return "framebuffer"
	default:
		return "unknown"
	}
}

// kindFromRaw maps a boot-protocol entry type to a MemoryRegionKind.
// Unrecognized values become Unknown.
func kindFromRaw(t RawMemoryRegionType) MemoryRegionKind {
	switch t {
	case RawUsable:
		return Usable
	case RawReserved:
		return Reserved
	case RawAcpiReclaimable:
		return AcpiReclaimable
	case RawAcpiNvs:
		return AcpiNvs
	case RawBadMemory:
		return BadMemory
	case RawBootloaderReclaimable:
		return BootloaderReclaimable
	case RawExecutableAndModules:
		return ExecutableAndModules
	case RawFramebuffer:
		return Framebuffer
	default:
		return Unknown
	}
}

// MemoryRegion is a single normalized, typed physical memory range.
type MemoryRegion struct {
	Base   uint64
	Length uint64
	Kind   MemoryRegionKind
}

// end returns Base+Length and true, or false as the second value if that
// addition overflowed.
func (r MemoryRegion) end() (uint64, bool) {
	end := r.Base + r.Length
	return end, end >= r.Base
}
