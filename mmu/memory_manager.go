package mmu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"armmm/attr"
	"armmm/board"
	"armmm/cpu"
	"armmm/psw"
)

// MemoryManager owns the live translation table of one machine. Two
// implementations exist, selected by Variant: the ARM1176 legacy one with
// a uniform default table and the narrow translator, and the Cortex-A9
// modern one driven by the Region Descriptor Table.
type MemoryManager interface {

	// Initialize installs the table, programs the domain access control
	// and enables translation and caches with a single control write. It
	// may be called once.
	Initialize() error

	// InitializeSecondary points another core at the already populated
	// table and enables translation on it. The core then receives every
	// TLB invalidation SetAttributes issues.
	InitializeSecondary(hw Hardware) error

	// SetAttributes rewrites the sections covering [base, base+size) with
	// the encoding of a. The end is rounded up to a section boundary.
	SetAttributes(base uint32, size uint64, a attr.Attribute) error

	// Describe returns the live descriptor of the section containing addr
	Describe(addr uint32) (Descriptor, error)

	// Translator returns the active attribute translator
	Translator() Translator

	// Variant returns the table strategy
	Variant() Variant
}

// Hardware is what the manager needs from a core: the CP15 registers,
// TLB maintenance, the IRQ mask and word access to memory. Store32 with
// translation disabled reaches physical memory directly.
type Hardware interface {
	ID() int
	Control() uint32
	SetControl(v uint32)
	TranslationTableBase() uint32
	SetTranslationTableBase(v uint32)
	DomainAccessControl() uint32
	SetDomainAccessControl(v uint32)
	InvalidateTLB()
	InvalidateTLBEntry(mva uint32)
	DisableInterrupts() psw.PSR
	RestoreInterrupts(level psw.PSR)
	Load32(addr uint32) uint32
	Store32(addr, data uint32)
	DataFault() (status, address uint32)
	PrefetchFault() (status, address uint32)
	Memory() *cpu.Memory
}

// Variant selects the table strategy
type Variant int

const (
	// Legacy - ARM1176JZF-S, uniform default table, narrow translator
	Legacy Variant = iota
	// Modern - Cortex-A9, Region Descriptor Table, general translator
	Modern
)

func (v Variant) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case Modern:
		return "modern"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant accepts "legacy" or "modern" and the core names of both
func ParseVariant(s string) (Variant, error) {
	name, _ := board.VariantName(s)
	switch name {
	case "legacy":
		return Legacy, nil
	case "modern":
		return Modern, nil
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// Options configure a MemoryManager
type Options struct {
	// TableBase is the physical address of the 16 KiB table
	TableBase uint32
	// Regions drive the modern variant. The legacy variant ignores them.
	Regions board.Table
	// Domain every entry is tagged with; zero selects domain 15.
	Domain uint32
	Log    logrus.FieldLogger
}

// New returns the manager for variant v driving core hw
func New(v Variant, hw Hardware, opts Options) (MemoryManager, error) {
	if opts.TableBase%cpu.TableAlign != 0 {
		return nil, fmt.Errorf("%w: %#08x", ErrMisalignedTable, opts.TableBase)
	}
	if opts.Domain == 0 {
		opts.Domain = cpu.DefaultClientDomain
	}
	if opts.Domain > 15 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDomain, opts.Domain)
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	log := opts.Log.WithFields(logrus.Fields{"variant": v.String(), "core": hw.ID()})

	switch v {
	case Legacy:
		if n := opts.Regions.Mapped(); n > 0 {
			log.Warnf("%d regions ignored, the legacy table is uniform", n)
		}
		return &legacy{table: newTable(hw, opts, Narrow(), legacyEnable, log)}, nil
	case Modern:
		return &modern{table: newTable(hw, opts, General(), modernEnable, log), regions: opts.Regions}, nil
	}
	return nil, fmt.Errorf("unknown variant %d", int(v))
}
