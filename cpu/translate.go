package cpu

import (
	"fmt"

	"armmm/interrupts"
)

// Access kinds
type Access int

const (
	// Read - data read
	Read Access = iota
	// Write - data write
	Write
	// Fetch - instruction fetch
	Fetch
)

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Fetch:
		return "fetch"
	}
	return fmt.Sprintf("access(%d)", int(a))
}

// MemoryType is the memory type selected by the TEX/C/B bits
type MemoryType int

const (
	StronglyOrdered MemoryType = iota
	DeviceMemory
	NormalNonCacheable
	NormalCacheable
)

func (t MemoryType) String() string {
	switch t {
	case StronglyOrdered:
		return "strongly-ordered"
	case DeviceMemory:
		return "device"
	case NormalNonCacheable:
		return "normal-nc"
	case NormalCacheable:
		return "normal-cached"
	}
	return "?"
}

// Policy is the effective policy an access observes
type Policy struct {
	Descriptor uint32
	Domain     uint32
	Type       MemoryType
	Writable   bool
	Executable bool
	Shareable  bool
}

// Fault describes an aborted translation
type Fault struct {
	Status  uint32
	Domain  uint32
	Address uint32
	Access  Access
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s on %s at %#08x (domain %d)",
		FaultDescription(f.Status), f.Access, f.Address, f.Domain)
}

// memoryType decodes TEX[0], C and B
func memoryType(desc uint32) MemoryType {
	tex := (desc & SectTEXMask) >> SectTEXShift
	cb := desc & (SectC | SectB)
	switch {
	case tex == 0 && cb == 0:
		return StronglyOrdered
	case tex == 0 && cb == SectB:
		return DeviceMemory
	case tex&1 == 1 && cb == 0:
		return NormalNonCacheable
	case cb&SectC != 0:
		return NormalCacheable
	}
	return StronglyOrdered
}

// flat is the policy with the translation unit disabled
var flat = Policy{Type: StronglyOrdered, Writable: true, Executable: true}

// translate walks the first level table for addr and checks domain and
// permissions. A valid section descriptor is cached in the TLB before
// any permission check.
func (c *Core) translate(addr uint32, acc Access) (Policy, *Fault) {
	if acc != Fetch && c.control&CtrlA != 0 && addr&3 != 0 {
		return Policy{}, &Fault{Status: FaultAlignment, Address: addr, Access: acc}
	}
	if c.control&CtrlM == 0 {
		return flat, nil
	}

	index := SectIndex(addr)
	desc, gen, hit := c.tlb.lookup(index)
	if !hit {
		desc = c.mem.Read32(c.ttbr0&^(TableAlign-1) + index*TableEntrySize)
	}
	domain := (desc & SectDomainMask) >> SectDomainShift

	// second level tables and supersections are not used
	if desc&SectTypeMask != SectTypeSection || desc&SectSuper != 0 {
		return Policy{}, &Fault{Status: FaultTranslationSection, Domain: domain, Address: addr, Access: acc}
	}
	if !hit {
		c.tlb.fill(index, desc, gen)
	}

	p := Policy{
		Descriptor: desc,
		Domain:     domain,
		Type:       memoryType(desc),
		Shareable:  desc&SectS != 0,
		Executable: desc&SectXN == 0,
	}

	switch (c.dacr >> (2 * domain)) & 3 {
	case DACManager:
		p.Writable = true
		return p, nil
	case DACClient:
	default:
		return Policy{}, &Fault{Status: FaultDomainSection, Domain: domain, Address: addr, Access: acc}
	}

	readable, writable, status := c.permissions(desc)
	if status != 0 {
		return Policy{}, &Fault{Status: status, Domain: domain, Address: addr, Access: acc}
	}
	p.Writable = writable
	if !readable || (acc == Write && !writable) || (acc == Fetch && !p.Executable) {
		return Policy{}, &Fault{Status: FaultPermissionSection, Domain: domain, Address: addr, Access: acc}
	}
	return p, nil
}

// permissions decodes AP[2:0] for the current mode. With AFE set AP[0] is
// the access flag and only AP[2:1] select permissions.
func (c *Core) permissions(desc uint32) (readable, writable bool, status uint32) {
	apx := desc&SectAP2 != 0
	ap1 := desc&SectAP1 != 0
	ap0 := desc&SectAP0 != 0
	user := c.CPSR.IsUserMode()

	if c.control&CtrlAFE != 0 {
		if !ap0 {
			return false, false, FaultAccessFlagSection
		}
		if user && !ap1 {
			return false, false, 0
		}
		return true, !apx, 0
	}

	ap := uint32(0)
	if ap1 {
		ap |= 2
	}
	if ap0 {
		ap |= 1
	}
	switch {
	case !apx && ap == 0:
		return false, false, 0
	case !apx && ap == 1:
		return !user, !user, 0
	case !apx && ap == 2:
		return true, !user, 0
	case !apx && ap == 3:
		return true, true, 0
	case apx && ap == 1:
		return !user, false, 0
	case apx && (ap == 2 || ap == 3):
		return true, false, 0
	}
	return false, false, 0
}

// abort records the fault in the status registers and takes the abort
// exception.
func (c *Core) abort(f *Fault) {
	if f.Access == Fetch {
		c.ifsr = MakeFSR(f.Status, f.Domain, false)
		c.ifar = f.Address
		panic(interrupts.Trap{Vector: interrupts.PrefetchAbort, Msg: f.Error()})
	}
	c.dfsr = MakeFSR(f.Status, f.Domain, f.Access == Write)
	c.dfar = f.Address
	panic(interrupts.Trap{Vector: interrupts.DataAbort, Msg: f.Error()})
}

// Load32 reads a word through the translation unit
func (c *Core) Load32(addr uint32) uint32 {
	if _, f := c.translate(addr, Read); f != nil {
		c.abort(f)
	}
	return c.mem.Read32(addr)
}

// Store32 writes a word through the translation unit
func (c *Core) Store32(addr, data uint32) {
	if _, f := c.translate(addr, Write); f != nil {
		c.abort(f)
	}
	c.mem.Write32(addr, data)
}

// Fetch32 fetches an instruction word
func (c *Core) Fetch32(addr uint32) uint32 {
	if _, f := c.translate(addr&^3, Fetch); f != nil {
		c.abort(f)
	}
	return c.mem.Read32(addr &^ 3)
}

// Probe performs an address translation operation: it returns the policy
// an access of kind acc at addr would observe, or the fault it would
// raise. Fault registers are not touched and no exception is taken.
func (c *Core) Probe(addr uint32, acc Access) (Policy, error) {
	p, f := c.translate(addr, acc)
	if f != nil {
		return Policy{}, f
	}
	return p, nil
}
