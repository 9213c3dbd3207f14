package mmu

import (
	"fmt"
	"strings"

	"armmm/cpu"
)

// Descriptor is a first level section descriptor, or the fragment of one
// a Translator returns (no section base, no domain).
type Descriptor uint32

// Type returns the two type bits: fault, coarse table or section.
func (d Descriptor) Type() uint32 {
	return uint32(d) & cpu.SectTypeMask
}

// Section reports a valid section descriptor
func (d Descriptor) Section() bool {
	return d.Type() == cpu.SectTypeSection && uint32(d)&cpu.SectSuper == 0
}

// Base returns the physical section base address
func (d Descriptor) Base() uint32 {
	return uint32(d) & cpu.SectBaseMask
}

// Domain returns the domain index
func (d Descriptor) Domain() uint32 {
	return (uint32(d) & cpu.SectDomainMask) >> cpu.SectDomainShift
}

// AP returns AP[2:0] packed as a three bit value, AP[2] being the high bit.
func (d Descriptor) AP() uint32 {
	var ap uint32
	if uint32(d)&cpu.SectAP2 != 0 {
		ap |= 4
	}
	if uint32(d)&cpu.SectAP1 != 0 {
		ap |= 2
	}
	if uint32(d)&cpu.SectAP0 != 0 {
		ap |= 1
	}
	return ap
}

// ReadOnly reports AP[2]: writes are denied at every privilege level.
func (d Descriptor) ReadOnly() bool {
	return uint32(d)&cpu.SectAP2 != 0
}

// TEX returns the type extension field
func (d Descriptor) TEX() uint32 {
	return (uint32(d) & cpu.SectTEXMask) >> cpu.SectTEXShift
}

// Cacheable reports the C bit
func (d Descriptor) Cacheable() bool {
	return uint32(d)&cpu.SectC != 0
}

// Bufferable reports the B bit
func (d Descriptor) Bufferable() bool {
	return uint32(d)&cpu.SectB != 0
}

// Shareable reports the S bit
func (d Descriptor) Shareable() bool {
	return uint32(d)&cpu.SectS != 0
}

// ExecuteNever reports the XN bit
func (d Descriptor) ExecuteNever() bool {
	return uint32(d)&cpu.SectXN != 0
}

func (d Descriptor) String() string {
	switch d.Type() {
	case cpu.SectTypeFault:
		return fmt.Sprintf("%08x fault", uint32(d))
	case cpu.SectTypeCoarse:
		return fmt.Sprintf("%08x coarse", uint32(d))
	}
	flags := []string{}
	if d.Cacheable() {
		flags = append(flags, "C")
	}
	if d.Bufferable() {
		flags = append(flags, "B")
	}
	if d.Shareable() {
		flags = append(flags, "S")
	}
	if d.ExecuteNever() {
		flags = append(flags, "XN")
	}
	return fmt.Sprintf("%08x section base %08x dom %2d ap %03b tex %d [%s]",
		uint32(d), d.Base(), d.Domain(), d.AP(), d.TEX(), strings.Join(flags, " "))
}

// section builds the full table entry for section index from a fragment.
// The unmapped fragment stays a fault entry.
func section(index, domain uint32, frag Descriptor) uint32 {
	if frag == 0 {
		return 0
	}
	return index<<cpu.SectBaseShift | domain<<cpu.SectDomainShift | uint32(frag)
}
