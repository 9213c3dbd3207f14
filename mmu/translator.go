package mmu

import (
	"fmt"

	"armmm/attr"
	"armmm/cpu"
)

// Translator maps a portable attribute to the variant specific descriptor
// fragment: type, access permission, TEX/C/B and S bits. The fragment
// never carries a section base or a domain. Encode is deterministic and
// has no side effects.
type Translator interface {
	Name() string
	Encode(a attr.Attribute) (Descriptor, error)
}

// fragments shared by both translators
const (
	fragReadWrite       = cpu.SectTypeSection | cpu.SectAP0
	fragReadOnly        = fragReadWrite | cpu.SectAP2
	fragCachedBits      = cpu.SectTEX0 | cpu.SectC | cpu.SectB
	fragReadWriteCached = fragReadWrite | fragCachedBits
	fragReadOnlyCached  = fragReadOnly | fragCachedBits
	fragUnmapped        = 0
	fragUniform         = cpu.SectTypeSection | cpu.SectAP1 | cpu.SectAP0
)

// general decodes every policy bit independently.
type general struct{}

// General returns the translator of the modern variant
func General() Translator { return general{} }

func (general) Name() string { return "general" }

func (general) Encode(a attr.Attribute) (Descriptor, error) {
	if a == attr.Unmapped {
		return fragUnmapped, nil
	}
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedAttribute, "general", a)
	}
	d := uint32(fragReadWrite)
	if !a.Has(attr.Write) {
		d |= cpu.SectAP2
	}
	if a.Has(attr.Cache) {
		d |= fragCachedBits
	}
	// device windows are buffered, never cached
	if a.Has(attr.Device) {
		d &^= cpu.SectTEXMask | cpu.SectC
		d |= cpu.SectB
	}
	if a.Has(attr.Shared) {
		d |= cpu.SectS
	}
	return Descriptor(d), nil
}

// narrow is the closed lookup of the legacy variant. It knows three
// requests and rejects the rest.
type narrow struct{}

var narrowTable = map[attr.Attribute]Descriptor{
	attr.DataReadWriteCached: fragReadWriteCached,
	attr.CodeCached:          fragReadOnlyCached,
	attr.Unmapped:            fragUnmapped,
}

// Narrow returns the translator of the legacy variant
func Narrow() Translator { return narrow{} }

func (narrow) Name() string { return "narrow" }

func (narrow) Encode(a attr.Attribute) (Descriptor, error) {
	d, ok := narrowTable[a]
	if !ok {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedAttribute, "narrow", a)
	}
	return d, nil
}
