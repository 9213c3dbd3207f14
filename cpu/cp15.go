package cpu

// CP15 control register (SCTLR) bits
const (
	CtrlM   = 1 << 0  // translation unit enable
	CtrlA   = 1 << 1  // alignment fault checking
	CtrlC   = 1 << 2  // data cache
	CtrlW   = 1 << 3  // write buffer
	CtrlS   = 1 << 8  // system protection (ARMv6 legacy AP model)
	CtrlR   = 1 << 9  // ROM protection (ARMv6 legacy AP model)
	CtrlZ   = 1 << 11 // branch prediction
	CtrlI   = 1 << 12 // instruction cache
	CtrlV   = 1 << 13 // high vectors
	CtrlRR  = 1 << 14 // round robin replacement
	CtrlU   = 1 << 22 // unaligned data access
	CtrlXP  = 1 << 23 // extended page tables, ARMv6 descriptor format
	CtrlTRE = 1 << 28 // TEX remap
	CtrlAFE = 1 << 29 // access flag enable

	// ResetControl is the control register value after reset: translation
	// and caches off.
	ResetControl = 0x00c50078
)

// domain access control values
const (
	DACNoAccess = 0x0
	DACClient   = 0x1
	DACReserved = 0x2
	DACManager  = 0x3
)

// DACDomain places a 2 bit access value for the domain index in the
// domain access control register layout.
func DACDomain(index, val uint32) uint32 {
	return (val & 3) << (2 * index)
}

// first level section descriptor format (short descriptors)
const (
	SectBaseShift = 20
	SectSize      = 1 << SectBaseShift
	SectBaseMask  = 0xfff << SectBaseShift

	SectNS    = 1 << 19
	SectSuper = 1 << 18
	SectNG    = 1 << 17
	SectS     = 1 << 16
	SectAP2   = 1 << 15
	SectTEX2  = 1 << 14
	SectTEX1  = 1 << 13
	SectTEX0  = 1 << 12
	SectAP1   = 1 << 11
	SectAP0   = 1 << 10
	SectXN    = 1 << 4
	SectC     = 1 << 3
	SectB     = 1 << 2
	SectPXN   = 1 << 0

	SectTEXShift    = 12
	SectTEXMask     = 0x7 << SectTEXShift
	SectDomainShift = 5
	SectDomainMask  = 0xf << SectDomainShift

	SectTypeMask    = 0x3
	SectTypeFault   = 0x0
	SectTypeCoarse  = 0x1
	SectTypeSection = 0x2

	// DefaultClientDomain is the domain every mapping is tagged with.
	DefaultClientDomain = 15
)

// translation table geometry
const (
	TableEntryCount = 4096
	TableEntrySize  = 4
	TableSize       = TableEntryCount * TableEntrySize
	TableAlign      = 16 * 1024
)

// SectIndex returns the table index of the section containing mva.
func SectIndex(mva uint32) uint32 {
	return mva >> SectBaseShift
}

// SectAlignUp rounds end up to the next section boundary. The result is
// 64 bit wide so the end of the address space is representable.
func SectAlignUp(end uint64) uint64 {
	return (end + SectSize - 1) &^ (SectSize - 1)
}
