package cpu

import (
	"fmt"
	"io"

	"armmm/psw"
)

// CPU state: Run / Halt
const (
	HALT   = 0
	CPURUN = 1
)

// resetPSR: supervisor mode, IRQ and FIQ masked
const resetPSR = psw.SupervisorMode | 1<<6 | 1<<7

// Core is one emulated ARM core: program status register, the CP15
// registers driving the translation unit, and a private TLB. Physical
// memory is shared between cores.
type Core struct {
	id    int
	State int
	CPSR  psw.PSR

	mem *Memory
	tlb TLB

	// CP15
	control uint32
	ttbr0   uint32
	dacr    uint32
	dfsr    uint32
	dfar    uint32
	ifsr    uint32
	ifar    uint32

	// number of interrupt mask windows opened with DisableInterrupts
	maskWindows int
}

// New returns a core in reset state attached to physical memory
func New(id int, mem *Memory) *Core {
	c := &Core{id: id, mem: mem}
	c.Reset()
	return c
}

// Reset puts the core registers back to their reset values. Memory is
// left untouched.
func (c *Core) Reset() {
	c.State = CPURUN
	c.CPSR = resetPSR
	c.control = ResetControl
	c.ttbr0 = 0
	c.dacr = 0
	c.dfsr, c.dfar, c.ifsr, c.ifar = 0, 0, 0, 0
	c.maskWindows = 0
	c.tlb.Invalidate()
}

// ID returns the core number
func (c *Core) ID() int {
	return c.id
}

// Memory returns the physical memory the core is attached to
func (c *Core) Memory() *Memory {
	return c.mem
}

// TLB returns the core's translation cache
func (c *Core) TLB() *TLB {
	return &c.tlb
}

// Control returns the CP15 control register
func (c *Core) Control() uint32 {
	return c.control
}

// SetControl writes the CP15 control register
func (c *Core) SetControl(v uint32) {
	c.control = v
}

// TranslationTableBase returns TTBR0
func (c *Core) TranslationTableBase() uint32 {
	return c.ttbr0
}

// SetTranslationTableBase writes TTBR0. The low bits carry walk attributes
// and are ignored when locating the table.
func (c *Core) SetTranslationTableBase(v uint32) {
	c.ttbr0 = v
}

// DomainAccessControl returns DACR
func (c *Core) DomainAccessControl() uint32 {
	return c.dacr
}

// SetDomainAccessControl writes DACR
func (c *Core) SetDomainAccessControl(v uint32) {
	c.dacr = v
}

// InvalidateTLB drops every cached translation of this core
func (c *Core) InvalidateTLB() {
	c.tlb.Invalidate()
}

// InvalidateTLBEntry drops the cached translation for mva
func (c *Core) InvalidateTLBEntry(mva uint32) {
	c.tlb.InvalidateEntry(mva)
}

// DataFault returns DFSR and DFAR
func (c *Core) DataFault() (status, address uint32) {
	return c.dfsr, c.dfar
}

// PrefetchFault returns IFSR and IFAR
func (c *Core) PrefetchFault() (status, address uint32) {
	return c.ifsr, c.ifar
}

// DisableInterrupts masks IRQs and returns the previous status register
// so the caller can restore it.
func (c *Core) DisableInterrupts() psw.PSR {
	level := c.CPSR
	c.CPSR.SetIRQDisabled(true)
	c.maskWindows++
	return level
}

// RestoreInterrupts restores the IRQ mask saved by DisableInterrupts
func (c *Core) RestoreInterrupts(level psw.PSR) {
	c.CPSR.SetIRQDisabled(level.IRQDisabled())
}

// MaskWindows returns how many times interrupts were masked
func (c *Core) MaskWindows() int {
	return c.maskWindows
}

// MMUEnabled reports the M bit of the control register
func (c *Core) MMUEnabled() bool {
	return c.control&CtrlM != 0
}

// DumpRegisters writes the register file
func (c *Core) DumpRegisters(w io.Writer) {
	hits, misses, valid := c.tlb.Stats()
	fmt.Fprintf(w, " |core %d| |CPSR %08x %s| |SCTLR %08x| |TTBR0 %08x| |DACR %08x|\n",
		c.id, c.CPSR.Get(), c.CPSR.GetFlags(), c.control, c.ttbr0, c.dacr)
	fmt.Fprintf(w, " |DFSR %08x| |DFAR %08x| |IFSR %08x| |IFAR %08x| |TLB %d/%d hit %d miss %d|\n",
		c.dfsr, c.dfar, c.ifsr, c.ifar, valid, TLBEntries, hits, misses)
}
