package mmu

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"armmm/attr"
	"armmm/cpu"
	"armmm/psw"
)

// table is the state both variants share: the live translation table,
// the core that owns it and the cores that walk it.
type table struct {
	// mu serializes table mutation across cores. Masking IRQs only
	// serializes the calling core.
	mu sync.Mutex

	hw     Hardware
	peers  []Hardware
	base   uint32
	domain uint32
	tr     Translator
	log    logrus.FieldLogger

	// control bits set by the enabling control write
	enable      uint32
	initialized bool
}

func newTable(hw Hardware, opts Options, tr Translator, enable uint32, log logrus.FieldLogger) table {
	return table{
		hw:     hw,
		base:   opts.TableBase,
		domain: opts.Domain,
		tr:     tr,
		enable: enable,
		log:    log,
	}
}

// entry returns the physical address of the entry for section index
func (t *table) entry(index uint32) uint32 {
	return t.base + index*cpu.TableEntrySize
}

func (t *table) write(index uint32, frag Descriptor) {
	t.hw.Store32(t.entry(index), section(index, t.domain, frag))
}

func (t *table) Translator() Translator {
	return t.tr
}

// install runs the boot sequence. plan validates the configuration and
// returns the populate step; nothing is touched when it fails.
func (t *table) install(plan func() (func(), error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return ErrAlreadyInitialized
	}
	populate, err := plan()
	if err != nil {
		return err
	}

	ctrl := t.hw.Control()
	t.hw.SetControl(ctrl &^ (cpu.CtrlM | cpu.CtrlC | cpu.CtrlI))
	t.hw.InvalidateTLB()
	t.hw.SetDomainAccessControl(cpu.DACDomain(t.domain, cpu.DACClient))
	t.hw.SetTranslationTableBase(t.base)

	populate()

	t.hw.InvalidateTLB()
	t.hw.SetControl(ctrl | t.enable)
	t.initialized = true

	t.log.WithFields(logrus.Fields{
		"table_base": fmt.Sprintf("%#08x", t.base),
		"domain":     t.domain,
		"control":    fmt.Sprintf("%#08x", t.hw.Control()),
		"translator": t.tr.Name(),
	}).Info("translation table installed")
	return nil
}

func (t *table) InitializeSecondary(hw Hardware) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrNotInitialized
	}
	if hw.ID() == t.hw.ID() {
		return fmt.Errorf("%w: core %d owns the table", ErrAlreadyInitialized, hw.ID())
	}
	for _, p := range t.peers {
		if p.ID() == hw.ID() {
			return fmt.Errorf("%w: core %d", ErrAlreadyInitialized, hw.ID())
		}
	}

	ctrl := hw.Control()
	hw.SetControl(ctrl &^ (cpu.CtrlM | cpu.CtrlC | cpu.CtrlI))
	hw.InvalidateTLB()
	hw.SetDomainAccessControl(cpu.DACDomain(t.domain, cpu.DACClient))
	hw.SetTranslationTableBase(t.base)
	hw.InvalidateTLB()
	hw.SetControl(ctrl | t.enable)
	t.peers = append(t.peers, hw)

	t.log.WithField("secondary", hw.ID()).Info("secondary core joined the translation table")
	return nil
}

// updateWindow is the state table entries are rewritten in: IRQs masked,
// translation and both caches off. close restores the control register,
// runs flush and unmasks IRQs, in that order.
type updateWindow struct {
	hw      Hardware
	level   psw.PSR
	control uint32
	flush   func()
}

func openWindow(hw Hardware) *updateWindow {
	w := &updateWindow{hw: hw, level: hw.DisableInterrupts()}
	w.control = hw.Control()
	hw.SetControl(w.control &^ (cpu.CtrlM | cpu.CtrlC | cpu.CtrlI))
	return w
}

func (w *updateWindow) close() {
	w.hw.SetControl(w.control)
	if w.flush != nil {
		w.flush()
	}
	w.hw.RestoreInterrupts(w.level)
}

// invalidate drops cached translations of sections [start, end) on every
// core walking the table. Past the TLB size the whole TLB goes.
func (t *table) invalidate(start, end uint32) {
	cores := append([]Hardware{t.hw}, t.peers...)
	for _, hw := range cores {
		if end-start > cpu.TLBEntries {
			hw.InvalidateTLB()
			continue
		}
		for i := start; i < end; i++ {
			hw.InvalidateTLBEntry(i << cpu.SectBaseShift)
		}
	}
}

func (t *table) SetAttributes(base uint32, size uint64, a attr.Attribute) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrNotInitialized
	}
	if size == 0 {
		return nil
	}
	end := uint64(base) + size
	if end > 1<<32 {
		return fmt.Errorf("%w: [%#08x, %#x)", ErrInvalidRange, base, end)
	}
	frag, err := t.tr.Encode(a)
	if err != nil {
		return err
	}

	start := cpu.SectIndex(base)
	stop := uint32(cpu.SectAlignUp(end) >> cpu.SectBaseShift)

	w := openWindow(t.hw)
	w.flush = func() { t.invalidate(start, stop) }
	defer w.close()

	for i := start; i < stop; i++ {
		t.write(i, frag)
	}

	t.log.WithFields(logrus.Fields{
		"start_index": start,
		"end_index":   stop,
		"sections":    stop - start,
		"attr":        a.String(),
		"descriptor":  fmt.Sprintf("%#08x", uint32(frag)),
	}).Debug("section attributes set")
	return nil
}

func (t *table) Describe(addr uint32) (Descriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return 0, ErrNotInitialized
	}
	return Descriptor(t.hw.Memory().Read32(t.entry(cpu.SectIndex(addr)))), nil
}
