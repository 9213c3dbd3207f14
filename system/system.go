// Package system assembles a machine from a board description: cores on
// shared physical memory, the memory-protection layer and one fault
// handler per core.
package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"armmm/attr"
	"armmm/board"
	"armmm/console"
	"armmm/cpu"
	"armmm/interrupts"
	"armmm/mmu"
)

// machine errors
var (
	ErrNotBooted = errors.New("machine not booted")
	ErrHalted    = errors.New("core halted")
	ErrNoCore    = errors.New("no such core")
)

// Machine is the emulated board
type Machine struct {
	Board *board.Board
	Cores []*cpu.Core

	mem     *cpu.Memory
	mmu     mmu.MemoryManager
	faults  []*mmu.FaultHandler
	console console.Console
	log     logrus.FieldLogger

	// one lock per core: Exec and table updates on the owning core
	// must not interleave
	locks []sync.Mutex

	mu     sync.Mutex
	booted bool
	fatal  []*mmu.TranslationFault
}

// New builds the machine described by b. Nothing runs until Boot.
func New(b *board.Board, c console.Console, log logrus.FieldLogger) (*Machine, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	variant, err := mmu.ParseVariant(b.Variant)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("board", b.Name)

	m := &Machine{
		Board:   b,
		mem:     cpu.NewMemory(),
		console: c,
		log:     log,
		locks:   make([]sync.Mutex, b.Cores),
	}
	for i := 0; i < b.Cores; i++ {
		core := cpu.New(i, m.mem)
		m.Cores = append(m.Cores, core)
		m.faults = append(m.faults, mmu.NewFaultHandler(core, &haltSink{m: m, core: core}, log))
	}

	opts := mmu.Options{TableBase: b.TableBase, Log: log}
	// the legacy table is uniform
	if variant == mmu.Modern {
		opts.Regions = b.Regions()
	}
	m.mmu, err = mmu.New(variant, m.Cores[0], opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Boot installs the translation table from core 0, then brings the
// secondary cores up concurrently.
func (m *Machine) Boot(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locks[0].Lock()
	err := m.mmu.Initialize()
	m.locks[0].Unlock()
	if err != nil {
		return fmt.Errorf("core 0: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range m.Cores[1:] {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.locks[c.ID()].Lock()
			defer m.locks[c.ID()].Unlock()
			if err := m.mmu.InitializeSecondary(c); err != nil {
				return fmt.Errorf("core %d: %w", c.ID(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.booted = true
	m.write("%s booted: %s variant, %d core(s), table at %#08x",
		m.Board.Name, m.mmu.Variant(), len(m.Cores), m.Board.TableBase)
	return nil
}

func (m *Machine) isBooted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.booted
}

// Exec runs fn on core. An abort raised by fn is handed to the core's
// fault handler and returned as *mmu.TranslationFault; the core is then
// halted and refuses further work. fn must not call back into the
// machine.
func (m *Machine) Exec(core int, fn func(c *cpu.Core)) (err error) {
	if core < 0 || core >= len(m.Cores) {
		return fmt.Errorf("%w: %d", ErrNoCore, core)
	}
	if !m.isBooted() {
		return ErrNotBooted
	}
	m.locks[core].Lock()
	defer m.locks[core].Unlock()

	c := m.Cores[core]
	if c.State == cpu.HALT {
		return fmt.Errorf("%w: %d", ErrHalted, core)
	}

	defer func() {
		t := recover()
		switch t := t.(type) {
		case interrupts.Trap:
			if !t.IsAbort() {
				err = t
				return
			}
			m.log.WithField("core", core).Debugf("trap %s: %s", interrupts.VectorName(t.Vector), t.Msg)
			err = m.faults[core].Handle(t.Vector)
		case nil:
		default:
			panic(t)
		}
	}()

	fn(c)
	return nil
}

// SetAttributes changes the policy of [base, base+size) for every core
func (m *Machine) SetAttributes(base uint32, size uint64, a attr.Attribute) error {
	m.locks[0].Lock()
	defer m.locks[0].Unlock()
	return m.mmu.SetAttributes(base, size, a)
}

// Describe returns the live descriptor covering addr
func (m *Machine) Describe(addr uint32) (mmu.Descriptor, error) {
	return m.mmu.Describe(addr)
}

// Manager returns the memory-protection layer of the machine
func (m *Machine) Manager() mmu.MemoryManager {
	return m.mmu
}

// Memory returns the shared physical memory
func (m *Machine) Memory() *cpu.Memory {
	return m.mem
}

// DumpRegisters writes the register file of every core, each read under
// its core lock.
func (m *Machine) DumpRegisters(w io.Writer) {
	for i, c := range m.Cores {
		m.locks[i].Lock()
		c.DumpRegisters(w)
		m.locks[i].Unlock()
	}
}

// Faults returns the fatal faults reported so far
func (m *Machine) Faults() []*mmu.TranslationFault {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mmu.TranslationFault(nil), m.fatal...)
}

func (m *Machine) write(format string, args ...interface{}) {
	if m.console == nil {
		return
	}
	_ = m.console.WriteConsole(fmt.Sprintf(format, args...))
}

// haltSink is the kernel's fatal path: record, halt the faulting core,
// report on the console.
type haltSink struct {
	m    *Machine
	core *cpu.Core
}

func (s *haltSink) Fatal(f *mmu.TranslationFault) {
	s.m.mu.Lock()
	s.m.fatal = append(s.m.fatal, f)
	s.m.mu.Unlock()

	s.core.State = cpu.HALT
	s.m.write("FATAL %v", f)
	s.m.write("core %d halted", s.core.ID())
}
