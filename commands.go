package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"armmm/attr"
	"armmm/board"
	"armmm/console"
	"armmm/cpu"
	"armmm/logger"
	"armmm/mmu"
	"armmm/system"
)

// machineFlags are shared by every command that boots a board
type machineFlags struct {
	board   string
	logFile string
	level   string
}

func (m *machineFlags) setFlags(f *flag.FlagSet, logFile string) {
	f.StringVar(&m.board, "board", "realview-pbx-a9", "board preset name or path to a .toml/.yaml board file.")
	f.StringVar(&m.logFile, "log", logFile, "append log entries to this file instead of stdout.")
	f.StringVar(&m.level, "level", "info", "log level: debug, info, warning or error.")
}

// boot builds and boots the machine, reporting on c
func (m *machineFlags) boot(ctx context.Context, c console.Console) (*system.Machine, *logrus.Logger, error) {
	log, err := logger.New(m.logFile, m.level)
	if err != nil {
		return nil, nil, err
	}
	b, err := board.Lookup(m.board)
	if err != nil {
		return nil, nil, err
	}
	machine, err := system.New(b, c, log)
	if err != nil {
		return nil, nil, err
	}
	if err := machine.Boot(ctx); err != nil {
		return nil, nil, err
	}
	return machine, log, nil
}

func fatalf(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

// hexFlag is a 32 bit address flag accepting 0x, 0o and 0b prefixes
type hexFlag uint32

func (h *hexFlag) String() string {
	return fmt.Sprintf("%#08x", uint32(*h))
}

func (h *hexFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*h = hexFlag(v)
	return nil
}

// bootCmd implements subcommands.Command for the "boot" command.
type bootCmd struct {
	machineFlags
}

// Name implements subcommands.Command.
func (*bootCmd) Name() string {
	return "boot"
}

// Synopsis implements subcommands.Command.
func (*bootCmd) Synopsis() string {
	return "install the translation table of a board and check every region"
}

// Usage implements subcommands.Command.
func (*bootCmd) Usage() string {
	return "boot [-board name|file] - boots the board and verifies the region descriptor table\n"
}

// SetFlags implements subcommands.Command.
func (c *bootCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "")
}

// Execute implements subcommands.Command.
func (c *bootCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	con := console.NewSimple(os.Stdout)
	defer con.Close()

	m, _, err := c.boot(ctx, con)
	if err != nil {
		return fatalf("boot: %v", err)
	}
	for _, r := range m.Board.Regions() {
		if !r.Empty() {
			_ = con.WriteConsole(r.String())
		}
	}
	mismatches, err := m.Verify()
	if err != nil {
		return fatalf("verify: %v", err)
	}
	for _, mm := range mismatches {
		_ = con.WriteConsole("MISMATCH " + mm.String())
	}
	if len(mismatches) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// protectCmd implements subcommands.Command for the "protect" command.
type protectCmd struct {
	machineFlags
	base  hexFlag
	size  uint64
	attr  attr.Attribute
	probe hexFlag
	core  int
}

// Name implements subcommands.Command.
func (*protectCmd) Name() string {
	return "protect"
}

// Synopsis implements subcommands.Command.
func (*protectCmd) Synopsis() string {
	return "change the attributes of an address range, then write to it"
}

// Usage implements subcommands.Command.
func (*protectCmd) Usage() string {
	return `protect -base addr -size bytes -attr attribute [-probe addr] [-core n]
	Boots the board, applies the attribute to the range and stores a word
	at the probe address (default: base) from the given core.
`
}

// SetFlags implements subcommands.Command.
func (c *protectCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "")
	f.Var(&c.base, "base", "start of the range.")
	f.Uint64Var(&c.size, "size", cpu.SectSize, "length of the range in bytes.")
	f.TextVar(&c.attr, "attr", attr.ReadOnly, "attribute: a preset (code-cached, data-rw-cached, device, ...) or bits joined by '|'.")
	f.Var(&c.probe, "probe", "address written after the change.")
	f.IntVar(&c.core, "core", 0, "core performing the write.")
}

// Execute implements subcommands.Command.
func (c *protectCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	con := console.NewSimple(os.Stdout)
	defer con.Close()

	m, _, err := c.boot(ctx, con)
	if err != nil {
		return fatalf("boot: %v", err)
	}
	if err := m.SetAttributes(uint32(c.base), c.size, c.attr); err != nil {
		return fatalf("protect: %v", err)
	}
	probe := uint32(c.probe)
	if probe == 0 {
		probe = uint32(c.base)
	}
	d, _ := m.Describe(probe)
	_ = con.WriteConsole(fmt.Sprintf("[%#08x, +%#x) %v: %v", uint32(c.base), c.size, c.attr, d))

	err = m.Exec(c.core, func(core *cpu.Core) { core.Store32(probe&^3, 0x5a5a5a5a) })
	var fault *mmu.TranslationFault
	switch {
	case errors.As(err, &fault):
		_ = con.WriteConsole(fmt.Sprintf("write at %#08x denied", probe))
	case err != nil:
		return fatalf("exec: %v", err)
	default:
		_ = con.WriteConsole(fmt.Sprintf("write at %#08x allowed", probe))
	}
	return subcommands.ExitSuccess
}

// dumpCmd implements subcommands.Command for the "dump" command.
type dumpCmd struct {
	machineFlags
	all bool
}

// Name implements subcommands.Command.
func (*dumpCmd) Name() string {
	return "dump"
}

// Synopsis implements subcommands.Command.
func (*dumpCmd) Synopsis() string {
	return "print the live translation table and the core registers"
}

// Usage implements subcommands.Command.
func (*dumpCmd) Usage() string {
	return "dump [-board name|file] [-all] - prints runs of sections sharing a policy\n"
}

// SetFlags implements subcommands.Command.
func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f, "")
	f.BoolVar(&c.all, "all", false, "include unmapped runs.")
}

// Execute implements subcommands.Command.
func (c *dumpCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	m, _, err := c.boot(ctx, nil)
	if err != nil {
		return fatalf("boot: %v", err)
	}
	if err := m.Dump(os.Stdout, c.all); err != nil {
		return fatalf("dump: %v", err)
	}
	m.DumpRegisters(os.Stdout)
	return subcommands.ExitSuccess
}
