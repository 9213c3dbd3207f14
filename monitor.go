package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/subcommands"
	"github.com/jroimartin/gocui"

	"armmm/attr"
	"armmm/console"
	"armmm/cpu"
	"armmm/system"
)

// monitorCmd implements subcommands.Command for the "monitor" command.
type monitorCmd struct {
	machineFlags
}

// Name implements subcommands.Command.
func (*monitorCmd) Name() string {
	return "monitor"
}

// Synopsis implements subcommands.Command.
func (*monitorCmd) Synopsis() string {
	return "interactive view of the translation table, registers and faults"
}

// Usage implements subcommands.Command.
func (*monitorCmd) Usage() string {
	return `monitor [-board name|file]
	r  toggle the data section between read-only and read-write
	w  store a word into the data section from the next running core
	^C quit
`
}

// SetFlags implements subcommands.Command.
func (c *monitorCmd) SetFlags(f *flag.FlagSet) {
	// the terminal belongs to the gui
	c.setFlags(f, "armmm.log")
}

// monitor is the state behind the key bindings
type monitor struct {
	m        *system.Machine
	con      console.Console
	readOnly bool
	next     int
}

// Execute implements subcommands.Command.
func (c *monitorCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fatalf("couldn't create gui: %v", err)
	}

	g.SetManagerFunc(layout)
	// views exist after the first layout pass
	if err := layout(g); err != nil {
		g.Close()
		return fatalf("layout: %v", err)
	}

	con := console.NewGui(g, "status")
	m, _, err := c.boot(ctx, con)
	if err != nil {
		g.Close()
		return fatalf("boot: %v", err)
	}
	defer g.Close()
	mon := &monitor{m: m, con: con}

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		log.Panicln(err)
	}
	if err := g.SetKeybinding("", 'r', gocui.ModNone, mon.toggle); err != nil {
		log.Panicln(err)
	}
	if err := g.SetKeybinding("", 'w', gocui.ModNone, mon.write); err != nil {
		log.Panicln(err)
	}

	updateViews(mon, g)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	return subcommands.ExitSuccess
}

func (mon *monitor) data() (uint32, uint64) {
	s := mon.m.Board.Sections.Data
	return s.Begin, uint64(s.End - s.Begin)
}

func (mon *monitor) toggle(g *gocui.Gui, v *gocui.View) error {
	base, size := mon.data()
	a := mon.m.Board.DataPolicy()
	if !mon.readOnly {
		a &^= attr.Write
	}
	if err := mon.m.SetAttributes(base, size, a); err != nil {
		return mon.con.WriteConsole(fmt.Sprintf("set attributes: %v", err))
	}
	mon.readOnly = !mon.readOnly
	return mon.con.WriteConsole(fmt.Sprintf("data [%#08x, +%#x) now %v", base, size, a))
}

func (mon *monitor) write(g *gocui.Gui, v *gocui.View) error {
	base, _ := mon.data()
	for range mon.m.Cores {
		core := mon.next
		mon.next = (mon.next + 1) % len(mon.m.Cores)
		err := mon.m.Exec(core, func(c *cpu.Core) { c.Store32(base, uint32(time.Now().Unix())) })
		if errors.Is(err, system.ErrHalted) {
			continue
		}
		if err != nil {
			return mon.con.WriteConsole(fmt.Sprintf("core %d: %v", core, err))
		}
		return mon.con.WriteConsole(fmt.Sprintf("core %d stored at %#08x", core, base))
	}
	return mon.con.WriteConsole("every core is halted")
}

// update table and register views
// has to be run in go routine -> gocui allows updating the view only through Update function
func updateViews(mon *monitor, g *gocui.Gui) {
	ticker := time.NewTicker(time.Second * 1)

	go func() {
		for range ticker.C {
			var table, regs bytes.Buffer
			_ = mon.m.Dump(&table, false)
			mon.m.DumpRegisters(&regs)
			g.Update(func(g *gocui.Gui) error {
				v, err := g.View("table")
				if err != nil {
					return err
				}
				v.Clear()
				_, _ = table.WriteTo(v)

				v, err = g.View("registers")
				if err != nil {
					return err
				}
				v.Clear()
				_, _ = regs.WriteTo(v)
				return nil
			})
		}
	}()
}

// gocui layout
func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// up -> translation table
	if v, err := g.SetView("table", 0, 0, maxX-1, maxY-22); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Translation table"
	}

	// middle -> register values
	if v, err := g.SetView("registers", 0, maxY-21, maxX-1, maxY-12); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
	}
	// down -> status
	if v, err := g.SetView("status", 0, maxY-11, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		v.Autoscroll = true
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
