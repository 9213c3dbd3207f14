package console

import (
	"fmt"

	"github.com/jroimartin/gocui"
)

// Gui console appends to a gocui view. Views may only be touched from
// the gocui main loop, so every line goes through Gui.Update.
type Gui struct {
	consoleOut chan string // string channel, to which the console data is sent to
	g          *gocui.Gui  // main gocui GUI object
	view       string      // name of the view receiving the lines
}

// NewGui returns a console writing to the named view of g
func NewGui(g *gocui.Gui, view string) *Gui {
	c := &Gui{
		consoleOut: make(chan string, 64),
		g:          g,
		view:       view,
	}
	go c.run()
	return c
}

func (c *Gui) run() {
	for s := range c.consoleOut {
		s := s
		c.g.Update(func(g *gocui.Gui) error {
			v, err := g.View(c.view)
			if err != nil {
				return err
			}
			fmt.Fprint(v, s)
			return nil
		})
	}
}

// WriteConsole displays a string on the console
func (c *Gui) WriteConsole(msg string) error {
	for _, line := range lines(msg) {
		c.consoleOut <- line
	}
	return nil
}
