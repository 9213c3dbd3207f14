package console

import (
	"io"
	"os"
)

// Simple console writes to a plain stream, stdout by default
type Simple struct {
	consoleOut chan string // string channel, to which the console data is sent to
	done       chan struct{}
	w          io.Writer
}

// NewSimple returns a console writing to w, or stdout when w is nil, and
// starts its writer goroutine.
func NewSimple(w io.Writer) *Simple {
	if w == nil {
		w = os.Stdout
	}
	c := &Simple{
		consoleOut: make(chan string),
		done:       make(chan struct{}),
		w:          w,
	}
	go c.run()
	return c
}

func (c *Simple) run() {
	for s := range c.consoleOut {
		_, _ = io.WriteString(c.w, s)
	}
	close(c.done)
}

// WriteConsole displays a string on the console
func (c *Simple) WriteConsole(msg string) error {
	for _, line := range lines(msg) {
		c.consoleOut <- line
	}
	return nil
}

// Close stops the writer goroutine once every queued line is written
func (c *Simple) Close() error {
	close(c.consoleOut)
	<-c.done
	return nil
}
