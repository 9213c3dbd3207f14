// Package console carries machine status lines to the operator: fault
// reports, boot progress, halts. Writers run in their own goroutine and
// are fed through a string channel.
package console

import (
	"strings"
	"sync"
)

// Console receives status messages. Multi-line messages are split and
// empty lines dropped.
type Console interface {
	WriteConsole(msg string) error
}

// lines splits msg into non-empty lines terminated by a newline
func lines(msg string) []string {
	var out []string
	for _, line := range strings.Split(msg, "\n") {
		if line != "" {
			out = append(out, line+"\n")
		}
	}
	return out
}

// Buffer keeps every line in memory. It writes synchronously, so a
// caller can inspect Lines right after WriteConsole returns.
type Buffer struct {
	mu    sync.Mutex
	lines []string
}

// WriteConsole appends msg to the buffer
func (b *Buffer) WriteConsole(msg string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range lines(msg) {
		b.lines = append(b.lines, strings.TrimSuffix(l, "\n"))
	}
	return nil
}

// Lines returns a copy of the lines written so far
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}
