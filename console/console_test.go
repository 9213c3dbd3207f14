package console

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuffer(t *testing.T) {
	var b Buffer
	_ = b.WriteConsole("core 0 halted\n\nsecond line")
	_ = b.WriteConsole("")
	want := []string{"core 0 halted", "second line"}
	if diff := cmp.Diff(want, b.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestSimple(t *testing.T) {
	var out bytes.Buffer
	c := NewSimple(&out)
	_ = c.WriteConsole("booting\nrealview")
	_ = c.Close()
	if got := out.String(); got != "booting\nrealview\n" {
		t.Errorf("output = %q", got)
	}
}
