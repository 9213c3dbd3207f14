// Package attr defines the CPU independent protection and caching request
// used by every caller of the memory-protection layer.
package attr

import (
	"errors"
	"fmt"
	"strings"
)

// Attribute is a set of independent policy bits. Read access is always
// implied, so the zero value is a read-only, uncached mapping.
type Attribute uint8

// policy bits
const (
	Write Attribute = 1 << iota
	Cache
	Device
	Shared
)

// Unmapped requests a faulting section: every access to it aborts. It is
// not combinable with the policy bits.
const Unmapped Attribute = 1 << 7

const bitMask = Write | Cache | Device | Shared

// presets
const (
	ReadOnly               Attribute = 0
	ReadWrite                        = Write
	CodeCached                       = Cache
	DataReadOnlyCached               = Cache
	DataReadWriteCached              = Write | Cache
	DataReadWriteShareable           = Write | Cache | Shared
	DeviceMemory                     = Write | Device
)

// ErrUnknown is returned by Parse for tokens that are neither a preset
// nor a policy bit.
var ErrUnknown = errors.New("unknown attribute")

var presets = map[string]Attribute{
	"read-only":         ReadOnly,
	"read-write":        ReadWrite,
	"code-cached":       CodeCached,
	"data-ro-cached":    DataReadOnlyCached,
	"data-rw-cached":    DataReadWriteCached,
	"data-rw-shareable": DataReadWriteShareable,
	"device":            DeviceMemory,
	"unmapped":          Unmapped,
}

var bitNames = []struct {
	bit  Attribute
	name string
}{
	{Write, "write"},
	{Cache, "cache"},
	{Device, "device"},
	{Shared, "shared"},
}

// Has reports whether every bit of b is set in a.
func (a Attribute) Has(b Attribute) bool {
	return a&b == b
}

// Valid reports whether a is one of the sixteen bit combinations or
// Unmapped.
func (a Attribute) Valid() bool {
	return a == Unmapped || a&^bitMask == 0
}

// String renders a as a "|" separated bit list, "read-only" for the zero
// value.
func (a Attribute) String() string {
	if a == Unmapped {
		return "unmapped"
	}
	if !a.Valid() {
		return fmt.Sprintf("attr(%#x)", uint8(a))
	}
	if a == ReadOnly {
		return "read-only"
	}
	var parts []string
	for _, b := range bitNames {
		if a.Has(b.bit) {
			parts = append(parts, b.name)
		}
	}
	return strings.Join(parts, "|")
}

// Parse accepts a preset name ("code-cached", "device", ...) or a list of
// policy bits separated by "|" or ",". "read" is accepted and ignored.
func Parse(s string) (Attribute, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if p, ok := presets[s]; ok {
		return p, nil
	}
	var a Attribute
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		tok = strings.TrimSpace(tok)
		if tok == "read" || tok == "" {
			continue
		}
		found := false
		for _, b := range bitNames {
			if b.name == tok {
				a |= b.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknown, tok)
		}
	}
	return a, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Attribute) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrUnknown, uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Attribute) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// All returns the sixteen policy bit combinations in ascending order.
func All() []Attribute {
	all := make([]Attribute, 0, 16)
	for a := Attribute(0); a <= bitMask; a++ {
		all = append(all, a)
	}
	return all
}
