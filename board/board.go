// Package board holds the static memory map a board supplies to the
// memory-protection layer: linker section markers, device windows and the
// Region Descriptor Table derived from them.
package board

import (
	"errors"
	"fmt"
	"strings"

	"armmm/attr"
)

// ErrInvalidBoard is wrapped by every validation error of this package.
var ErrInvalidBoard = errors.New("invalid board")

// Span is a [Begin, End) address range supplied by the linker.
type Span struct {
	Begin uint32 `toml:"begin" yaml:"begin"`
	End   uint32 `toml:"end" yaml:"end"`
}

// Empty reports a zero length span
func (s Span) Empty() bool {
	return s.Begin == s.End
}

// Region is one entry of the Region Descriptor Table. End is exclusive.
// Raw, when set, is a pre-encoded descriptor fragment used instead of
// translating Attr.
type Region struct {
	Name  string         `toml:"name" yaml:"name"`
	Begin uint32         `toml:"begin" yaml:"begin"`
	End   uint32         `toml:"end" yaml:"end"`
	Attr  attr.Attribute `toml:"attr" yaml:"attr"`
	Raw   *uint32        `toml:"raw,omitempty" yaml:"raw,omitempty"`
}

// Empty reports a region covering no address
func (r Region) Empty() bool {
	return r.Begin == r.End
}

func (r Region) String() string {
	a := r.Attr.String()
	if r.Raw != nil {
		a = fmt.Sprintf("raw %#08x", *r.Raw)
	}
	return fmt.Sprintf("%-12s [%#08x, %#08x) %s", r.Name, r.Begin, r.End, a)
}

// Table is the ordered Region Descriptor Table. Entries may overlap; for
// an address covered twice the later entry wins.
type Table []Region

// Mapped counts the entries covering at least one address
func (t Table) Mapped() int {
	n := 0
	for _, r := range t {
		if !r.Empty() {
			n++
		}
	}
	return n
}

// Validate checks Begin <= End for every entry
func (t Table) Validate() error {
	for i, r := range t {
		if r.Begin > r.End {
			return fmt.Errorf("%w: region %d (%s) begins at %#08x after its end %#08x",
				ErrInvalidBoard, i, r.Name, r.Begin, r.End)
		}
		if r.Raw == nil && !r.Attr.Valid() {
			return fmt.Errorf("%w: region %d (%s) has attribute %v",
				ErrInvalidBoard, i, r.Name, r.Attr)
		}
	}
	return nil
}

// Sections are the begin/end markers of the statically known link
// sections.
type Sections struct {
	FastText Span `toml:"fast_text" yaml:"fast_text"`
	FastData Span `toml:"fast_data" yaml:"fast_data"`
	Start    Span `toml:"start" yaml:"start"`
	Vector   Span `toml:"vector" yaml:"vector"`
	Text     Span `toml:"text" yaml:"text"`
	Rodata   Span `toml:"rodata" yaml:"rodata"`
	Data     Span `toml:"data" yaml:"data"`
	Bss      Span `toml:"bss" yaml:"bss"`
	Work     Span `toml:"work" yaml:"work"`
	Stack    Span `toml:"stack" yaml:"stack"`
}

// Device is a fixed physical peripheral window
type Device struct {
	Name  string `toml:"name" yaml:"name"`
	Begin uint32 `toml:"begin" yaml:"begin"`
	End   uint32 `toml:"end" yaml:"end"`
}

// Board describes one target.
//
// Region order matters: Regions() emits code sections, then data
// sections, then device windows, then Extra in file order. An address
// covered by more than one entry takes the policy of the last one.
type Board struct {
	Name      string   `toml:"name" yaml:"name"`
	Variant   string   `toml:"variant" yaml:"variant"`
	SMP       bool     `toml:"smp" yaml:"smp"`
	Cores     int      `toml:"cores" yaml:"cores"`
	TableBase uint32   `toml:"table_base" yaml:"table_base"`
	Sections  Sections `toml:"sections" yaml:"sections"`
	Devices   []Device `toml:"device" yaml:"devices"`
	Extra     Table    `toml:"region" yaml:"regions"`
}

// DataPolicy is the policy of data, bss, work and stack sections: cached
// read-write, shareable on multi-core targets.
func (b *Board) DataPolicy() attr.Attribute {
	if b.SMP {
		return attr.DataReadWriteShareable
	}
	return attr.DataReadWriteCached
}

// DevicePolicy is the policy of device windows
func (b *Board) DevicePolicy() attr.Attribute {
	if b.SMP {
		return attr.DeviceMemory | attr.Shared
	}
	return attr.DeviceMemory
}

// Regions builds the Region Descriptor Table of the board.
func (b *Board) Regions() Table {
	s := b.Sections
	data := b.DataPolicy()
	t := Table{
		{Name: "fast_text", Begin: s.FastText.Begin, End: s.FastText.End, Attr: attr.CodeCached},
		{Name: "fast_data", Begin: s.FastData.Begin, End: s.FastData.End, Attr: data},
		{Name: "start", Begin: s.Start.Begin, End: s.Start.End, Attr: attr.CodeCached},
		{Name: "vector", Begin: s.Vector.Begin, End: s.Vector.End, Attr: data},
		{Name: "text", Begin: s.Text.Begin, End: s.Text.End, Attr: attr.CodeCached},
		{Name: "rodata", Begin: s.Rodata.Begin, End: s.Rodata.End, Attr: attr.DataReadOnlyCached},
		{Name: "data", Begin: s.Data.Begin, End: s.Data.End, Attr: data},
		{Name: "bss", Begin: s.Bss.Begin, End: s.Bss.End, Attr: data},
		{Name: "work", Begin: s.Work.Begin, End: s.Work.End, Attr: data},
		{Name: "stack", Begin: s.Stack.Begin, End: s.Stack.End, Attr: data},
	}
	for _, d := range b.Devices {
		t = append(t, Region{Name: d.Name, Begin: d.Begin, End: d.End, Attr: b.DevicePolicy()})
	}
	return append(t, b.Extra...)
}

// VariantName maps a variant name or core name to "legacy" or "modern"
func VariantName(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "legacy", "arm1176", "arm1176jzf-s":
		return "legacy", true
	case "modern", "cortex-a9":
		return "modern", true
	}
	return "", false
}

// Validate checks the board description
func (b *Board) Validate() error {
	if _, ok := VariantName(b.Variant); !ok {
		return fmt.Errorf("%w: %s: unknown variant %q", ErrInvalidBoard, b.Name, b.Variant)
	}
	if b.Cores < 1 {
		return fmt.Errorf("%w: %s: %d cores", ErrInvalidBoard, b.Name, b.Cores)
	}
	if b.Cores > 1 && !b.SMP {
		return fmt.Errorf("%w: %s: %d cores without smp", ErrInvalidBoard, b.Name, b.Cores)
	}
	if b.TableBase%(16*1024) != 0 {
		return fmt.Errorf("%w: %s: translation table base %#08x is not 16k aligned",
			ErrInvalidBoard, b.Name, b.TableBase)
	}
	for _, d := range b.Devices {
		if d.Begin > d.End {
			return fmt.Errorf("%w: %s: device %s begins after its end", ErrInvalidBoard, b.Name, d.Name)
		}
	}
	return b.Regions().Validate()
}
