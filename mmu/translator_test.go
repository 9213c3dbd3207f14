package mmu

import (
	"errors"
	"testing"

	"armmm/attr"
)

func TestGeneral_Encode(t *testing.T) {
	tests := []struct {
		name string
		a    attr.Attribute
		want Descriptor
	}{
		{"read-only", attr.ReadOnly, 0x00008402},
		{"read-write", attr.ReadWrite, 0x00000402},
		{"code cached", attr.CodeCached, 0x0000940e},
		{"data rw cached", attr.DataReadWriteCached, 0x0000140e},
		{"data rw shareable", attr.DataReadWriteShareable, 0x0001140e},
		{"device", attr.DeviceMemory, 0x00000406},
		{"device wins over cache", attr.DeviceMemory | attr.Cache, 0x00000406},
		{"shared device", attr.DeviceMemory | attr.Shared, 0x00010406},
		{"unmapped", attr.Unmapped, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := General().Encode(tt.a)
			if err != nil {
				t.Fatalf("Encode(%v) error = %v", tt.a, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %#08x, want %#08x", tt.a, uint32(got), uint32(tt.want))
			}
			if got.Domain() != 0 || got.Base() != 0 {
				t.Errorf("Encode(%v) = %v carries base or domain", tt.a, got)
			}
		})
	}
}

// Every combination is a readable section, read-only exactly when Write
// is missing.
func TestGeneral_WriteDeniedIffWriteAbsent(t *testing.T) {
	for _, a := range attr.All() {
		d, err := General().Encode(a)
		if err != nil {
			t.Fatalf("Encode(%v) error = %v", a, err)
		}
		if !d.Section() {
			t.Errorf("Encode(%v) = %v is not a section", a, d)
		}
		if d.ReadOnly() == a.Has(attr.Write) {
			t.Errorf("Encode(%v) read-only = %v", a, d.ReadOnly())
		}
		if d.Cacheable() != (a.Has(attr.Cache) && !a.Has(attr.Device)) {
			t.Errorf("Encode(%v) cacheable = %v", a, d.Cacheable())
		}
		if d.Shareable() != a.Has(attr.Shared) {
			t.Errorf("Encode(%v) shareable = %v", a, d.Shareable())
		}
	}
}

func TestGeneral_RejectsInvalid(t *testing.T) {
	if _, err := General().Encode(attr.Attribute(0x40)); !errors.Is(err, ErrUnsupportedAttribute) {
		t.Errorf("Encode(0x40) error = %v, want ErrUnsupportedAttribute", err)
	}
}

func TestNarrow_Encode(t *testing.T) {
	accepted := map[attr.Attribute]bool{
		attr.DataReadWriteCached: true,
		attr.CodeCached:          true,
	}
	for _, a := range append(attr.All(), attr.Unmapped) {
		got, err := Narrow().Encode(a)
		if !accepted[a] && a != attr.Unmapped {
			if !errors.Is(err, ErrUnsupportedAttribute) {
				t.Errorf("Encode(%v) error = %v, want ErrUnsupportedAttribute", a, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Encode(%v) error = %v", a, err)
		}
		// the legacy lookup agrees with the general decoding
		want, _ := General().Encode(a)
		if got != want {
			t.Errorf("Encode(%v) = %v, general gives %v", a, got, want)
		}
	}
}

func TestDescriptor_String(t *testing.T) {
	d := Descriptor(0x0010140e | 15<<5)
	want := "001015ee section base 00100000 dom 15 ap 001 tex 1 [C B]"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Descriptor(0).String(); got != "00000000 fault" {
		t.Errorf("String() = %q", got)
	}
}
