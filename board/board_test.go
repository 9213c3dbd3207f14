package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"armmm/attr"
)

func TestRegionsOrderAndPolicy(t *testing.T) {
	b := RealviewPBXA9()
	regions := b.Regions()

	var names []string
	for _, r := range regions {
		names = append(names, r.Name)
	}
	want := []string{
		"fast_text", "fast_data", "start", "vector", "text", "rodata",
		"data", "bss", "work", "stack", "sysregs", "mpcore", "nor-flash",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("region order mismatch (-want +got):\n%s", diff)
	}

	policies := map[string]attr.Attribute{}
	for _, r := range regions {
		policies[r.Name] = r.Attr
	}
	wantPolicies := map[string]attr.Attribute{
		"fast_text": attr.CodeCached,
		"fast_data": attr.DataReadWriteCached,
		"start":     attr.CodeCached,
		"vector":    attr.DataReadWriteCached,
		"text":      attr.CodeCached,
		"rodata":    attr.DataReadOnlyCached,
		"data":      attr.DataReadWriteCached,
		"bss":       attr.DataReadWriteCached,
		"work":      attr.DataReadWriteCached,
		"stack":     attr.DataReadWriteCached,
		"sysregs":   attr.DeviceMemory,
		"mpcore":    attr.DeviceMemory,
		"nor-flash": attr.ReadOnly,
	}
	if diff := cmp.Diff(wantPolicies, policies); diff != "" {
		t.Errorf("region policy mismatch (-want +got):\n%s", diff)
	}
}

func TestSMPMarksDataShareable(t *testing.T) {
	b := RealviewPBXA9SMP()
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	for _, r := range b.Regions() {
		switch r.Name {
		case "data", "bss", "work", "stack", "vector", "fast_data":
			if !r.Attr.Has(attr.Shared) {
				t.Errorf("%s is not shareable on smp: %v", r.Name, r.Attr)
			}
		case "sysregs", "mpcore":
			if r.Attr != attr.DeviceMemory|attr.Shared {
				t.Errorf("%s = %v, want shared device", r.Name, r.Attr)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Board)
	}{
		{"unknown variant", func(b *Board) { b.Variant = "armv8" }},
		{"no cores", func(b *Board) { b.Cores = 0 }},
		{"cores without smp", func(b *Board) { b.Cores = 2 }},
		{"misaligned table", func(b *Board) { b.TableBase = 0x4100 }},
		{"inverted section", func(b *Board) { b.Sections.Data = Span{0x2000000, 0x1000000} }},
		{"inverted device", func(b *Board) { b.Devices[0].End = 0 }},
		{"invalid attribute", func(b *Board) { b.Extra[0].Attr = attr.Unmapped | attr.Write }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := RealviewPBXA9()
			tt.mutate(b)
			if err := b.Validate(); !errors.Is(err, ErrInvalidBoard) {
				t.Errorf("Validate() = %v, want ErrInvalidBoard", err)
			}
		})
	}
	for _, v := range []string{"arm1176", "ARM1176JZF-S", "cortex-a9", "legacy", "modern"} {
		b := RealviewPBXA9()
		b.Variant = v
		if err := b.Validate(); err != nil {
			t.Errorf("variant %q: %v", v, err)
		}
	}
	for name, p := range Presets {
		if err := p().Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	b, err := Load("testdata/realview.toml")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	want := RealviewPBXA9()
	want.Name = "realview-file"
	want.Extra = append(want.Extra,
		Region{Name: "guard", Begin: 0x03e00000, End: 0x03f00000, Attr: attr.Unmapped},
		Region{Name: "dma", Begin: 0x05000000, End: 0x05100000, Attr: attr.Write | attr.Device | attr.Shared},
	)
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	b, err := Load("testdata/raspberrypi.yaml")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if b.Variant != "legacy" || b.Sections.Text != (Span{0x00100000, 0x00180000}) {
		t.Errorf("Load() = %+v", b)
	}
	if len(b.Extra) != 2 {
		t.Fatalf("Extra = %v", b.Extra)
	}
	if b.Extra[0].Attr != attr.DeviceMemory {
		t.Errorf("framebuffer attr = %v", b.Extra[0].Attr)
	}
	if b.Extra[1].Raw == nil || *b.Extra[1].Raw != 0xc02 {
		t.Errorf("raw-window raw = %v", b.Extra[1].Raw)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		path string
		is   error
	}{
		{"testdata/inverted.toml", ErrInvalidBoard},
		{"testdata/badattr.yaml", attr.ErrUnknown},
		{"testdata/board.json", ErrInvalidBoard},
		{"testdata/typo.toml", ErrInvalidBoard},
		{"testdata/noattr.toml", ErrInvalidBoard},
		{"testdata/noattr.yaml", ErrInvalidBoard},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if _, err := Load(tt.path); !errors.Is(err, tt.is) {
				t.Errorf("Load() = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	b, err := Lookup("raspberrypi")
	if err != nil || b.Name != "raspberrypi" {
		t.Errorf("Lookup(raspberrypi) = %v, %v", b, err)
	}
	if _, err := Lookup("testdata/realview.toml"); err != nil {
		t.Errorf("Lookup(file) = %v", err)
	}
}
