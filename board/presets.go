package board

import "armmm/attr"

// RealviewPBXA9 is the Cortex-A9 RealView platform baseboard. It boots
// the modern variant from its Region Descriptor Table. The read-only NOR
// window comes last so nothing overrides it.
func RealviewPBXA9() *Board {
	return &Board{
		Name:      "realview-pbx-a9",
		Variant:   "modern",
		Cores:     1,
		TableBase: 0x00004000,
		Sections: Sections{
			Vector: Span{0x00000000, 0x00000040},
			Start:  Span{0x00000040, 0x00001000},
			Text:   Span{0x01000000, 0x01100000},
			Rodata: Span{0x01100000, 0x01180000},
			Data:   Span{0x01200000, 0x01240000},
			Bss:    Span{0x01240000, 0x012c0000},
			Work:   Span{0x01300000, 0x03f00000},
			Stack:  Span{0x03f00000, 0x04000000},
		},
		Devices: []Device{
			{Name: "sysregs", Begin: 0x10000000, End: 0x10020000},
			{Name: "mpcore", Begin: 0x1f000000, End: 0x20000000},
		},
		Extra: Table{
			{Name: "nor-flash", Begin: 0x0c000000, End: 0x0cffffff, Attr: attr.ReadOnly},
		},
	}
}

// RealviewPBXA9SMP is RealviewPBXA9 with all four cores sharing one table
func RealviewPBXA9SMP() *Board {
	b := RealviewPBXA9()
	b.Name = "realview-pbx-a9-smp"
	b.SMP = true
	b.Cores = 4
	return b
}

// RaspberryPi is the ARM1176JZF-S board. The legacy variant installs the
// uniform default, so the sections only document the layout.
func RaspberryPi() *Board {
	return &Board{
		Name:      "raspberrypi",
		Variant:   "legacy",
		Cores:     1,
		TableBase: 0x00004000,
		Sections: Sections{
			Vector: Span{0x00000000, 0x00000040},
			Start:  Span{0x00008000, 0x00009000},
			Text:   Span{0x00100000, 0x00180000},
			Rodata: Span{0x00180000, 0x001c0000},
			Data:   Span{0x00200000, 0x00220000},
			Bss:    Span{0x00220000, 0x00280000},
			Work:   Span{0x00300000, 0x07f00000},
			Stack:  Span{0x07f00000, 0x08000000},
		},
		Devices: []Device{
			{Name: "peripherals", Begin: 0x20000000, End: 0x21000000},
		},
	}
}

// Presets maps preset names to constructors
var Presets = map[string]func() *Board{
	"realview-pbx-a9":     RealviewPBXA9,
	"realview-pbx-a9-smp": RealviewPBXA9SMP,
	"raspberrypi":         RaspberryPi,
}
