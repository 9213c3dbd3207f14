package mmu

import (
	"fmt"

	"armmm/board"
	"armmm/cpu"
)

// modernEnable is or-ed into the control register by the Cortex-A9 boot
const modernEnable = cpu.CtrlM | cpu.CtrlA | cpu.CtrlC | cpu.CtrlI |
	cpu.CtrlZ | cpu.CtrlAFE

// modern starts from an all-fault table and maps only what the Region
// Descriptor Table names.
type modern struct {
	table
	regions board.Table
}

// span is a region resolved to section indexes [start, stop)
type span struct {
	name        string
	start, stop uint32
	frag        Descriptor
}

func (m *modern) Variant() Variant {
	return Modern
}

func (m *modern) Initialize() error {
	return m.install(m.plan)
}

// plan encodes every region before the hardware is touched
func (m *modern) plan() (func(), error) {
	if err := m.regions.Validate(); err != nil {
		return nil, err
	}
	spans := make([]span, 0, len(m.regions))
	for _, r := range m.regions {
		if r.Begin == r.End {
			continue
		}
		var frag Descriptor
		if r.Raw != nil {
			frag = Descriptor(*r.Raw &^ (cpu.SectBaseMask | cpu.SectDomainMask))
		} else {
			var err error
			if frag, err = m.tr.Encode(r.Attr); err != nil {
				return nil, fmt.Errorf("region %s: %w", r.Name, err)
			}
		}
		spans = append(spans, span{
			name:  r.Name,
			start: cpu.SectIndex(r.Begin),
			stop:  uint32(cpu.SectAlignUp(uint64(r.End)) >> cpu.SectBaseShift),
			frag:  frag,
		})
	}

	return func() {
		for i := uint32(0); i < cpu.TableEntryCount; i++ {
			m.write(i, fragUnmapped)
		}
		for _, s := range spans {
			for i := s.start; i < s.stop; i++ {
				m.write(i, s.frag)
			}
			m.log.WithField("region", s.name).Debugf("sections [%d, %d) = %v", s.start, s.stop, s.frag)
		}
	}, nil
}
