package mmu

import "armmm/cpu"

// legacyEnable is or-ed into the control register by the ARM1176 boot:
// translation, both caches, alignment checks, the access flag model and
// the ARMv6 descriptor format.
const legacyEnable = cpu.CtrlM | cpu.CtrlA | cpu.CtrlC | cpu.CtrlI |
	cpu.CtrlAFE | cpu.CtrlS | cpu.CtrlR | cpu.CtrlXP

// legacy fills every entry with a flat, full access section. Protection
// is applied afterwards through SetAttributes only.
type legacy struct {
	table
}

func (l *legacy) Variant() Variant {
	return Legacy
}

func (l *legacy) Initialize() error {
	return l.install(func() (func(), error) {
		return func() {
			for i := uint32(0); i < cpu.TableEntryCount; i++ {
				l.write(i, fragUniform)
			}
		}, nil
	})
}
