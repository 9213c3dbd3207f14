package psw

/**
Program status register package (ARM CPSR)
*/

// status register layout. Values here are bits, not the
// powers of 2
const fFlag = 6
const iFlag = 7
const vFlag = 28
const cFlag = 29
const zFlag = 30
const nFlag = 31

const modeMask = 0x1f

// processor modes
const (
	UserMode       = 0x10
	FIQMode        = 0x11
	IRQMode        = 0x12
	SupervisorMode = 0x13
	AbortMode      = 0x17
	UndefinedMode  = 0x1b
	SystemMode     = 0x1f
)

// PSR keeps the current program status register
type PSR uint32

// Get returns current program status register
func (psr *PSR) Get() uint32 {
	return uint32(*psr)
}

// GetMode returns the 5 bit processor mode
func (psr *PSR) GetMode() uint32 {
	return uint32(*psr) & modeMask
}

// IsUserMode reports whether the core runs unprivileged
func (psr *PSR) IsUserMode() bool {
	return psr.GetMode() == UserMode
}

// SwitchMode replaces the mode field, leaving flags and masks intact
func (psr *PSR) SwitchMode(m uint32) {
	*psr = (*psr &^ modeMask) | PSR(m&modeMask)
}

// IRQDisabled returns the I mask bit
func (psr *PSR) IRQDisabled() bool {
	return psr.getFlag(iFlag)
}

// SetIRQDisabled sets or clears the I mask bit
func (psr *PSR) SetIRQDisabled(status bool) {
	psr.setFlag(iFlag, status)
}

// FIQDisabled returns the F mask bit
func (psr *PSR) FIQDisabled() bool {
	return psr.getFlag(fFlag)
}

// C returns C flag:
func (psr *PSR) C() bool {
	return psr.getFlag(cFlag)
}

// V returns v flag
func (psr *PSR) V() bool {
	return psr.getFlag(vFlag)
}

// Z returns Z flag
func (psr *PSR) Z() bool {
	return psr.getFlag(zFlag)
}

// N returns N flag
func (psr *PSR) N() bool {
	return psr.getFlag(nFlag)
}

// generic get flag function
func (psr *PSR) getFlag(flag uint) bool {
	return (*psr & (1 << flag)) > 0
}

// generic set flag function
func (psr *PSR) setFlag(flag uint, status bool) {
	if status {
		*psr |= (1 << flag)
	} else {
		*psr &^= (1 << flag)
	}
}

var modeNames = map[uint32]string{
	UserMode:       "usr",
	FIQMode:        "fiq",
	IRQMode:        "irq",
	SupervisorMode: "svc",
	AbortMode:      "abt",
	UndefinedMode:  "und",
	SystemMode:     "sys",
}

// GetFlags returns set flags, mode and mask bits
func (psr *PSR) GetFlags() string {
	flags := ""
	if psr.N() {
		flags += "N"
	} else {
		flags += " "
	}
	if psr.Z() {
		flags += "Z"
	} else {
		flags += " "
	}
	if psr.C() {
		flags += "C"
	} else {
		flags += " "
	}
	if psr.V() {
		flags += "V"
	} else {
		flags += " "
	}
	if psr.IRQDisabled() {
		flags += "I"
	} else {
		flags += " "
	}
	if psr.FIQDisabled() {
		flags += "F"
	} else {
		flags += " "
	}
	mode, ok := modeNames[psr.GetMode()]
	if !ok {
		mode = "???"
	}
	return "[" + flags + " " + mode + "]"
}
