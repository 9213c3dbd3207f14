package interrupts

import "fmt"

/**
 * Separate package exists mainly in order to avoid cyclic imports
 */

/********************************
 * exception vectors (offset from the vector base):
 ********************************/

// Reset vector
const Reset = 0x00

// Undefined instruction
const Undefined = 0x04

// SWI - software interrupt (supervisor call)
const SWI = 0x08

// PrefetchAbort - instruction fetch denied by the translation unit
const PrefetchAbort = 0x0c

// DataAbort - data access denied by the translation unit
const DataAbort = 0x10

// IRQ - normal interrupt
const IRQ = 0x18

// FIQ - fast interrupt
const FIQ = 0x1c

// Trap is raised (panicked) by the core when an exception is taken
// synchronously. The system run loop recovers it and dispatches to the
// handler installed for Vector.
type Trap struct {
	Vector uint32
	Msg    string
}

func (t Trap) Error() string {
	return fmt.Sprintf("trap %s: %s", VectorName(t.Vector), t.Msg)
}

// IsAbort reports whether the trap was raised by the translation unit
func (t Trap) IsAbort() bool {
	return t.Vector == DataAbort || t.Vector == PrefetchAbort
}

// VectorName returns a short name of the exception vector
func VectorName(v uint32) string {
	switch v {
	case Reset:
		return "reset"
	case Undefined:
		return "undefined"
	case SWI:
		return "swi"
	case PrefetchAbort:
		return "prefetch abort"
	case DataAbort:
		return "data abort"
	case IRQ:
		return "irq"
	case FIQ:
		return "fiq"
	}
	return fmt.Sprintf("vector %#02x", v)
}
