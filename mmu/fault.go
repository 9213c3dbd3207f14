package mmu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"armmm/cpu"
	"armmm/interrupts"
)

// FaultKind classifies the fault status
type FaultKind int

// fault kinds
const (
	UnknownFault FaultKind = iota
	AlignmentFault
	AccessFlagFault
	TranslationFaultKind
	DomainFault
	PermissionFault
)

func (k FaultKind) String() string {
	switch k {
	case AlignmentFault:
		return "alignment"
	case AccessFlagFault:
		return "access flag"
	case TranslationFaultKind:
		return "translation"
	case DomainFault:
		return "domain"
	case PermissionFault:
		return "permission"
	}
	return "unknown"
}

func faultKind(status uint32) FaultKind {
	switch status {
	case cpu.FaultAlignment:
		return AlignmentFault
	case cpu.FaultAccessFlagSection:
		return AccessFlagFault
	case cpu.FaultTranslationSection:
		return TranslationFaultKind
	case cpu.FaultDomainSection:
		return DomainFault
	case cpu.FaultPermissionSection:
		return PermissionFault
	}
	return UnknownFault
}

// TranslationFault is an access the table denied, decoded from the fault
// status and address registers.
type TranslationFault struct {
	Core    int
	Kind    FaultKind
	Access  cpu.Access
	Address uint32
	Status  uint32
	Domain  uint32
}

func (f *TranslationFault) Error() string {
	return fmt.Sprintf("core %d: %s fault on %s at %#08x (status %#02x, domain %d)",
		f.Core, f.Kind, f.Access, f.Address, f.Status, f.Domain)
}

// FatalSink receives faults nothing can recover from. It decides whether
// the core halts, the fault is logged or the machine goes down.
type FatalSink interface {
	Fatal(f *TranslationFault)
}

// FaultHandler is the abort entry of one core
type FaultHandler struct {
	hw   Hardware
	sink FatalSink
	log  logrus.FieldLogger
}

// NewFaultHandler returns the abort entry for core hw
func NewFaultHandler(hw Hardware, sink FatalSink, log logrus.FieldLogger) *FaultHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FaultHandler{hw: hw, sink: sink, log: log.WithField("core", hw.ID())}
}

// Handle decodes the abort taken through vector and forwards it to the
// sink. The decoded fault is returned. Vectors other than the data and
// prefetch aborts are rejected without reaching the sink.
func (h *FaultHandler) Handle(vector uint32) error {
	var fsr, far uint32
	var acc cpu.Access

	switch vector {
	case interrupts.DataAbort:
		fsr, far = h.hw.DataFault()
		acc = cpu.Read
		if cpu.FSRWrite(fsr) {
			acc = cpu.Write
		}
	case interrupts.PrefetchAbort:
		fsr, far = h.hw.PrefetchFault()
		acc = cpu.Fetch
	default:
		return fmt.Errorf("vector %#02x (%s) is not an abort", vector, interrupts.VectorName(vector))
	}

	status := cpu.FSRStatus(fsr)
	f := &TranslationFault{
		Core:    h.hw.ID(),
		Kind:    faultKind(status),
		Access:  acc,
		Address: far,
		Status:  status,
		Domain:  cpu.FSRDomain(fsr),
	}
	h.log.WithFields(logrus.Fields{
		"vector":  interrupts.VectorName(vector),
		"address": fmt.Sprintf("%#08x", far),
		"access":  acc.String(),
		"status":  cpu.FaultDescription(status),
		"domain":  f.Domain,
	}).Error("translation fault")

	if h.sink != nil {
		h.sink.Fatal(f)
	}
	return f
}
