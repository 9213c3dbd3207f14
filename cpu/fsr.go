package cpu

import "fmt"

// fault status codes (FS[4:0], short descriptor format)
const (
	FaultAlignment          = 0x01
	FaultDebug              = 0x02
	FaultAccessFlagSection  = 0x03
	FaultICacheMaintenance  = 0x04
	FaultTranslationSection = 0x05
	FaultAccessFlagPage     = 0x06
	FaultTranslationPage    = 0x07
	FaultExternal           = 0x08
	FaultDomainSection      = 0x09
	FaultDomainPage         = 0x0b
	FaultWalkExternalL1     = 0x0c
	FaultPermissionSection  = 0x0d
	FaultWalkExternalL2     = 0x0e
	FaultPermissionPage     = 0x0f
)

// fault status register fields
const (
	fsrStatusLow  = 0xf
	fsrDomainMask = 0xf << 4
	fsrStatusHigh = 1 << 10
	fsrWnR        = 1 << 11
)

var faultDescriptions = map[uint32]string{
	FaultAlignment:          "alignment fault",
	FaultDebug:              "debug event",
	FaultAccessFlagSection:  "access flag fault, section",
	FaultICacheMaintenance:  "instruction cache maintenance fault",
	FaultTranslationSection: "translation fault, section",
	FaultAccessFlagPage:     "access flag fault, page",
	FaultTranslationPage:    "translation fault, page",
	FaultExternal:           "synchronous external abort, non-translation",
	FaultDomainSection:      "domain fault, section",
	FaultDomainPage:         "domain fault, page",
	FaultWalkExternalL1:     "synchronous external abort on translation table walk, 1st level",
	FaultPermissionSection:  "permission fault, section",
	FaultWalkExternalL2:     "synchronous external abort on translation table walk, 2nd level",
	FaultPermissionPage:     "permission fault, page",
}

// MakeFSR packs a status code, domain and access direction the way the
// hardware reports them in DFSR/IFSR.
func MakeFSR(status, domain uint32, write bool) uint32 {
	fsr := status&fsrStatusLow | (domain<<4)&fsrDomainMask
	if status&0x10 != 0 {
		fsr |= fsrStatusHigh
	}
	if write {
		fsr |= fsrWnR
	}
	return fsr
}

// FSRStatus extracts FS[4:0]
func FSRStatus(fsr uint32) uint32 {
	s := fsr & fsrStatusLow
	if fsr&fsrStatusHigh != 0 {
		s |= 0x10
	}
	return s
}

// FSRDomain extracts the domain field
func FSRDomain(fsr uint32) uint32 {
	return (fsr & fsrDomainMask) >> 4
}

// FSRWrite reports the WnR bit: the aborted access was a write
func FSRWrite(fsr uint32) bool {
	return fsr&fsrWnR != 0
}

// FaultDescription returns the architectural name of a fault status code
func FaultDescription(status uint32) string {
	if d, ok := faultDescriptions[status]; ok {
		return d
	}
	return fmt.Sprintf("unknown fault status %#02x", status)
}
