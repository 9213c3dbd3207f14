package mmu

import "errors"

// errors returned by the memory-protection layer
var (
	// ErrInvalidRange - base + size lies beyond the 4 GiB span of the table
	ErrInvalidRange = errors.New("address range outside the translation table")
	// ErrUnsupportedAttribute - the active translator cannot encode the attribute
	ErrUnsupportedAttribute = errors.New("attribute not supported by translator")
	// ErrAlreadyInitialized - Initialize is a boot-only operation
	ErrAlreadyInitialized = errors.New("translation table already initialized")
	// ErrNotInitialized - SetAttributes or Describe before Initialize
	ErrNotInitialized = errors.New("translation table not initialized")
	// ErrMisalignedTable - the table base is not 16 KiB aligned
	ErrMisalignedTable = errors.New("translation table base not 16k aligned")
	// ErrInvalidDomain - domain index above 15
	ErrInvalidDomain = errors.New("invalid domain")
)
