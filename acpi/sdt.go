package acpi

import (
	"errors"
	"math"
)

// ErrGuestAddrOverflow is returned when the destination address of a
// table body cannot be computed without wrapping the guest physical
// address space. The check runs before any byte is written.
var ErrGuestAddrOverflow = errors.New("guest address overflow")

// GuestMemory is the write side of guest physical memory as seen by the
// table builders. Failures of the implementation (unmapped address, out
// of range) are propagated unchanged.
type GuestMemory interface {
	WriteGuest(data []byte, addr uint64) error
}

// SDT is a finalized System Description Table ready to be placed into
// guest memory.
type SDT interface {
	// Len returns the total serialized size recorded in the table header.
	Len() uint32

	// WriteToGuest copies the table into guest memory at addr.
	WriteToGuest(mem GuestMemory, addr uint64) error
}

// writeTable copies header to addr and body to addr+len(header).
func writeTable(mem GuestMemory, addr uint64, header, body []byte) error {
	hdrLen := uint64(len(header))
	if addr > math.MaxUint64-hdrLen {
		return ErrGuestAddrOverflow
	}

	if err := mem.WriteGuest(header, addr); err != nil {
		return err
	}

	if len(body) == 0 {
		return nil
	}

	return mem.WriteGuest(body, addr+hdrLen)
}
