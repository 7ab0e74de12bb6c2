package acpi

import (
	"bytes"
	"encoding/binary"
)

const (
	// RSDPLen is the size of the revision-2 RSDP.
	RSDPLen = 36

	// rsdpLegacyLen is the revision-1 prefix covered by the first
	// checksum byte.
	rsdpLegacyLen = 20
)

// RSDP is the Root System Description Pointer, the anchor structure the
// guest firmware scans for. Revision 2, pointing at the XSDT only.
type RSDP struct {
	Signature        [8]byte
	Checksum         uint8
	OEMId            [6]byte
	Rev              uint8
	RSDTAddr         uint32
	Length           uint32
	XSDTAddr         uint64
	ExtendedChecksum uint8
	_                [3]uint8
}

// NewRSDP finalizes an RSDP referencing the XSDT at xsdtAddr. Both
// checksum bytes are computed here: the first over the 20-byte legacy
// prefix, the extended one over the whole structure.
func NewRSDP(oemID string, xsdtAddr uint64) (*RSDP, error) {
	r := &RSDP{
		OEMId:    convertOEMID(oemID),
		Rev:      2,
		Length:   RSDPLen,
		XSDTAddr: xsdtAddr,
	}
	copy(r.Signature[:], "RSD PTR ")

	data, err := r.ToBytes()
	if err != nil {
		return nil, err
	}

	r.Checksum = Checksum(data[:rsdpLegacyLen])
	data[8] = r.Checksum
	r.ExtendedChecksum = Checksum(data)

	return r, nil
}

func (r *RSDP) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *RSDP) Len() uint32 {
	return RSDPLen
}

// WriteToGuest copies the RSDP to addr. The structure is written in one
// piece; it has no separate body.
func (r *RSDP) WriteToGuest(mem GuestMemory, addr uint64) error {
	data, err := r.ToBytes()
	if err != nil {
		return err
	}

	return mem.WriteGuest(data, addr)
}
