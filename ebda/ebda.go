package ebda

import (
	"bytes"
	"encoding/binary"

	"github.com/hvtool/acpitables/acpi"
)

// Start is the guest physical address of the Extended BIOS Data Area.
const Start = 0x0009FC00

// EBDA is the Extended BIOS Data Area. It carries the Intel MP floating
// pointer, which some guests scan for before falling back to ACPI.
type EBDA struct {
	// The MP floating pointer must be 16-byte aligned and within the
	// first kilobyte of the EBDA.
	_        [16 * 3]uint8
	MPFIntel MPFIntel
}

func New() (*EBDA, error) {
	mpfIntel, err := NewMPFIntel()
	if err != nil {
		return nil, err
	}

	return &EBDA{MPFIntel: *mpfIntel}, nil
}

func (e *EBDA) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, e); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteToGuest copies the EBDA to its fixed guest address.
func (e *EBDA) WriteToGuest(mem acpi.GuestMemory) error {
	data, err := e.ToBytes()
	if err != nil {
		return err
	}

	return mem.WriteGuest(data, Start)
}

// MPFIntel is the Intel MP floating pointer structure. Like the ACPI
// tables it must sum to zero mod 256, checksum byte included.
type MPFIntel struct {
	Signature     uint32
	PhysPtr       uint32
	Length        uint8
	Specification uint8
	Checksum      uint8
	Feature1      uint8
	Feature2      uint8
	Feature3      uint8
	Feature4      uint8
	Feature5      uint8
}

// NewMPFIntel builds an MP spec 1.4 floating pointer with no
// configuration table attached. The checksum is back-filled here, at
// construction, and never touched again.
func NewMPFIntel() (*MPFIntel, error) {
	m := &MPFIntel{
		Signature:     ('_' << 24) | ('P' << 16) | ('M' << 8) | '_',
		Length:        1, // in 16-byte units
		Specification: 4,
	}

	data, err := m.ToBytes()
	if err != nil {
		return nil, err
	}

	m.Checksum = acpi.Checksum(data)

	return m, nil
}

func (m *MPFIntel) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
