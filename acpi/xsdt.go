package acpi

import (
	"bytes"
	"encoding/binary"
)

// XSDT is the Extended System Description Table: a list of 64-bit guest
// physical addresses of every other table.
type XSDT struct {
	header Header
	body   []byte
}

// NewXSDT finalizes an XSDT pointing at the given table addresses.
func NewXSDT(oemID, oemTableID string, oemRev uint32, tables []uint64) (*XSDT, error) {
	var body bytes.Buffer

	for _, addr := range tables {
		if err := binary.Write(&body, binary.LittleEndian, addr); err != nil {
			return nil, err
		}
	}

	length := mustLength(HeaderLen + body.Len())

	x := &XSDT{
		header: newHeader(SigXSDT, length, 1, oemID, oemTableID, oemRev),
		body:   body.Bytes(),
	}

	hdr, err := x.header.ToBytes()
	if err != nil {
		return nil, err
	}

	x.header.Checksum = Checksum(hdr, x.body)

	return x, nil
}

func (x *XSDT) Len() uint32 {
	return x.header.Length
}

func (x *XSDT) WriteToGuest(mem GuestMemory, addr uint64) error {
	hdr, err := x.header.ToBytes()
	if err != nil {
		return err
	}

	return writeTable(mem, addr, hdr, x.body)
}
