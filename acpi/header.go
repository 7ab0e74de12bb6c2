package acpi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderLen is the size of the header shared by every SDT.
const HeaderLen = 36

// Header is the fixed 36-byte record at the start of every System
// Description Table. The checksum covers the whole table (header and
// body) and is back-filled exactly once by the owning table during
// construction.
type Header struct {
	Signature  [4]byte
	Length     uint32
	Rev        uint8
	Checksum   uint8
	OEMId      [6]byte
	OEMTableID [8]byte
	OEMRev     uint32
	CreatorID  [4]byte
	CreatorRev uint32
}

func convertOEMID(oemID string) [6]byte {
	var id [6]byte

	copy(id[:], oemID)

	return id
}

func convertOEMTableID(oemTableID string) [8]byte {
	var id [8]byte

	copy(id[:], oemTableID)

	return id
}

func convertCreatorID(creatorID string) [4]byte {
	var id [4]byte

	copy(id[:], creatorID)

	return id
}

// mustLength converts a computed table size to the width of the header
// length field. A size that does not fit is a bug in the computation,
// not a runtime condition, so it panics instead of truncating.
func mustLength(n int) uint32 {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic(fmt.Sprintf("acpi: table length %d does not fit the header length field", n))
	}

	return uint32(n)
}

func newHeader(sig Signature, length uint32, rev uint8, oemID, oemTableID string, oemRev uint32) Header {
	creatorID := "GACT" // Go ACPI Tables.

	return Header{
		Signature:  sig.ToBytes(),
		Length:     length,
		Rev:        rev,
		OEMId:      convertOEMID(oemID),
		OEMTableID: convertOEMTableID(oemTableID),
		OEMRev:     oemRev,
		CreatorID:  convertCreatorID(creatorID),
		CreatorRev: 1,
	}
}

func (h Header) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
