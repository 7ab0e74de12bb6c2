package acpi

import (
	"bytes"
	"encoding/binary"
	"strings"
)

type AMLOp uint8

const (
	OpZero AMLOp = 0x00
	OpOne  AMLOp = 0x01

	OpName        AMLOp = 0x08
	OpBytePrefix  AMLOp = 0x0A
	OpWordPrefix  AMLOp = 0x0B
	OpDWordPrefix AMLOp = 0x0C
	OpString      AMLOp = 0x0D
	OpQWordPrefix AMLOp = 0x0E
	OpScope       AMLOp = 0x10
	OpBuffer      AMLOp = 0x11

	OpExtPrefix AMLOp = 0x5B
	OpDevice    AMLOp = 0x82

	OpOnes AMLOp = 0xFF

	IOPortDesc     AMLOp = 0x47
	IRQNoFlagsDesc AMLOp = 0x22
	EndTag         AMLOp = 0x79
	Mem32FixedDesc AMLOp = 0x86
	ExtIRQDesc     AMLOp = 0x89
)

// AML is an append-only builder for the DSDT byte-code stream. Every
// method returns the receiver so definitions chain.
type AML struct {
	buf bytes.Buffer
}

func NewAML() *AML {
	return &AML{
		buf: bytes.Buffer{},
	}
}

func (a *AML) ToBytes() []byte {
	return a.buf.Bytes()
}

// Path emits an AML NameString. Segments are dot-separated and at most
// four characters each.
func (a *AML) Path(str string) *AML {
	if strings.HasPrefix(str, "\\") {
		a.buf.WriteByte('\\')

		str = strings.Trim(str, "\\")
	}

	for _, substring := range strings.Split(str, ".") {
		if len(substring) > 4 {
			return nil
		}

		a.buf.WriteString(substring)
	}

	return a
}

func (a *AML) Bytes(b byte) *AML {
	a.buf.WriteByte(byte(OpBytePrefix))
	a.buf.WriteByte(b)

	return a
}

func (a *AML) Word(w uint16) *AML {
	a.buf.WriteByte(byte(OpWordPrefix))

	data := make([]byte, 2)

	binary.LittleEndian.PutUint16(data, w)

	a.buf.Write(data)

	return a
}

func (a *AML) DWord(dw uint32) *AML {
	a.buf.WriteByte(byte(OpDWordPrefix))

	data := make([]byte, 4)

	binary.LittleEndian.PutUint32(data, dw)

	a.buf.Write(data)

	return a
}

func (a *AML) Name(path string, inner *AML) *AML {
	a.buf.WriteByte(byte(OpName))
	a.Path(path)
	a.buf.Write(inner.ToBytes())

	return a
}

func (a *AML) String(str string) *AML {
	a.buf.WriteByte(byte(OpString))

	for _, substr := range str {
		a.buf.WriteByte(byte(substr))
	}

	a.buf.WriteByte(0x0)

	return a
}

const (
	pkgLen1 = 63
	pkgLen2 = 4096
	pkgLen3 = 1048573
)

// CalcPkgLength encodes an AML PkgLength. With includepkg the encoded
// bytes count themselves, as required for package-style opcodes.
func CalcPkgLength(length uint32, includepkg bool) []byte {
	var lenlen uint32

	switch {
	case length < pkgLen1:
		lenlen = 1
	case length < pkgLen2:
		lenlen = 2
	case length < pkgLen3:
		lenlen = 3
	default:
		lenlen = 4
	}

	ret := make([]byte, lenlen)

	if includepkg {
		length += lenlen
	}

	switch lenlen {
	case 1:
		ret[0] = uint8(length)
	case 2:
		ret[0] = (uint8(1) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
	case 3:
		ret[0] = (uint8(2) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
		ret[2] = uint8(length >> 12)
	case 4:
		ret[0] = (uint8(3) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
		ret[2] = uint8(length >> 12)
		ret[3] = uint8(length >> 20)
	}

	return ret
}

// ResourceTemplate wraps resource descriptors in a Buffer term and
// appends the end tag.
func (a *AML) ResourceTemplate(inner *AML) *AML {
	var buf1, buf2 bytes.Buffer

	buf1.Write(inner.ToBytes())
	buf1.WriteByte(byte(EndTag))
	buf1.WriteByte(0x0)

	size := uint32(buf1.Len())

	sizeTerm := NewAML()
	if size <= 0xFF {
		sizeTerm.Bytes(uint8(size))
	} else {
		sizeTerm.Word(uint16(size))
	}

	dlen := uint32(sizeTerm.buf.Len()) + size

	buf2.Write(CalcPkgLength(dlen, true))
	buf2.Write(sizeTerm.ToBytes())
	buf2.Write(buf1.Bytes())

	a.buf.WriteByte(byte(OpBuffer))
	a.buf.Write(buf2.Bytes())

	return a
}

func (a *AML) Memory32Fixed(base, length uint32, rw bool) *AML {
	readwrite := uint8(0)
	if rw {
		readwrite = 1
	}

	a.buf.WriteByte(byte(Mem32FixedDesc))
	a.buf.WriteByte(0x09)
	a.buf.WriteByte(0x0)
	a.buf.WriteByte(readwrite)

	data := make([]byte, 8)

	binary.LittleEndian.PutUint32(data, base)
	binary.LittleEndian.PutUint32(data[4:], length)

	a.buf.Write(data)

	return a
}

func (a *AML) IO(min, max uint16, align, length uint8) *AML {
	a.buf.WriteByte(byte(IOPortDesc))
	a.buf.WriteByte(0x1)

	data := make([]byte, 4)

	binary.LittleEndian.PutUint16(data, min)
	binary.LittleEndian.PutUint16(data[2:], max)

	a.buf.Write(data)
	a.buf.WriteByte(align)
	a.buf.WriteByte(length)

	return a
}

// IRQNoFlags emits the small two-byte IRQ descriptor for legacy ISA
// interrupts.
func (a *AML) IRQNoFlags(irq uint8) *AML {
	a.buf.WriteByte(byte(IRQNoFlagsDesc))

	data := make([]byte, 2)

	binary.LittleEndian.PutUint16(data, uint16(1)<<irq)

	a.buf.Write(data)

	return a
}

// Interrupt emits an extended interrupt descriptor for a single GSI.
func (a *AML) Interrupt(consumer, edgetrig, activelow, shared bool, number uint32) *AML {
	flags := uint8(0)

	if consumer {
		flags |= 1 << 0
	}

	if edgetrig {
		flags |= 1 << 1
	}

	if activelow {
		flags |= 1 << 2
	}

	if shared {
		flags |= 1 << 3
	}

	a.buf.WriteByte(byte(ExtIRQDesc))

	data := make([]byte, 2)

	binary.LittleEndian.PutUint16(data, 0x6)

	a.buf.Write(data)
	a.buf.WriteByte(flags)
	a.buf.WriteByte(1)

	gsi := make([]byte, 4)

	binary.LittleEndian.PutUint32(gsi, number)

	a.buf.Write(gsi)

	return a
}

func (a *AML) Device(path string, children *AML) *AML {
	aml := NewAML()
	aml.Path(path)
	aml.buf.Write(children.ToBytes())

	pkglen := CalcPkgLength(uint32(aml.buf.Len()), true)

	a.buf.WriteByte(byte(OpExtPrefix))
	a.buf.WriteByte(byte(OpDevice))
	a.buf.Write(pkglen)
	a.buf.Write(aml.ToBytes())

	return a
}

func (a *AML) Scope(path string, children *AML) *AML {
	aml := NewAML()
	aml.Path(path)
	aml.buf.Write(children.ToBytes())

	pkglen := CalcPkgLength(uint32(aml.buf.Len()), true)

	a.buf.WriteByte(byte(OpScope))
	a.buf.Write(pkglen)
	a.buf.Write(aml.ToBytes())

	return a
}
