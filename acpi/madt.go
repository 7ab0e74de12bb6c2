package acpi

import (
	"bytes"
	"encoding/binary"
)

// Interrupt controller structure types emitted by this package.
const (
	TypeLocalAPIC uint8 = 0 + iota
	TypeIOAPIC
)

// Local APIC flag bits. Exactly one of the two is set per entry: a CPU
// is either usable at boot or parked until the guest onlines it.
const (
	LocalAPICEnabled       uint32 = 1 << 0
	LocalAPICOnlineCapable uint32 = 1 << 1
)

const (
	madtRevision  = 6
	madtHeaderLen = HeaderLen + 8
)

// APIC is one interrupt controller entry of the MADT body. Each entry
// self-describes its length so the guest can walk a concatenated buffer
// of heterogeneous entries.
type APIC interface {
	Len() uint8
	ToBytes() ([]byte, error)
}

// LocalAPIC is the per-vCPU local interrupt controller entry.
type LocalAPIC struct {
	Type        uint8
	Length      uint8
	ProcessorID uint8
	APICId      uint8
	Flags       uint32
}

// NewLocalAPIC builds the entry for cpuID. The APIC ID always equals the
// processor ID. Online-capable CPUs are reported present but not enabled,
// matching a two-phase (hotplug-style) bring-up.
func NewLocalAPIC(cpuID uint8, onlineCapable bool) LocalAPIC {
	flags := LocalAPICEnabled
	if onlineCapable {
		flags = LocalAPICOnlineCapable
	}

	return LocalAPIC{
		Type:        TypeLocalAPIC,
		Length:      8,
		ProcessorID: cpuID,
		APICId:      cpuID,
		Flags:       flags,
	}
}

func (l *LocalAPIC) Len() uint8 {
	return l.Length
}

func (l *LocalAPIC) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, l); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// IOAPIC is the I/O interrupt controller entry. The GSI base is fixed at
// zero: only a single-IOAPIC topology can be described.
type IOAPIC struct {
	Type        uint8
	Length      uint8
	IOAPICID    uint8
	_           uint8
	APICAddress uint32
	GSIBase     uint32
}

func NewIOAPIC(id uint8, apicAddress uint32) IOAPIC {
	return IOAPIC{
		Type:        TypeIOAPIC,
		Length:      12,
		IOAPICID:    id,
		APICAddress: apicAddress,
	}
}

func (i *IOAPIC) Len() uint8 {
	return i.Length
}

func (i *IOAPIC) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, i); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type madtHeader struct {
	Header
	LocalAPICAddr uint32
	Flags         uint32
}

// MADT is the Multiple APIC Description Table. It owns a finalized
// 44-byte header plus an opaque buffer of concatenated interrupt
// controller entries; the entries are never parsed, only their combined
// length is trusted.
type MADT struct {
	header  madtHeader
	entries []byte
}

// NewMADT finalizes a MADT over the caller-assembled entry buffer. The
// buffer is owned by the returned table from here on. The checksum is
// computed here and never touched again.
func NewMADT(oemID, oemTableID string, oemRev, lapicAddr uint32, entries []byte) (*MADT, error) {
	length := mustLength(madtHeaderLen + len(entries))

	m := &MADT{
		header: madtHeader{
			Header:        newHeader(SigAPIC, length, madtRevision, oemID, oemTableID, oemRev),
			LocalAPICAddr: lapicAddr,
		},
		entries: entries,
	}

	hdr, err := m.headerBytes()
	if err != nil {
		return nil, err
	}

	m.header.Checksum = Checksum(hdr, m.entries)

	return m, nil
}

func (m *MADT) headerBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, m.header); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Len returns the total table size recorded in the header.
func (m *MADT) Len() uint32 {
	return m.header.Length
}

// WriteToGuest copies the header to addr and the entry buffer right
// behind it.
func (m *MADT) WriteToGuest(mem GuestMemory, addr uint64) error {
	hdr, err := m.headerBytes()
	if err != nil {
		return err
	}

	return writeTable(mem, addr, hdr, m.entries)
}
