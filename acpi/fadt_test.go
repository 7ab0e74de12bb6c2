package acpi_test

import (
	"encoding/binary"
	"testing"

	"github.com/hvtool/acpitables/acpi"
)

func TestNewFADT(t *testing.T) {
	t.Parallel()

	fadt, err := acpi.NewFADT("TESTOS", "TESTTABL", 1, 0xE1000)
	if err != nil {
		t.Fatal(err)
	}

	if fadt.Len() != 276 {
		t.Fatalf("expected: 276, actual: %d", fadt.Len())
	}

	data, err := fadt.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != 276 {
		t.Fatalf("expected: 276, actual: %d", len(data))
	}

	if string(data[:4]) != "FACP" {
		t.Fatalf("expected: FACP, actual: %q", data[:4])
	}

	if dsdt := binary.LittleEndian.Uint32(data[40:44]); dsdt != 0xE1000 {
		t.Fatalf("expected: 0xe1000, actual: %#x", dsdt)
	}

	if xdsdt := binary.LittleEndian.Uint64(data[140:148]); xdsdt != 0xE1000 {
		t.Fatalf("expected: 0xe1000, actual: %#x", xdsdt)
	}

	if cks := acpi.Checksum(data); cks != 0 {
		t.Fatalf("expected: 0, actual: %d", cks)
	}
}

func TestFADTWriteToGuest(t *testing.T) {
	t.Parallel()

	fadt, err := acpi.NewFADT("TESTOS", "TESTTABL", 1, 0xE1000)
	if err != nil {
		t.Fatal(err)
	}

	mem := &guestRAM{buf: make([]byte, 0x1000)}
	if err := fadt.WriteToGuest(mem, 0x400); err != nil {
		t.Fatal(err)
	}

	if cks := acpi.Checksum(mem.buf[0x400 : 0x400+276]); cks != 0 {
		t.Fatalf("expected: 0, actual: %d", cks)
	}
}
