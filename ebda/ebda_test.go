package ebda_test

import (
	"testing"

	"github.com/hvtool/acpitables/acpi"
	"github.com/hvtool/acpitables/ebda"
)

func TestNewMPFIntel(t *testing.T) {
	t.Parallel()

	m, err := ebda.NewMPFIntel()
	if err != nil {
		t.Fatal(err)
	}

	data, err := m.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != 16 {
		t.Fatalf("expected: 16, actual: %d", len(data))
	}

	if cks := acpi.Checksum(data); cks != 0 {
		t.Fatalf("expected: 0, actual: %d", cks)
	}

	if string(data[:4]) != "_MP_" {
		t.Fatalf("expected: _MP_, actual: %q", data[:4])
	}
}

func TestEBDAToBytes(t *testing.T) {
	t.Parallel()

	e, err := ebda.New()
	if err != nil {
		t.Fatal(err)
	}

	data, err := e.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != 48+16 {
		t.Fatalf("expected: 64, actual: %d", len(data))
	}

	// The MP floating pointer sits on the trailing 16-byte boundary.
	if string(data[48:52]) != "_MP_" {
		t.Fatalf("expected: _MP_, actual: %q", data[48:52])
	}
}
