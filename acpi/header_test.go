package acpi_test

import (
	"testing"

	"github.com/hvtool/acpitables/acpi"
)

func TestHeaderToBytes(t *testing.T) {
	t.Parallel()

	h := acpi.Header{
		Signature: acpi.SigAPIC.ToBytes(),
		Length:    64,
		Rev:       6,
	}

	data, err := h.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != acpi.HeaderLen {
		t.Fatalf("expected: %d, actual: %d", acpi.HeaderLen, len(data))
	}

	if string(data[:4]) != "APIC" {
		t.Fatalf("expected: APIC, actual: %q", data[:4])
	}
}

func TestSignatureToBytes(t *testing.T) {
	t.Parallel()

	sig := acpi.SigFACP.ToBytes()

	if string(sig[:]) != "FACP" {
		t.Fatalf("expected: FACP, actual: %q", sig[:])
	}
}
