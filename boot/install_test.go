package boot_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/hvtool/acpitables/acpi"
	"github.com/hvtool/acpitables/boot"
	"github.com/hvtool/acpitables/memory"
)

func newGuestRAM(t *testing.T) *memory.Memory {
	t.Helper()

	mem, err := memory.New(0, 2<<20)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { mem.Close() })

	return mem
}

func readTable(t *testing.T, mem *memory.Memory, addr uint64) []byte {
	t.Helper()

	hdr := make([]byte, acpi.HeaderLen)
	if err := mem.ReadGuest(hdr, addr); err != nil {
		t.Fatal(err)
	}

	length := binary.LittleEndian.Uint32(hdr[4:8])

	table := make([]byte, length)
	if err := mem.ReadGuest(table, addr); err != nil {
		t.Fatal(err)
	}

	return table
}

func TestInstall(t *testing.T) {
	t.Parallel()

	mem := newGuestRAM(t)

	layout, err := boot.Install(mem, boot.Config{NCPUs: 2, MaxCPUs: 4})
	if err != nil {
		t.Fatal(err)
	}

	// The RSDP must point at the XSDT.
	rsdp := make([]byte, acpi.RSDPLen)
	if err := mem.ReadGuest(rsdp, layout.RSDP); err != nil {
		t.Fatal(err)
	}

	if string(rsdp[:8]) != "RSD PTR " {
		t.Fatalf("expected: \"RSD PTR \", actual: %q", rsdp[:8])
	}

	if xsdt := binary.LittleEndian.Uint64(rsdp[24:32]); xsdt != layout.XSDT {
		t.Fatalf("expected: %#x, actual: %#x", layout.XSDT, xsdt)
	}

	// The XSDT must chain FADT and MADT, in that order.
	xsdt := readTable(t, mem, layout.XSDT)
	if string(xsdt[:4]) != "XSDT" {
		t.Fatalf("expected: XSDT, actual: %q", xsdt[:4])
	}

	if len(xsdt) != 36+16 {
		t.Fatalf("expected: 52, actual: %d", len(xsdt))
	}

	if fadt := binary.LittleEndian.Uint64(xsdt[36:44]); fadt != layout.FADT {
		t.Fatalf("expected: %#x, actual: %#x", layout.FADT, fadt)
	}

	if madt := binary.LittleEndian.Uint64(xsdt[44:52]); madt != layout.MADT {
		t.Fatalf("expected: %#x, actual: %#x", layout.MADT, madt)
	}

	// The FADT must reference the DSDT.
	fadt := readTable(t, mem, layout.FADT)
	if dsdt := binary.LittleEndian.Uint32(fadt[40:44]); uint64(dsdt) != layout.DSDT {
		t.Fatalf("expected: %#x, actual: %#x", layout.DSDT, dsdt)
	}

	// Every table must carry a valid checksum.
	for _, addr := range []uint64{layout.DSDT, layout.FADT, layout.MADT, layout.XSDT} {
		table := readTable(t, mem, addr)
		if cks := acpi.Checksum(table); cks != 0 {
			t.Fatalf("table at %#x: expected checksum 0, actual: %d", addr, cks)
		}
	}
}

func TestInstallMADTEntries(t *testing.T) {
	t.Parallel()

	mem := newGuestRAM(t)

	layout, err := boot.Install(mem, boot.Config{NCPUs: 2, MaxCPUs: 4})
	if err != nil {
		t.Fatal(err)
	}

	madt := readTable(t, mem, layout.MADT)

	// 4 local APIC entries and one I/O APIC entry.
	if len(madt) != 44+4*8+12 {
		t.Fatalf("expected: %d, actual: %d", 44+4*8+12, len(madt))
	}

	if lapicAddr := binary.LittleEndian.Uint32(madt[36:40]); lapicAddr != boot.DefaultLAPICAddr {
		t.Fatalf("expected: %#x, actual: %#x", boot.DefaultLAPICAddr, lapicAddr)
	}

	for cpu := 0; cpu < 4; cpu++ {
		entry := madt[44+8*cpu : 44+8*cpu+8]

		if entry[0] != acpi.TypeLocalAPIC || entry[1] != 8 {
			t.Fatalf("bad local apic entry header: %#v", entry[:2])
		}

		if entry[2] != uint8(cpu) || entry[3] != uint8(cpu) {
			t.Fatalf("expected ids %d, actual: %d/%d", cpu, entry[2], entry[3])
		}

		expFlags := acpi.LocalAPICEnabled
		if cpu >= 2 {
			expFlags = acpi.LocalAPICOnlineCapable
		}

		if flags := binary.LittleEndian.Uint32(entry[4:8]); flags != expFlags {
			t.Fatalf("cpu %d: expected flags %#x, actual: %#x", cpu, expFlags, flags)
		}
	}

	ioapic := madt[44+4*8:]

	if ioapic[0] != acpi.TypeIOAPIC || ioapic[1] != 12 {
		t.Fatalf("bad ioapic entry header: %#v", ioapic[:2])
	}

	if addr := binary.LittleEndian.Uint32(ioapic[4:8]); addr != boot.DefaultIOAPICAddr {
		t.Fatalf("expected: %#x, actual: %#x", boot.DefaultIOAPICAddr, addr)
	}

	if gsi := binary.LittleEndian.Uint32(ioapic[8:12]); gsi != 0 {
		t.Fatalf("expected: 0, actual: %d", gsi)
	}
}

func TestInstallTooManyCPUs(t *testing.T) {
	t.Parallel()

	mem := newGuestRAM(t)

	_, err := boot.Install(mem, boot.Config{NCPUs: 300})
	if !errors.Is(err, boot.ErrTooManyCPUs) {
		t.Fatalf("expected: %v, actual: %v", boot.ErrTooManyCPUs, err)
	}
}

func TestInstallRegionTooSmall(t *testing.T) {
	t.Parallel()

	mem := newGuestRAM(t)

	_, err := boot.Install(mem, boot.Config{NCPUs: 1, TablesSize: 64})
	if !errors.Is(err, boot.ErrRegionTooSmall) {
		t.Fatalf("expected: %v, actual: %v", boot.ErrRegionTooSmall, err)
	}
}

func TestInstallVirtioMMIO(t *testing.T) {
	t.Parallel()

	mem := newGuestRAM(t)

	cfg := boot.Config{
		NCPUs: 1,
		VirtioMMIO: []boot.VirtioMMIODevice{
			{Addr: 0xD0000000, Size: 0x200, IRQ: 5},
		},
	}

	layout, err := boot.Install(mem, cfg)
	if err != nil {
		t.Fatal(err)
	}

	dsdt := readTable(t, mem, layout.DSDT)

	if cks := acpi.Checksum(dsdt); cks != 0 {
		t.Fatalf("expected: 0, actual: %d", cks)
	}

	for _, want := range []string{"VIO0", "LNRO0005", "UAR0", "PNP0501", "RTC0"} {
		if !bytes.Contains(dsdt, []byte(want)) {
			t.Fatalf("dsdt missing %q", want)
		}
	}
}
