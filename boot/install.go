package boot

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/hvtool/acpitables/acpi"
	"github.com/hvtool/acpitables/ebda"
)

const tableAlign = 8

// maxCPUs is bounded by the width of the local APIC processor ID.
const maxCPUs = 256

var (
	// ErrTooManyCPUs means the topology needs more local APIC IDs
	// than the 8-bit entry field can hold.
	ErrTooManyCPUs = errors.New("more CPUs than local APIC IDs")

	// ErrRegionTooSmall means the finalized tables do not fit the
	// reserved guest memory region.
	ErrRegionTooSmall = errors.New("acpi tables do not fit the reserved region")

	// ErrTooManyVirtioDevices means the DSDT cannot name another
	// virtio-mmio device with a single digit suffix.
	ErrTooManyVirtioDevices = errors.New("too many virtio-mmio devices")
)

// Layout records where Install placed each table in guest memory.
type Layout struct {
	DSDT uint64
	FADT uint64
	MADT uint64
	XSDT uint64
	RSDP uint64
	EBDA uint64
}

// Install builds the table set described by cfg and writes it into
// guest memory. Tables are placed consecutively, 8-byte aligned,
// starting at cfg.TablesAddr; the RSDP goes to cfg.RSDPAddr and chains
// the rest through the XSDT. Any failure aborts the installation with
// the destination region in an undefined state.
func Install(mem acpi.GuestMemory, cfg Config) (*Layout, error) {
	cfg.Normalize()

	if cfg.MaxCPUs > maxCPUs {
		return nil, fmt.Errorf("%d cpus: %w", cfg.MaxCPUs, ErrTooManyCPUs)
	}

	layout := &Layout{}
	next := cfg.TablesAddr
	end := cfg.TablesAddr + cfg.TablesSize

	place := func(table acpi.SDT) (uint64, error) {
		addr := next

		if addr+uint64(table.Len()) > end {
			return 0, fmt.Errorf("%#x+%d: %w", addr, table.Len(), ErrRegionTooSmall)
		}

		if err := table.WriteToGuest(mem, addr); err != nil {
			return 0, err
		}

		next = align(addr+uint64(table.Len()), tableAlign)

		return addr, nil
	}

	dsdt, err := buildDSDT(cfg)
	if err != nil {
		return nil, err
	}

	if layout.DSDT, err = place(dsdt); err != nil {
		return nil, err
	}

	fadt, err := acpi.NewFADT(cfg.OEMID, cfg.OEMTableID, cfg.OEMRev, layout.DSDT)
	if err != nil {
		return nil, err
	}

	if layout.FADT, err = place(fadt); err != nil {
		return nil, err
	}

	entries, err := madtEntries(cfg)
	if err != nil {
		return nil, err
	}

	madt, err := acpi.NewMADT(cfg.OEMID, cfg.OEMTableID, cfg.OEMRev, cfg.LAPICAddr, entries)
	if err != nil {
		return nil, err
	}

	if layout.MADT, err = place(madt); err != nil {
		return nil, err
	}

	xsdt, err := acpi.NewXSDT(cfg.OEMID, cfg.OEMTableID, cfg.OEMRev,
		[]uint64{layout.FADT, layout.MADT})
	if err != nil {
		return nil, err
	}

	if layout.XSDT, err = place(xsdt); err != nil {
		return nil, err
	}

	rsdp, err := acpi.NewRSDP(cfg.OEMID, layout.XSDT)
	if err != nil {
		return nil, err
	}

	if err := rsdp.WriteToGuest(mem, cfg.RSDPAddr); err != nil {
		return nil, err
	}

	layout.RSDP = cfg.RSDPAddr

	// Guests that predate ACPI discovery scan the EBDA for the MP
	// floating pointer, so keep one around as well.
	e, err := ebda.New()
	if err != nil {
		return nil, err
	}

	if err := e.WriteToGuest(mem); err != nil {
		return nil, err
	}

	layout.EBDA = ebda.Start

	log.Printf("acpi: DSDT %d bytes at %#x", dsdt.Len(), layout.DSDT)
	log.Printf("acpi: FADT %d bytes at %#x", fadt.Len(), layout.FADT)
	log.Printf("acpi: MADT %d bytes at %#x", madt.Len(), layout.MADT)
	log.Printf("acpi: XSDT %d bytes at %#x", xsdt.Len(), layout.XSDT)
	log.Printf("acpi: RSDP %d bytes at %#x", rsdp.Len(), layout.RSDP)

	return layout, nil
}

func align(addr, boundary uint64) uint64 {
	return (addr + boundary - 1) &^ (boundary - 1)
}

// madtEntries serializes one local APIC entry per CPU followed by the
// single I/O APIC entry. CPUs past the boot set are only online-capable.
func madtEntries(cfg Config) ([]byte, error) {
	var buf bytes.Buffer

	for cpu := 0; cpu < cfg.MaxCPUs; cpu++ {
		lapic := acpi.NewLocalAPIC(uint8(cpu), cpu >= cfg.NCPUs)

		data, err := lapic.ToBytes()
		if err != nil {
			return nil, err
		}

		buf.Write(data)
	}

	ioapic := acpi.NewIOAPIC(cfg.IOAPICId, cfg.IOAPICAddr)

	data, err := ioapic.ToBytes()
	if err != nil {
		return nil, err
	}

	buf.Write(data)

	return buf.Bytes(), nil
}

// buildDSDT describes the fixed platform devices (COM1 and the RTC)
// plus any configured virtio-mmio transports.
func buildDSDT(cfg Config) (*acpi.DSDT, error) {
	if len(cfg.VirtioMMIO) > 10 {
		return nil, ErrTooManyVirtioDevices
	}

	devices := acpi.NewAML()

	devices.Device("UAR0", acpi.NewAML().
		Name("_HID", acpi.NewAML().String("PNP0501")).
		Name("_UID", acpi.NewAML().Bytes(0)).
		Name("_CRS", acpi.NewAML().ResourceTemplate(acpi.NewAML().
			IO(0x3F8, 0x3F8, 0x0, 0x8).
			IRQNoFlags(4))))

	devices.Device("RTC0", acpi.NewAML().
		Name("_HID", acpi.NewAML().String("PNP0B00")).
		Name("_CRS", acpi.NewAML().ResourceTemplate(acpi.NewAML().
			IO(0x70, 0x70, 0x0, 0x2).
			IRQNoFlags(8))))

	for i, dev := range cfg.VirtioMMIO {
		devices.Device(fmt.Sprintf("VIO%d", i), acpi.NewAML().
			Name("_HID", acpi.NewAML().String("LNRO0005")).
			Name("_UID", acpi.NewAML().Bytes(uint8(i))).
			Name("_CRS", acpi.NewAML().ResourceTemplate(acpi.NewAML().
				Memory32Fixed(uint32(dev.Addr), dev.Size, true).
				Interrupt(true, false, false, false, dev.IRQ))))
	}

	aml := acpi.NewAML()
	aml.Scope("\\_SB_", devices)

	return acpi.NewDSDT(cfg.OEMID, cfg.OEMTableID, cfg.OEMRev, aml)
}
