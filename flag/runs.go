package flag

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/hvtool/acpitables/acpi"
	"github.com/hvtool/acpitables/boot"
	"github.com/hvtool/acpitables/memory"
)

type CLI struct {
	Build BuildCMD `cmd:"" help:"Build ACPI tables into a guest memory image."`
	Dump  DumpCMD  `cmd:"" help:"List and verify the tables in a memory image."`
}

type BuildCMD struct {
	Output     string `help:"Output image path." short:"o" default:"acpi.img"`
	Config     string `help:"YAML topology description." short:"c"`
	NCPUs      int    `help:"Number of CPUs enabled at boot." short:"n" default:"1"`
	MaxCPUs    int    `help:"Total CPUs including hot-pluggable ones."`
	MemSize    string `help:"Guest memory size as number[gGmMkK]." short:"m" default:"16M"`
	CPUProfile bool   `help:"Write a CPU profile to the working directory."`
}

type DumpCMD struct {
	Image  string `arg:"" help:"Memory image file."`
	Tables string `help:"Guest address of the table region." default:"0xe1000"`
	RSDP   string `help:"Guest address of the RSDP." default:"0xe0000"`
}

func Parse() error {
	c := CLI{}

	programName := "acpitables"
	programDesc := "acpitables builds guest firmware description tables into memory images"

	ctx := kong.Parse(&c,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	err := ctx.Run()

	return err
}

func (b *BuildCMD) Run() error {
	if b.CPUProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	memSize, err := ParseSize(b.MemSize, "m")
	if err != nil {
		return err
	}

	cfg := boot.Config{}

	if len(b.Config) > 0 {
		if err := LoadConfig(b.Config, &cfg); err != nil {
			return err
		}
	}

	if cfg.NCPUs == 0 {
		cfg.NCPUs = b.NCPUs
	}

	if cfg.MaxCPUs == 0 {
		cfg.MaxCPUs = b.MaxCPUs
	}

	mem, err := memory.New(0, memSize)
	if err != nil {
		return err
	}
	defer mem.Close()

	layout, err := boot.Install(mem, cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(b.Output, mem.Bytes(), 0o644); err != nil {
		return err
	}

	log.Printf("wrote %s (%d MiB), RSDP at %#x", b.Output, mem.Size()>>20, layout.RSDP)

	return nil
}

func (d *DumpCMD) Run() error {
	data, err := os.ReadFile(d.Image)
	if err != nil {
		return err
	}

	rsdpAddr, err := ParseSize(d.RSDP, "")
	if err != nil {
		return err
	}

	if err := dumpRSDP(data, rsdpAddr); err != nil {
		return err
	}

	tablesAddr, err := ParseSize(d.Tables, "")
	if err != nil {
		return err
	}

	return dumpTables(data, tablesAddr)
}

func dumpRSDP(data []byte, addr int) error {
	if addr+int(acpi.RSDPLen) > len(data) {
		return fmt.Errorf("rsdp at %#x: %w", addr, memory.ErrOutOfRange)
	}

	rsdp := data[addr : addr+int(acpi.RSDPLen)]
	if string(rsdp[:8]) != "RSD PTR " {
		return fmt.Errorf("no RSDP signature at %#x", addr)
	}

	xsdt := binary.LittleEndian.Uint64(rsdp[24:32])

	log.Printf("RSDP at %#x, checksum %s, XSDT at %#x",
		addr, checkMark(rsdp), xsdt)

	return nil
}

func dumpTables(data []byte, addr int) error {
	for addr+acpi.HeaderLen <= len(data) {
		hdr := data[addr : addr+acpi.HeaderLen]
		if hdr[0] == 0 {
			break
		}

		length := int(binary.LittleEndian.Uint32(hdr[4:8]))
		if length < acpi.HeaderLen || addr+length > len(data) {
			return fmt.Errorf("table %q at %#x has bad length %d",
				hdr[:4], addr, length)
		}

		log.Printf("%s: %d bytes at %#x, rev %d, checksum %s",
			hdr[:4], length, addr, hdr[8], checkMark(data[addr:addr+length]))

		// Tables are placed on 8-byte boundaries.
		addr += (length + 7) &^ 7
	}

	return nil
}

func checkMark(table []byte) string {
	if acpi.Checksum(table) == 0 {
		return "ok"
	}

	return "BAD"
}
