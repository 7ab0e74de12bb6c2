package boot

// x86 defaults used when a Config field is left zero.
const (
	DefaultLAPICAddr  uint32 = 0xFEE00000
	DefaultIOAPICAddr uint32 = 0xFEC00000

	// The RSDP lives in the BIOS extended data window; the tables
	// follow right behind it.
	DefaultRSDPAddr   uint64 = 0xE0000
	DefaultTablesAddr uint64 = 0xE1000
	DefaultTablesSize uint64 = 0x10000
)

// Config describes the virtual hardware the ACPI tables advertise and
// where in guest memory they are placed. All addresses are guest
// physical.
type Config struct {
	// NCPUs is the number of CPUs enabled at boot. CPUs between NCPUs
	// and MaxCPUs are reported online-capable so the guest can bring
	// them up later.
	NCPUs   int `yaml:"cpus"`
	MaxCPUs int `yaml:"max_cpus"`

	LAPICAddr  uint32 `yaml:"lapic_addr"`
	IOAPICId   uint8  `yaml:"ioapic_id"`
	IOAPICAddr uint32 `yaml:"ioapic_addr"`

	TablesAddr uint64 `yaml:"tables_addr"`
	TablesSize uint64 `yaml:"tables_size"`
	RSDPAddr   uint64 `yaml:"rsdp_addr"`

	OEMID      string `yaml:"oem_id"`
	OEMTableID string `yaml:"oem_table_id"`
	OEMRev     uint32 `yaml:"oem_rev"`

	VirtioMMIO []VirtioMMIODevice `yaml:"virtio_mmio"`
}

// VirtioMMIODevice describes one virtio-mmio transport window announced
// through the DSDT.
type VirtioMMIODevice struct {
	Addr uint64 `yaml:"addr"`
	Size uint32 `yaml:"size"`
	IRQ  uint32 `yaml:"irq"`
}

// Normalize fills zero fields with the x86 defaults.
func (c *Config) Normalize() {
	if c.NCPUs <= 0 {
		c.NCPUs = 1
	}

	if c.MaxCPUs < c.NCPUs {
		c.MaxCPUs = c.NCPUs
	}

	if c.LAPICAddr == 0 {
		c.LAPICAddr = DefaultLAPICAddr
	}

	if c.IOAPICAddr == 0 {
		c.IOAPICAddr = DefaultIOAPICAddr
	}

	if c.TablesAddr == 0 {
		c.TablesAddr = DefaultTablesAddr
	}

	if c.TablesSize == 0 {
		c.TablesSize = DefaultTablesSize
	}

	if c.RSDPAddr == 0 {
		c.RSDPAddr = DefaultRSDPAddr
	}

	if c.OEMID == "" {
		c.OEMID = "HVTOOL"
	}

	if c.OEMTableID == "" {
		c.OEMTableID = "ACPITBLS"
	}

	if c.OEMRev == 0 {
		c.OEMRev = 1
	}
}
