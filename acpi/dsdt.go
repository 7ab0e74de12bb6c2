package acpi

// DSDT wraps an AML stream describing the platform devices. The AML
// bytes are taken as-is; the table only frames and checksums them.
type DSDT struct {
	header Header
	aml    []byte
}

func NewDSDT(oemID, oemTableID string, oemRev uint32, aml *AML) (*DSDT, error) {
	body := aml.ToBytes()
	length := mustLength(HeaderLen + len(body))

	d := &DSDT{
		header: newHeader(SigDSDT, length, 2, oemID, oemTableID, oemRev),
		aml:    body,
	}

	hdr, err := d.header.ToBytes()
	if err != nil {
		return nil, err
	}

	d.header.Checksum = Checksum(hdr, d.aml)

	return d, nil
}

func (d *DSDT) Len() uint32 {
	return d.header.Length
}

func (d *DSDT) WriteToGuest(mem GuestMemory, addr uint64) error {
	hdr, err := d.header.ToBytes()
	if err != nil {
		return err
	}

	return writeTable(mem, addr, hdr, d.aml)
}
