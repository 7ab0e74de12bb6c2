package acpi

type Signature string

func (s Signature) ToBytes() [4]byte {
	var ret [4]byte

	copy(ret[:], s)

	return ret
}

const (
	SigAPIC Signature = "APIC"
	SigBERT Signature = "BERT"
	SigBGRT Signature = "BGRT"
	SigDSDT Signature = "DSDT"
	SigFACP Signature = "FACP"
	SigFACS Signature = "FACS"
	SigHPET Signature = "HPET"
	SigMCFG Signature = "MCFG"
	SigRSDT Signature = "RSDT"
	SigSPCR Signature = "SPCR"
	SigSRAT Signature = "SRAT"
	SigSSDT Signature = "SSDT"
	SigVIOT Signature = "VIOT"
	SigWAET Signature = "WAET"
	SigXSDT Signature = "XSDT"
)
