package acpi

import (
	"bytes"
	"encoding/binary"
	"math"
)

type FADTFeatureFlag uint32

const (
	WBINVD FADTFeatureFlag = 1 << iota
	WBINVDFlush
	ProcC1
	PLvL2Up
	PwrButton
	SleepButton
	FixRTC
	RTCS4
	TmrValExt
	DCKCap
	ResetRegSup
	SealedCase
	Headless
	CPUSwSleep
	PCIExpWak
	UsePlatformClock
	S4RTCSTSValid
	RemotePowerOnCapable
	ForceAPICClusterModel
	ForceAPICPhysicalDestMode
	HwReducedACPI
	LowPowerS0IdleCapable
)

// IAPC_BOOT_ARCH bits advertised to the guest.
const (
	IAPCLegacyDevices uint16 = 1 << 0
	IAPC8042          uint16 = 1 << 1
)

const (
	fadtRevision = 6
	fadtLen      = 276
)

// FADT is the Fixed ACPI Description Table, revision 6 layout. Most of
// the PM block fields stay zero: the platform is hardware-reduced and
// only advertises the DSDT, the SCI interrupt and a port 0xCF9 reset.
type FADT struct {
	Header
	FirmwareCTRL  uint32
	DSDTAddr      uint32
	_             uint8
	PrefPMProfile uint8
	SCIInt        uint16
	SMICmd        uint32
	ACPIEnable    uint8
	ACPIDisable   uint8
	S4BIOSReq     uint8
	PStateCnt     uint8
	PM1aEvtBlk    uint32
	PM1bEvtBlk    uint32
	PM1aCntBlk    uint32
	PM1bCntBlk    uint32
	PM2CntBlk     uint32
	PMTmrBlk      uint32
	GPE0Blk       uint32
	GPE1Blk       uint32
	PM1EvtLen     uint8
	PM1CntLen     uint8
	PM2CntLen     uint8
	PMTmrLen      uint8
	GPE0BlkLen    uint8
	GPE1BlkLen    uint8
	GPE1Base      uint8
	CstCnt        uint8
	PLvL2Lat      uint16
	PLvL3Lat      uint16
	FlushSize     uint16
	FlushStride   uint16
	DutyOffset    uint8
	DutyWidth     uint8
	DayALRM       uint8
	MonALRM       uint8
	Century       uint8
	IAPCBootArch  uint16
	_             uint8
	FADTFeatureFlag
	ResetReg      [12]uint8
	ResetValue    uint8
	ARMBootArch   uint16
	MinorVersion  uint8
	XFirmwareCntl uint64
	XDSDT         uint64
	XPM1aEvtBlk   [12]uint8
	XPM1bEvtBlk   [12]uint8
	XPM1aCntBlk   [12]uint8
	XPM1bCntBlk   [12]uint8
	XPM2CntBlk    [12]uint8
	XPMTmrBlk     [12]uint8
	XGPE0Blk      [12]uint8
	XGPE1Blk      [12]uint8
	SleepCtlReg   [12]uint8
	SleepStatReg  [12]uint8
	HyperVendorID [8]uint8
}

// NewFADT finalizes a FADT referencing the DSDT at dsdtAddr. The legacy
// 32-bit DSDT pointer is filled only when the address fits.
func NewFADT(oemID, oemTableID string, oemRev uint32, dsdtAddr uint64) (*FADT, error) {
	f := &FADT{
		Header:          newHeader(SigFACP, fadtLen, fadtRevision, oemID, oemTableID, oemRev),
		PrefPMProfile:   1, // desktop
		SCIInt:          9,
		IAPCBootArch:    IAPCLegacyDevices | IAPC8042,
		FADTFeatureFlag: HwReducedACPI,
		// Reset via a byte write of ResetValue to I/O port 0xCF9.
		ResetReg:     [12]uint8{0x01, 0x08, 0x00, 0x00, 0xF9, 0x0C},
		ResetValue:   6,
		MinorVersion: 1,
		XDSDT:        dsdtAddr,
	}

	if dsdtAddr <= math.MaxUint32 {
		f.DSDTAddr = uint32(dsdtAddr)
	}

	data, err := f.ToBytes()
	if err != nil {
		return nil, err
	}

	f.Header.Checksum = Checksum(data)

	return f, nil
}

func (f *FADT) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (f *FADT) Len() uint32 {
	return f.Header.Length
}

func (f *FADT) WriteToGuest(mem GuestMemory, addr uint64) error {
	data, err := f.ToBytes()
	if err != nil {
		return err
	}

	return writeTable(mem, addr, data[:HeaderLen], data[HeaderLen:])
}
