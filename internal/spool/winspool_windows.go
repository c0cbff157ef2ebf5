//go:build windows

package spool

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	winspoolDLL = windows.NewLazySystemDLL("winspool.drv")

	enumPrintersProc       = winspoolDLL.NewProc("EnumPrintersW")
	getDefaultPrinterProc  = winspoolDLL.NewProc("GetDefaultPrinterW")
	deviceCapabilitiesProc = winspoolDLL.NewProc("DeviceCapabilitiesW")
)

// EnumPrintersW flags.
const (
	printerEnumLocal       = 0x00000002
	printerEnumConnections = 0x00000004
)

// printerInfo2 mirrors the winspool PRINTER_INFO_2 structure.
// https://learn.microsoft.com/windows/win32/printdocs/printer-info-2
type printerInfo2 struct {
	pServerName         *uint16
	pPrinterName        *uint16
	pShareName          *uint16
	pPortName           *uint16
	pDriverName         *uint16
	pComment            *uint16
	pLocation           *uint16
	pDevMode            uintptr
	pSepFile            *uint16
	pPrintProcessor     *uint16
	pDatatype           *uint16
	pParameters         *uint16
	pSecurityDescriptor uintptr
	attributes          uint32
	priority            uint32
	defaultPriority     uint32
	startTime           uint32
	untilTime           uint32
	status              uint32
	cJobs               uint32
	averagePPM          uint32
}

// PRINTER_INFO_2 attribute bit for shared printers.
const printerAttributeShared = 0x00000008

// winSpooler is the winspool.drv backend.
type winSpooler struct{}

// NewPlatformSpooler returns the native spooler backend for this host.
func NewPlatformSpooler() (Spooler, error) {
	if err := winspoolDLL.Load(); err != nil {
		return nil, fmt.Errorf("load winspool.drv: %w", err)
	}
	return &winSpooler{}, nil
}

func (s *winSpooler) Enumerate(filter string, buf []byte) (int, int, error) {
	var pName *uint16
	if filter != "" {
		var err error
		pName, err = windows.UTF16PtrFromString(filter)
		if err != nil {
			return 0, 0, err
		}
	}

	var pBuf unsafe.Pointer
	if len(buf) > 0 {
		pBuf = unsafe.Pointer(&buf[0])
	}

	var needed, returned uint32
	r1, _, errno := enumPrintersProc.Call(
		uintptr(printerEnumLocal|printerEnumConnections),
		uintptr(unsafe.Pointer(pName)),
		2,
		uintptr(pBuf),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&returned)),
	)
	if r1 == 0 {
		if errno == syscall.Errno(windows.ERROR_INSUFFICIENT_BUFFER) {
			return int(needed), 0, nil
		}
		return 0, 0, fmt.Errorf("EnumPrintersW: %w", errno)
	}
	return int(needed), int(returned), nil
}

func (s *winSpooler) DefaultIdentifier(buf []byte) (int, error) {
	// GetDefaultPrinterW counts in UTF-16 characters, not bytes.
	chars := uint32(len(buf) / 2)
	var pBuf *uint16
	if len(buf) >= 2 {
		pBuf = (*uint16)(unsafe.Pointer(&buf[0]))
	}

	r1, _, errno := getDefaultPrinterProc.Call(
		uintptr(unsafe.Pointer(pBuf)),
		uintptr(unsafe.Pointer(&chars)),
	)
	if r1 == 0 {
		switch errno {
		case syscall.Errno(windows.ERROR_INSUFFICIENT_BUFFER):
			return int(chars) * 2, nil
		case syscall.Errno(windows.ERROR_FILE_NOT_FOUND):
			// No default printer configured.
			return 0, nil
		}
		return 0, fmt.Errorf("GetDefaultPrinterW: %w", errno)
	}
	return int(chars) * 2, nil
}

func (s *winSpooler) QueryCapability(device, port string, kind CapabilityKind, out []byte) (int, error) {
	pDevice, err := windows.UTF16PtrFromString(device)
	if err != nil {
		return 0, err
	}
	pPort, err := windows.UTF16PtrFromString(port)
	if err != nil {
		return 0, err
	}

	var pOut unsafe.Pointer
	if len(out) > 0 {
		pOut = unsafe.Pointer(&out[0])
	}

	r1, _, _ := deviceCapabilitiesProc.Call(
		uintptr(unsafe.Pointer(pDevice)),
		uintptr(unsafe.Pointer(pPort)),
		uintptr(kind),
		uintptr(pOut),
		0,
	)
	return int(int32(r1)), nil
}

func (s *winSpooler) RecordStride() int {
	return int(unsafe.Sizeof(printerInfo2{}))
}

func (s *winSpooler) Record(buf *Buffer, index int) Record {
	data := buf.Bytes()
	info := (*printerInfo2)(unsafe.Pointer(&data[index*s.RecordStride()]))
	return &winRecord{sp: s, info: info}
}

func (s *winSpooler) Codec() TextCodec { return UTF16Codec{} }

// winRecord is a borrowed view over one PRINTER_INFO_2 record inside an
// enumeration buffer.
type winRecord struct {
	sp   *winSpooler
	info *printerInfo2
}

func (r *winRecord) Name() string        { return windows.UTF16PtrToString(r.info.pPrinterName) }
func (r *winRecord) SystemName() string  { return windows.UTF16PtrToString(r.info.pPrinterName) }
func (r *winRecord) DriverModel() string { return windows.UTF16PtrToString(r.info.pDriverName) }
func (r *winRecord) Location() string    { return windows.UTF16PtrToString(r.info.pLocation) }
func (r *winRecord) PortName() string    { return windows.UTF16PtrToString(r.info.pPortName) }
func (r *winRecord) Processor() string   { return windows.UTF16PtrToString(r.info.pPrintProcessor) }
func (r *winRecord) Description() string { return windows.UTF16PtrToString(r.info.pComment) }
func (r *winRecord) DataType() string    { return windows.UTF16PtrToString(r.info.pDatatype) }
func (r *winRecord) State() uint32       { return r.info.status }

// The spooler has no URI notion; IPP-style URIs come from other backends.
func (r *winRecord) URI() string { return "" }

func (r *winRecord) IsShared() bool {
	return r.info.attributes&printerAttributeShared != 0
}

func (r *winRecord) IsDefault() bool {
	name, err := defaultIdentifier(r.sp)
	if err != nil {
		return false
	}
	return name != "" && name == r.SystemName()
}

func (r *winRecord) Capabilities() (Capabilities, error) {
	return probeCapabilities(r.sp, r.SystemName(), r.PortName())
}

func (r *winRecord) BinCount() int {
	caps, err := r.Capabilities()
	if err != nil {
		return 0
	}
	return caps.BinCount
}

func (r *winRecord) BinNames() []string {
	caps, err := r.Capabilities()
	if err != nil {
		return nil
	}
	return caps.BinNames
}
