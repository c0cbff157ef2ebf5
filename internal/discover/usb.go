package discover

import (
	"fmt"

	"github.com/google/gousb"

	"github.com/thereceipt/printer-directory/internal/registry"
)

// USBSource discovers directly attached USB printer-class devices that the
// spooler may not list (raw ESC/POS hardware and the like).
type USBSource struct {
	reg *registry.Registry
}

// NewUSBSource returns a libusb-backed discovery source.
func NewUSBSource(reg *registry.Registry) *USBSource {
	return &USBSource{reg: reg}
}

func (s *USBSource) Name() string { return registry.SourceUSB }

// Scan opens every USB device and keeps the ones exposing a printer-class
// interface (class 7).
func (s *USBSource) Scan() ([]Printer, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return true // class check needs the full descriptor tree
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate USB devices: %w", err)
	}

	var printers []Printer
	for _, dev := range devices {
		desc := dev.Desc
		if !isPrinterClass(desc) {
			dev.Close()
			continue
		}

		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()

		description := fmt.Sprintf("USB: %04X:%04X", uint16(desc.Vendor), uint16(desc.Product))
		if manufacturer != "" || product != "" {
			description = fmt.Sprintf("USB: %s %s (%04X:%04X)",
				manufacturer, product, uint16(desc.Vendor), uint16(desc.Product))
		}

		id := s.reg.ID(registry.Identity{
			Source:      registry.SourceUSB,
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
			Description: description,
		})

		printers = append(printers, Printer{
			ID:          id,
			Source:      registry.SourceUSB,
			Description: description,
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
		})
		dev.Close()
	}

	return printers, nil
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}
