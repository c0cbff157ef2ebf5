package discover

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tarm/serial"

	"github.com/thereceipt/printer-directory/internal/registry"
)

// SerialSource discovers serial ports that could carry a printer. Ports
// are probed with a brief open to weed out stale device nodes.
type SerialSource struct {
	reg *registry.Registry
}

// NewSerialSource returns a serial-port discovery source.
func NewSerialSource(reg *registry.Registry) *SerialSource {
	return &SerialSource{reg: reg}
}

func (s *SerialSource) Name() string { return registry.SourceSerial }

func (s *SerialSource) Scan() ([]Printer, error) {
	var printers []Printer
	for _, portPath := range candidatePorts() {
		cfg := &serial.Config{Name: portPath, Baud: 9600}
		port, err := serial.OpenPort(cfg)
		if err != nil {
			continue
		}
		port.Close()

		description := fmt.Sprintf("Serial: %s", filepath.Base(portPath))
		id := s.reg.ID(registry.Identity{
			Source:      registry.SourceSerial,
			Device:      portPath,
			Description: description,
		})

		printers = append(printers, Printer{
			ID:          id,
			Source:      registry.SourceSerial,
			Description: description,
			Device:      portPath,
		})
	}
	return printers, nil
}

func candidatePorts() []string {
	var ports []string

	switch runtime.GOOS {
	case "darwin":
		skipPatterns := []string{"Bluetooth", "Modem", "SPP", "DialIn", "Callout", "KeySerial", "debug-console"}

		cuPorts, _ := filepath.Glob("/dev/cu.*")
		ttyPorts, _ := filepath.Glob("/dev/tty.*")
		for _, port := range append(cuPorts, ttyPorts...) {
			skip := false
			for _, pattern := range skipPatterns {
				if strings.Contains(port, pattern) {
					skip = true
					break
				}
			}
			if !skip {
				ports = append(ports, port)
			}
		}

	case "linux":
		usbPorts, _ := filepath.Glob("/dev/ttyUSB*")
		acmPorts, _ := filepath.Glob("/dev/ttyACM*")
		ports = append(ports, usbPorts...)
		ports = append(ports, acmPorts...)

	case "windows":
		for i := 1; i <= 256; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	}

	return ports
}
