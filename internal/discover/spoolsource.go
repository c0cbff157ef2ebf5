package discover

import (
	"fmt"

	"github.com/thereceipt/printer-directory/internal/registry"
	"github.com/thereceipt/printer-directory/internal/spool"
)

// SpoolSource discovers printers through the OS print spooler directory.
type SpoolSource struct {
	dir *spool.Directory
	reg *registry.Registry
}

// NewSpoolSource wraps a spooler directory as a discovery source.
func NewSpoolSource(dir *spool.Directory, reg *registry.Registry) *SpoolSource {
	return &SpoolSource{dir: dir, reg: reg}
}

func (s *SpoolSource) Name() string { return registry.SourceSpool }

// Scan snapshots the spooler directory. Identity strings and capabilities
// are copied out of the enumeration buffer before it is released, so the
// returned printers stay valid indefinitely.
func (s *SpoolSource) Scan() ([]Printer, error) {
	infos, err := s.dir.Snapshot("")
	if err != nil {
		return nil, err
	}

	printers := make([]Printer, 0, len(infos))
	for i := range infos {
		info := infos[i]
		id := s.reg.ID(registry.Identity{
			Source:      registry.SourceSpool,
			SystemName:  info.SystemName,
			Driver:      info.DriverModel,
			PortName:    info.PortName,
			Location:    info.Location,
			Description: describeSpool(info),
		})
		printers = append(printers, Printer{
			ID:          id,
			Source:      registry.SourceSpool,
			Description: describeSpool(info),
			Spool:       &info,
		})
	}
	return printers, nil
}

func describeSpool(info spool.PrinterInfo) string {
	if info.DriverModel != "" {
		return fmt.Sprintf("Spooler: %s (%s)", info.Name, info.DriverModel)
	}
	return fmt.Sprintf("Spooler: %s", info.Name)
}
