package spool

// Record is a borrowed view over one enumerated printer. Identity getters
// read directly out of the enumeration buffer and are only valid until the
// owning Listing is closed. Capability getters re-run the capability probe
// against the spooler on every call; callers that need capabilities more
// than once should hold on to the Capabilities value themselves.
type Record interface {
	Name() string
	IsDefault() bool
	SystemName() string
	DriverModel() string
	IsShared() bool
	URI() string
	Location() string
	State() uint32
	PortName() string
	Processor() string
	Description() string
	DataType() string

	// BinCount reports the number of paper bins, zero when the device
	// does not support the query.
	BinCount() int

	// BinNames reports decoded bin names, empty when unavailable.
	BinNames() []string

	// Capabilities runs the full bin probe.
	Capabilities() (Capabilities, error)
}

// PrinterInfo is an owned snapshot of a Record, safe to keep after the
// listing it came from is closed.
type PrinterInfo struct {
	Name        string       `json:"name"`
	IsDefault   bool         `json:"is_default"`
	SystemName  string       `json:"system_name"`
	DriverModel string       `json:"driver_model"`
	IsShared    bool         `json:"is_shared"`
	URI         string       `json:"uri,omitempty"`
	Location    string       `json:"location,omitempty"`
	State       uint32       `json:"state"`
	PortName    string       `json:"port_name"`
	Processor   string       `json:"processor,omitempty"`
	Description string       `json:"description,omitempty"`
	DataType    string       `json:"data_type,omitempty"`
	Caps        Capabilities `json:"capabilities"`
}

// snapshotRecord copies every identity field out of a borrowed record and
// probes its capabilities once.
func snapshotRecord(rec Record, isDefault bool) PrinterInfo {
	caps, err := rec.Capabilities()
	if err != nil {
		// Capability degradations are absorbed; an unstable probe
		// leaves the identity snapshot intact with empty capabilities.
		caps = Capabilities{}
	}
	return PrinterInfo{
		Name:        rec.Name(),
		IsDefault:   isDefault,
		SystemName:  rec.SystemName(),
		DriverModel: rec.DriverModel(),
		IsShared:    rec.IsShared(),
		URI:         rec.URI(),
		Location:    rec.Location(),
		State:       rec.State(),
		PortName:    rec.PortName(),
		Processor:   rec.Processor(),
		Description: rec.Description(),
		DataType:    rec.DataType(),
		Caps:        caps,
	}
}
