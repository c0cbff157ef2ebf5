// Package discover merges printer discovery sources - the OS print spooler
// where one exists, plus directly attached USB and serial hardware - into a
// single directory keyed by stable registry IDs.
package discover

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/thereceipt/printer-directory/internal/registry"
	"github.com/thereceipt/printer-directory/internal/spool"
)

// Printer is one discovered printing device, owned by the caller.
type Printer struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Description string             `json:"description"`
	Name        string             `json:"name,omitempty"`
	VID         uint16             `json:"vid,omitempty"`
	PID         uint16             `json:"pid,omitempty"`
	Device      string             `json:"device,omitempty"`
	Spool       *spool.PrinterInfo `json:"spool,omitempty"`
}

// Source is one discovery mechanism.
type Source interface {
	// Name labels the source in logs and printer records.
	Name() string

	// Scan produces the printers currently visible to this source.
	// Scans are synchronous and produce owned values.
	Scan() ([]Printer, error)
}

// Manager runs all configured sources and maintains the merged view.
type Manager struct {
	sources  []Source
	registry *registry.Registry
	dir      *spool.Directory // nil on hosts without a spooler
	log      zerolog.Logger

	printers map[string]*Printer
	mu       sync.RWMutex

	onAdded   func(*Printer)
	onRemoved func(string)
}

// NewManager builds a manager over the given sources. dir may be nil when
// the host has no spooler; capability queries then report no bins.
func NewManager(reg *registry.Registry, dir *spool.Directory, sources []Source, log zerolog.Logger) *Manager {
	return &Manager{
		sources:  sources,
		registry: reg,
		dir:      dir,
		log:      log.With().Str("component", "discover").Logger(),
		printers: make(map[string]*Printer),
	}
}

// Detect runs every source and replaces the merged view. A failing source
// is logged and skipped; the scan still yields the others' results.
func (m *Manager) Detect() ([]Printer, error) {
	var found []Printer
	for _, src := range m.sources {
		printers, err := src.Scan()
		if err != nil {
			m.log.Warn().Err(err).Str("source", src.Name()).Msg("discovery scan failed")
			continue
		}
		found = append(found, printers...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.printers = make(map[string]*Printer, len(found))
	for i := range found {
		p := found[i]
		p.Name = m.registry.Name(p.ID)
		m.printers[p.ID] = &p
	}

	result := make([]Printer, 0, len(m.printers))
	for _, p := range m.printers {
		result = append(result, *p)
	}
	return result, nil
}

// Get returns a printer by ID, or nil.
func (m *Manager) Get(id string) *Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.printers[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// All returns every currently known printer.
func (m *Manager) All() []Printer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Printer, 0, len(m.printers))
	for _, p := range m.printers {
		result = append(result, *p)
	}
	return result
}

// Default returns the host default printer, or nil when none is
// configured or the host has no spooler.
func (m *Manager) Default() (*Printer, error) {
	if m.dir == nil {
		return nil, nil
	}

	name, err := m.dir.DefaultIdentifier()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.printers {
		if p.Spool != nil && p.Spool.SystemName == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// Capabilities re-probes the bin capabilities of a printer. Direct-attach
// sources have no capability channel and report no bins.
func (m *Manager) Capabilities(id string) (spool.Capabilities, error) {
	p := m.Get(id)
	if p == nil {
		return spool.Capabilities{}, fmt.Errorf("printer not found: %s", id)
	}
	if p.Spool == nil || m.dir == nil {
		return spool.Capabilities{}, nil
	}

	infos, err := m.dir.Snapshot(p.Spool.SystemName)
	if err != nil {
		return spool.Capabilities{}, err
	}
	if len(infos) == 0 {
		return spool.Capabilities{}, nil
	}
	return infos[0].Caps, nil
}

// SetName stores a custom printer name.
func (m *Manager) SetName(id, name string) bool {
	if !m.registry.SetName(id, name) {
		return false
	}

	m.mu.Lock()
	if p, ok := m.printers[id]; ok {
		p.Name = name
	}
	m.mu.Unlock()
	return true
}

// OnAdded registers the callback fired when a rescan finds a new printer.
func (m *Manager) OnAdded(fn func(*Printer)) { m.onAdded = fn }

// OnRemoved registers the callback fired when a printer disappears.
func (m *Manager) OnRemoved(fn func(string)) { m.onRemoved = fn }
