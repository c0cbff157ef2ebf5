// Package registry assigns stable IDs and custom names to discovered
// printers, persisted as JSON so identities survive restarts.
package registry

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Source identifies which discovery mechanism produced a printer.
const (
	SourceSpool  = "spool"
	SourceUSB    = "usb"
	SourceSerial = "serial"
)

// Registry maps printer identities to stable IDs and user-set names.
type Registry struct {
	filePath string
	data     map[string]*Entry
	log      zerolog.Logger
	mu       sync.RWMutex
}

// Entry is the persisted record for one printer identity.
type Entry struct {
	ID          string `json:"id"`
	IdentityKey string `json:"identity_key"`
	Source      string `json:"source"`
	SystemName  string `json:"system_name,omitempty"`
	Driver      string `json:"driver,omitempty"`
	PortName    string `json:"port_name,omitempty"`
	Location    string `json:"location,omitempty"`
	VID         uint16 `json:"vid,omitempty"`
	PID         uint16 `json:"pid,omitempty"`
	Device      string `json:"device,omitempty"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"` // custom user-set name
}

// Identity carries the fields that make a discovered printer recognizable
// across scans.
type Identity struct {
	Source      string
	SystemName  string
	Driver      string
	PortName    string
	Location    string
	VID         uint16
	PID         uint16
	Device      string
	Description string
}

// New loads or creates a registry backed by filePath.
func New(filePath string, log zerolog.Logger) (*Registry, error) {
	r := &Registry{
		filePath: filePath,
		data:     make(map[string]*Entry),
		log:      log.With().Str("component", "registry").Logger(),
	}

	if err := r.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load registry: %w", err)
		}
	}

	return r, nil
}

// ID returns the stable ID for an identity, minting and persisting a new
// one on first sight.
func (r *Registry) ID(ident Identity) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey(ident)
	if entry, exists := r.data[key]; exists {
		return entry.ID
	}

	entry := &Entry{
		ID:          uuid.New().String(),
		IdentityKey: key,
		Source:      ident.Source,
		SystemName:  ident.SystemName,
		Driver:      ident.Driver,
		PortName:    ident.PortName,
		Location:    ident.Location,
		VID:         ident.VID,
		PID:         ident.PID,
		Device:      ident.Device,
		Description: ident.Description,
	}
	r.data[key] = entry

	if err := r.save(); err != nil {
		r.log.Warn().Err(err).Msg("failed to persist registry")
	}

	return entry.ID
}

// Name returns the custom name for a printer, or "" if none was set.
func (r *Registry) Name(printerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry := r.byID(printerID); entry != nil {
		return entry.Name
	}
	return ""
}

// SetName stores a custom name; it reports false for unknown IDs.
func (r *Registry) SetName(printerID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.byID(printerID)
	if entry == nil {
		return false
	}
	entry.Name = name
	if err := r.save(); err != nil {
		r.log.Warn().Err(err).Msg("failed to persist registry")
	}
	return true
}

// Get returns a copy of the entry for printerID, or nil.
func (r *Registry) Get(printerID string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry := r.byID(printerID); entry != nil {
		cp := *entry
		return &cp
	}
	return nil
}

// Remove deletes a printer from the registry.
func (r *Registry) Remove(printerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.data {
		if entry.ID == printerID {
			delete(r.data, key)
			if err := r.save(); err != nil {
				r.log.Warn().Err(err).Msg("failed to persist registry")
			}
			return true
		}
	}
	return false
}

// All returns a copy of every entry.
func (r *Registry) All() map[string]*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Entry, len(r.data))
	for k, v := range r.data {
		cp := *v
		result[k] = &cp
	}
	return result
}

func (r *Registry) byID(printerID string) *Entry {
	for _, entry := range r.data {
		if entry.ID == printerID {
			return entry
		}
	}
	return nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &r.data)
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.filePath, data, 0o644)
}

// identityKey derives the lookup key for an identity. Spooler printers are
// keyed by their system name, which the spooler keeps unique per host.
func identityKey(ident Identity) string {
	switch ident.Source {
	case SourceSpool:
		if ident.SystemName != "" {
			return fmt.Sprintf("spool:%s", ident.SystemName)
		}
	case SourceUSB:
		if ident.VID != 0 && ident.PID != 0 {
			return fmt.Sprintf("usb:%04X:%04X", ident.VID, ident.PID)
		}
	case SourceSerial:
		if ident.Device != "" {
			return fmt.Sprintf("serial:%s", ident.Device)
		}
	}

	hash := md5.Sum([]byte(ident.Description))
	return fmt.Sprintf("hash:%x", hash)
}
