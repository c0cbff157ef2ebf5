package discover

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereceipt/printer-directory/internal/registry"
	"github.com/thereceipt/printer-directory/internal/spool"
)

// scriptedSource returns a fixed printer set, or an error.
type scriptedSource struct {
	name     string
	printers []Printer
	err      error
}

func (s *scriptedSource) Name() string { return s.name }

func (s *scriptedSource) Scan() ([]Printer, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Printer, len(s.printers))
	copy(out, s.printers)
	return out, nil
}

func newTestManager(t *testing.T, sources ...Source) (*Manager, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(filepath.Join(t.TempDir(), "registry.json"), zerolog.Nop())
	require.NoError(t, err)
	return NewManager(reg, nil, sources, zerolog.Nop()), reg
}

func TestManager_DetectMergesSources(t *testing.T) {
	usb := &scriptedSource{name: "usb", printers: []Printer{
		{ID: "u1", Source: registry.SourceUSB, Description: "USB: Epson (04B8:0E15)"},
	}}
	ser := &scriptedSource{name: "serial", printers: []Printer{
		{ID: "s1", Source: registry.SourceSerial, Description: "Serial: ttyUSB0", Device: "/dev/ttyUSB0"},
	}}

	m, _ := newTestManager(t, usb, ser)

	printers, err := m.Detect()
	require.NoError(t, err)
	assert.Len(t, printers, 2)

	require.NotNil(t, m.Get("u1"))
	require.NotNil(t, m.Get("s1"))
	assert.Nil(t, m.Get("nope"))
	assert.Len(t, m.All(), 2)
}

func TestManager_DetectSkipsFailingSource(t *testing.T) {
	ok := &scriptedSource{name: "usb", printers: []Printer{
		{ID: "u1", Source: registry.SourceUSB, Description: "USB printer"},
	}}
	bad := &scriptedSource{name: "serial", err: errors.New("no permission")}

	m, _ := newTestManager(t, ok, bad)

	printers, err := m.Detect()
	require.NoError(t, err)
	assert.Len(t, printers, 1)
}

func TestManager_DetectAppliesCustomNames(t *testing.T) {
	m, reg := newTestManager(t)
	id := reg.ID(registry.Identity{Source: registry.SourceUSB, VID: 1, PID: 2, Description: "d"})

	m.sources = []Source{&scriptedSource{name: "usb", printers: []Printer{
		{ID: id, Source: registry.SourceUSB, Description: "d"},
	}}}

	require.True(t, reg.SetName(id, "Kitchen"))

	printers, err := m.Detect()
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, "Kitchen", printers[0].Name)
}

func TestManager_SetName(t *testing.T) {
	m, reg := newTestManager(t)
	id := reg.ID(registry.Identity{Source: registry.SourceSerial, Device: "/dev/ttyS0"})

	m.sources = []Source{&scriptedSource{name: "serial", printers: []Printer{
		{ID: id, Source: registry.SourceSerial, Device: "/dev/ttyS0"},
	}}}
	_, err := m.Detect()
	require.NoError(t, err)

	require.True(t, m.SetName(id, "Back Office"))
	assert.Equal(t, "Back Office", m.Get(id).Name)

	assert.False(t, m.SetName("unknown", "x"))
}

func TestManager_CapabilitiesWithoutSpooler(t *testing.T) {
	m, reg := newTestManager(t)
	id := reg.ID(registry.Identity{Source: registry.SourceUSB, VID: 1, PID: 2, Description: "d"})

	m.sources = []Source{&scriptedSource{name: "usb", printers: []Printer{
		{ID: id, Source: registry.SourceUSB, Description: "d"},
	}}}
	_, err := m.Detect()
	require.NoError(t, err)

	caps, err := m.Capabilities(id)
	require.NoError(t, err)
	assert.Equal(t, spool.Capabilities{}, caps)

	_, err = m.Capabilities("missing")
	assert.Error(t, err)
}

func TestManager_DefaultWithoutSpooler(t *testing.T) {
	m, _ := newTestManager(t)

	p, err := m.Default()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMonitor_FiresCallbacks(t *testing.T) {
	src := &scriptedSource{name: "usb", printers: []Printer{
		{ID: "a", Source: registry.SourceUSB, Description: "printer a"},
	}}
	m, _ := newTestManager(t, src)

	_, err := m.Detect()
	require.NoError(t, err)

	var added []string
	var removed []string
	m.OnAdded(func(p *Printer) { added = append(added, p.ID) })
	m.OnRemoved(func(id string) { removed = append(removed, id) })

	mon := NewMonitor(m, time.Minute, zerolog.Nop())
	previous := map[string]*Printer{"a": {ID: "a"}}

	// Printer b attaches, a detaches.
	src.printers = []Printer{{ID: "b", Source: registry.SourceUSB, Description: "printer b"}}
	mon.rescan(previous)

	assert.Equal(t, []string{"b"}, added)
	assert.Equal(t, []string{"a"}, removed)

	// Steady state fires nothing further.
	mon.rescan(previous)
	assert.Len(t, added, 1)
	assert.Len(t, removed, 1)
}
