package discover

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Monitor periodically rescans the discovery sources and fires the
// manager's added/removed callbacks when the directory changes.
type Monitor struct {
	manager  *Manager
	interval time.Duration
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewMonitor builds a monitor that rescans at the given interval.
func NewMonitor(manager *Manager, interval time.Duration, log zerolog.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		manager:  manager,
		interval: interval,
		log:      log.With().Str("component", "monitor").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins rescanning in the background.
func (m *Monitor) Start() {
	previous := make(map[string]*Printer)
	for _, p := range m.manager.All() {
		cp := p
		previous[p.ID] = &cp
	}

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.rescan(previous)
			}
		}
	}()
}

// Stop halts the rescan loop.
func (m *Monitor) Stop() {
	m.cancel()
}

func (m *Monitor) rescan(previous map[string]*Printer) {
	current, err := m.manager.Detect()
	if err != nil {
		m.log.Warn().Err(err).Msg("rescan failed")
		return
	}

	currentMap := make(map[string]*Printer, len(current))
	for i := range current {
		currentMap[current[i].ID] = &current[i]
	}

	for id, p := range currentMap {
		if _, exists := previous[id]; !exists {
			m.log.Info().Str("id", id).Str("description", p.Description).Msg("printer attached")
			if m.manager.onAdded != nil {
				m.manager.onAdded(p)
			}
		}
	}

	for id, p := range previous {
		if _, exists := currentMap[id]; !exists {
			m.log.Info().Str("id", id).Str("description", p.Description).Msg("printer detached")
			if m.manager.onRemoved != nil {
				m.manager.onRemoved(id)
			}
		}
	}

	for id := range previous {
		delete(previous, id)
	}
	for id, p := range currentMap {
		previous[id] = p
	}
}
