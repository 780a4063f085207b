// Package sourcemanager holds the adapter registry, tracks per source
// health from real traffic, and executes the primary-with-fallback and
// primary-with-enhancement call patterns.
package sourcemanager

import (
	"context"
	"sync"
	"time"

	"github.com/raildeck/raildeck/pkg/adapters"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type Config struct {
	PrimarySource      string
	FallbackEnabled    bool
	EnhancementEnabled bool

	// EnhancementTimeout is the soft deadline after which an in flight
	// enhancement call is abandoned and the primary result returned as is.
	EnhancementTimeout time.Duration
}

type Manager struct {
	config Config

	adapters map[string]adapters.Adapter

	healthMutex sync.RWMutex
	health      map[string]*raildata.DataSourceHealth
}

func NewManager(config Config) *Manager {
	if config.EnhancementTimeout == 0 {
		config.EnhancementTimeout = 3 * time.Second
	}

	return &Manager{
		config: config,

		adapters: map[string]adapters.Adapter{},
		health:   map[string]*raildata.DataSourceHealth{},
	}
}

// Register adds an adapter to the registry and seeds its health record with
// a single connectivity probe. After registration health is only updated
// from real traffic.
func (m *Manager) Register(ctx context.Context, adapter adapters.Adapter) {
	m.adapters[adapter.Name()] = adapter

	m.healthMutex.Lock()
	m.health[adapter.Name()] = &raildata.DataSourceHealth{
		AdapterName:   adapter.Name(),
		Available:     adapter.IsHealthy(ctx),
		LastCheckedAt: time.Now(),
	}
	m.healthMutex.Unlock()

	log.Debug().Str("name", adapter.Name()).Int("priority", adapter.Priority()).Msg("Registered data source adapter")
}

func (m *Manager) Adapter(name string) adapters.Adapter {
	return m.adapters[name]
}

func (m *Manager) Config() Config {
	return m.config
}

// Health returns a snapshot of every adapter's health record.
func (m *Manager) Health() []raildata.DataSourceHealth {
	m.healthMutex.RLock()
	defer m.healthMutex.RUnlock()

	var records []raildata.DataSourceHealth
	for _, record := range m.health {
		records = append(records, *record)
	}

	slices.SortFunc(records, func(a raildata.DataSourceHealth, b raildata.DataSourceHealth) int {
		if a.AdapterName < b.AdapterName {
			return -1
		} else if a.AdapterName > b.AdapterName {
			return 1
		}
		return 0
	})

	return records
}

func (m *Manager) markHealthy(name string, responseTime time.Duration) {
	m.healthMutex.Lock()
	defer m.healthMutex.Unlock()

	record := m.health[name]
	if record == nil {
		return
	}

	record.Available = true
	record.ConsecutiveErrorCount = 0
	record.LastCheckedAt = time.Now()
	record.LastResponseTimeMs = responseTime.Milliseconds()
}

func (m *Manager) markUnhealthy(name string) {
	m.healthMutex.Lock()
	defer m.healthMutex.Unlock()

	record := m.health[name]
	if record == nil {
		return
	}

	record.Available = false
	record.ConsecutiveErrorCount += 1
	record.LastCheckedAt = time.Now()
}

func (m *Manager) available(name string) bool {
	m.healthMutex.RLock()
	defer m.healthMutex.RUnlock()

	record := m.health[name]
	return record != nil && record.Available
}

// fallbackFor returns the highest priority adapter other than the primary
// whose health record currently reports it available AND whose capabilities
// include the requested operation. An enrichment-only source is never a
// board fallback.
func (m *Manager) fallbackFor(primaryName string, capability adapters.Capability) adapters.Adapter {
	var candidates []adapters.Adapter

	for name, adapter := range m.adapters {
		if name == primaryName {
			continue
		}
		if !adapter.Capabilities().Supports(capability) {
			continue
		}

		if m.available(name) {
			candidates = append(candidates, adapter)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	slices.SortFunc(candidates, func(a adapters.Adapter, b adapters.Adapter) int {
		return a.Priority() - b.Priority()
	})

	return candidates[0]
}

// enhancementAdapter returns the non-primary adapter used for opportunistic
// enrichment calls: the highest priority available adapter other than the
// primary.
func (m *Manager) enhancementAdapter() adapters.Adapter {
	var candidates []adapters.Adapter

	for name, adapter := range m.adapters {
		if name == m.config.PrimarySource {
			continue
		}

		if m.available(name) {
			candidates = append(candidates, adapter)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	slices.SortFunc(candidates, func(a adapters.Adapter, b adapters.Adapter) int {
		return a.Priority() - b.Priority()
	})

	return candidates[0]
}

// EnhancementAvailable reports whether an enhancement source is currently
// registered, enabled and available.
func (m *Manager) EnhancementAvailable() bool {
	return m.config.EnhancementEnabled && m.enhancementAdapter() != nil
}
