package features

import "sync"

// Flag names used by the catalog service.
const (
	// CacheEnabled gates the current-offers read cache.
	CacheEnabled = "cache_enabled"
	// EventsEnabled gates event publication on mutations.
	EventsEnabled = "events_enabled"
	// ChatAssistant gates the public storefront assistant endpoint.
	ChatAssistant = "chat_assistant"
)

// FeatureFlag is a named on/off switch.
type FeatureFlag struct {
	Name        string
	Enabled     bool
	Description string
}

// Manager holds the process-local feature flags. Unknown flags read as
// disabled.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]*FeatureFlag
}

// NewManager creates an empty flag manager.
func NewManager() *Manager {
	return &Manager{flags: make(map[string]*FeatureFlag)}
}

// Register adds a flag with its default state.
func (m *Manager) Register(name string, enabled bool, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flags[name] = &FeatureFlag{Name: name, Enabled: enabled, Description: description}
}

// IsEnabled reports whether a flag is on.
func (m *Manager) IsEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flag, ok := m.flags[name]
	return ok && flag.Enabled
}

// Set flips a flag to the given state, if registered.
func (m *Manager) Set(name string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if flag, ok := m.flags[name]; ok {
		flag.Enabled = enabled
	}
}

// All returns a copy of every registered flag.
func (m *Manager) All() []FeatureFlag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]FeatureFlag, 0, len(m.flags))
	for _, f := range m.flags {
		out = append(out, *f)
	}
	return out
}
