package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/curator/internal/adapters/driven/config/values"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
	}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) lookup(key string) any {
	val, _ := s.Get(key)
	return val
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string { return values.String(s.lookup(key)) }

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int { return values.Int(s.lookup(key)) }

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool { return values.Bool(s.lookup(key)) }

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	return values.StringSlice(s.lookup(key))
}

// GetDuration retrieves a duration configuration value.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	return values.Duration(s.lookup(key))
}

// Keys returns the keys below prefix.
func (s *ConfigStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values.KeysUnder(s.values, prefix)
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error {
	return nil
}

// Load is a no-op.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns a placeholder path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
