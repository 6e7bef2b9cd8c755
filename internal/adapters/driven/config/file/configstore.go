package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/curator/internal/adapters/driven/config/values"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = "curator.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Nested tables are exposed as dot-notation keys ("github.token").
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore creates a TOML config store backed by filePath.
// If filePath is empty, defaults to ./curator.toml. A missing file is an
// empty configuration.
func NewConfigStore(filePath string) (*ConfigStore, error) {
	if filePath == "" {
		filePath = DefaultFileName
	}

	s := &ConfigStore{
		filePath: filePath,
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

func (s *ConfigStore) lookup(key string) any {
	val, _ := s.Get(key)
	return val
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	return values.String(s.lookup(key))
}

// GetInt retrieves an integer configuration value.
// TOML integers are parsed as int64.
func (s *ConfigStore) GetInt(key string) int {
	return values.Int(s.lookup(key))
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	return values.Bool(s.lookup(key))
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	return values.StringSlice(s.lookup(key))
}

// GetDuration retrieves a duration written as a string ("30s", "24h").
func (s *ConfigStore) GetDuration(key string) time.Duration {
	return values.Duration(s.lookup(key))
}

// Keys returns the keys below prefix with the prefix stripped.
func (s *ConfigStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values.KeysUnder(s.data, prefix)
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nest(s.data))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	// The file may hold a GitHub token.
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return fmt.Errorf("reading config %s: %w", s.filePath, err)
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing config %s: %w", s.filePath, err)
	}

	s.data = values.Flatten(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// nest turns dot-notation keys back into tables so saved files read naturally.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}
