package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Store is the key/value backend of Settings. fyne.Preferences satisfies it,
// FileStore provides the same contract for the CLI and the REST API.
type Store interface {
	StringWithFallback(key, fallback string) string
	SetString(key, value string)
	IntWithFallback(key string, fallback int) int
	SetInt(key string, value int)
	BoolWithFallback(key string, fallback bool) bool
	SetBool(key string, value bool)
}

// FileStore keeps settings in a YAML file and writes through on every change
type FileStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewFileStore loads path if it exists. A missing file yields an empty store.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: make(map[string]interface{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &fs.values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if fs.values == nil {
		fs.values = make(map[string]interface{})
	}
	return fs, nil
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) StringWithFallback(key, fallback string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if v, ok := f.values[key].(string); ok {
		return v
	}
	return fallback
}

func (f *FileStore) SetString(key, value string) {
	f.set(key, value)
}

func (f *FileStore) IntWithFallback(key string, fallback int) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	switch v := f.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func (f *FileStore) SetInt(key string, value int) {
	f.set(key, value)
}

func (f *FileStore) BoolWithFallback(key string, fallback bool) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if v, ok := f.values[key].(bool); ok {
		return v
	}
	return fallback
}

func (f *FileStore) SetBool(key string, value bool) {
	f.set(key, value)
}

func (f *FileStore) set(key string, value interface{}) {
	f.mu.Lock()
	f.values[key] = value
	err := f.saveLocked()
	f.mu.Unlock()

	if err != nil {
		log.WithFields(log.Fields{"module": "config", "function": "set"}).
			Errorf("failed to save settings: %v", err)
	}
}

func (f *FileStore) saveLocked() error {
	if f.path == "" {
		return nil
	}
	data, err := yaml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return os.Rename(tmp, f.path)
}
