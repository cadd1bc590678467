// Package localstore keeps the front end's persisted client state: tokens,
// the signed-in user, theme and preferences, as a flat string map.
package localstore

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Well-known keys.
const (
	KeyToken                = "svit_lms_token"
	KeyRefreshToken         = "svit_lms_refresh_token"
	KeyUser                 = "svit_lms_user"
	KeyTheme                = "svit_lms_theme"
	KeyLanguage             = "svit_lms_language"
	KeyNotificationSettings = "svit_lms_notification_settings"
)

// Store is a string key/value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(keys ...string) error
}

// GetJSON decodes the value under key into out. found is false when the key
// is absent.
func GetJSON(s Store, key string, out interface{}) (found bool, err error) {
	raw, ok := s.Get(key)
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v serialized as JSON under key.
func SetJSON(s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

// MemoryStore keeps state in memory only.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Token returns the stored access token.
func (m *MemoryStore) Token() string {
	v, _ := m.Get(KeyToken)
	return v
}

// FileStore persists state as a YAML map. Every mutation rewrites the file
// through a temporary file and a rename, so readers never see a torn file.
type FileStore struct {
	path string

	mu   sync.RWMutex
	data map[string]string
}

// Open loads path, creating an empty store when the file does not exist yet.
func Open(path string) (*FileStore, error) {
	fs := &FileStore{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return fs, nil
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if fs.data == nil {
		fs.data = make(map[string]string)
	}
	return fs, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.data)
	next[key] = value
	return f.commit(next)
}

func (f *FileStore) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.data)
	for _, k := range keys {
		delete(next, k)
	}
	return f.commit(next)
}

// Token returns the stored access token.
func (f *FileStore) Token() string {
	v, _ := f.Get(KeyToken)
	return v
}

// commit writes next to disk and adopts it. Callers hold mu.
func (f *FileStore) commit(next map[string]string) error {
	raw, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	f.data = next
	return nil
}
