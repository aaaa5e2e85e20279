package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tabsense/internal/util/logx"
)

var log = logx.Named("settings")

// fileEntry mirrors one record of the settings file:
// {"file": "/abs/path.csv", "use_header": true}.
type fileEntry map[string]any

type document struct {
	PerFile []fileEntry `json:"csv_per_file_setting"`
}

// JSONStore persists settings in a single JSON document. Every write
// replaces the file atomically.
type JSONStore struct {
	path string
	mu   sync.Mutex
	doc  document
}

// DefaultJSONPath is settings.json under the user config directory, falling
// back to the temp dir.
func DefaultJSONPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "tabsense", "settings.json")
}

// OpenJSON loads path if it exists. A missing file is an empty store.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&s.doc); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) GetFileSetting(identity, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.doc.PerFile {
		if e["file"] != identity {
			continue
		}
		v, _ := e[key].(bool)
		return v
	}
	return false
}

func (s *JSONStore) SetFileSetting(identity, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, e := range s.doc.PerFile {
		if e["file"] == identity {
			e[key] = value
			found = true
			break
		}
	}
	if !found {
		s.doc.PerFile = append(s.doc.PerFile, fileEntry{"file": identity, key: value})
	}
	return s.save()
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.doc); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	log.Infof("saved %d file entries to %s", len(s.doc.PerFile), s.path)
	return nil
}
