// Package settings keeps per-file options such as whether the first row of a
// file is a header. Files are identified by their absolute path.
package settings

import (
	"path/filepath"
	"strings"
	"sync"
)

// KeyUseHeader marks the first row of a file as its header.
const KeyUseHeader = "use_header"

// StdinIdentity identifies buffers read from standard input.
const StdinIdentity = "<stdin>"

// Reader is the read side used by parse/sort/format cycles. A missing
// setting reads as false.
type Reader interface {
	GetFileSetting(identity, key string) bool
}

type Store interface {
	Reader
	SetFileSetting(identity, key string, value bool) error
	Close() error
}

// Identity derives the key for a file path. Empty paths map to stdin.
func Identity(path string) string {
	if strings.TrimSpace(path) == "" {
		return StdinIdentity
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// MemoryStore keeps settings for the life of the process.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]map[string]bool{}}
}

func (s *MemoryStore) GetFileSetting(identity, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[identity][key]
}

func (s *MemoryStore) SetFileSetting(identity, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[identity] == nil {
		s.m[identity] = map[string]bool{}
	}
	s.m[identity][key] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Override forces a value for one key regardless of what the wrapped reader
// holds, e.g. for a -header flag.
type Override struct {
	Reader
	Key   string
	Value bool
}

func (o Override) GetFileSetting(identity, key string) bool {
	if key == o.Key {
		return o.Value
	}
	return o.Reader.GetFileSetting(identity, key)
}
