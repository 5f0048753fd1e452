// Package cache memoizes generated file documents by request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
)

// DefaultEntries is the in-memory LRU size used when none is given.
const DefaultEntries = 128

// Key computes a deterministic SHA256 hash of a generation request.
// Order is significant: provider, model, prompt.
func Key(provider, model, prompt string) string {
	h := sha256.New()
	for _, s := range []string{provider, model, prompt} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DefaultDir returns ~/.cache/promptflow/generations.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "promptflow", "generations")
	}
	return filepath.Join(os.ExpandEnv("$HOME"), ".cache", "promptflow", "generations")
}

// Stats are cumulative lookup counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	DiskHits uint64
}

// Store is an LRU in front of a directory of JSON files. An empty dir
// keeps the cache in memory only.
type Store struct {
	dir    string
	memory *lru.Cache[string, schema.FileArtifact]

	hits     atomic.Uint64
	misses   atomic.Uint64
	diskHits atomic.Uint64
}

// New creates a Store. entries <= 0 uses DefaultEntries.
func New(dir string, entries int) (*Store, error) {
	if entries <= 0 {
		entries = DefaultEntries
	}
	memory, err := lru.New[string, schema.FileArtifact](entries)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Store{dir: dir, memory: memory}, nil
}

// Path returns the path to the cache file for a given key
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the cached artifact for key, checking memory then disk.
func (s *Store) Get(key string) (schema.FileArtifact, bool) {
	if f, ok := s.memory.Get(key); ok {
		s.hits.Add(1)
		return f, true
	}
	if s.dir == "" {
		s.misses.Add(1)
		return schema.FileArtifact{}, false
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		s.misses.Add(1)
		return schema.FileArtifact{}, false
	}
	var f schema.FileArtifact
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Put.
		s.misses.Add(1)
		return schema.FileArtifact{}, false
	}

	s.memory.Add(key, f)
	s.hits.Add(1)
	s.diskHits.Add(1)
	return f, true
}

// Put stores an artifact in memory and, when a dir is set, on disk.
func (s *Store) Put(key string, f schema.FileArtifact) error {
	s.memory.Add(key, f)
	if s.dir == "" {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	return os.WriteFile(s.Path(key), data, 0o644)
}

// Stats returns a snapshot of the lookup counters.
func (s *Store) Stats() Stats {
	return Stats{
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		DiskHits: s.diskHits.Load(),
	}
}
