package document

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]map[string]Document{}}
}

func (s *MemoryStore) Put(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.docs[doc.RunID]
	if !ok {
		run = map[string]Document{}
		s.docs[doc.RunID] = run
	}
	run[doc.ID] = doc
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, runID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[runID][id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, runID, id)
	}
	return doc, nil
}

func (s *MemoryStore) List(ctx context.Context, runID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, 0, len(s.docs[runID]))
	for _, doc := range s.docs[runID] {
		out = append(out, doc)
	}
	sortDocuments(out)
	return out, nil
}

// FileStore writes one JSON file per document: <dir>/<run>/<id>.json.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(runID, id string) (string, error) {
	for _, part := range []string{runID, id} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid document path component %q", part)
		}
	}
	return filepath.Join(s.dir, runID, id+".json"), nil
}

func (s *FileStore) Put(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(doc.RunID, doc.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create document dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *FileStore) Get(ctx context.Context, runID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	path, err := s.path(runID, id)
	if err != nil {
		return Document{}, err
	}
	return readDocument(path, runID, id)
}

func (s *FileStore) List(ctx context.Context, runID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, runID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Document
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		doc, err := readDocument(filepath.Join(dir, e.Name()), runID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	sortDocuments(out)
	return out, nil
}

func readDocument(path, runID, id string) (Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, runID, id)
	}
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
