package inmemory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
)

// Store holds one Index per name and implements nestsearch.Opener.
type Store struct {
	mu      sync.Mutex
	indexes map[string]*Index
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{indexes: make(map[string]*Index)}
}

// Index returns the index called name, creating it when missing.
func (s *Store) Index(name string) *Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[name]
	if !ok {
		idx = NewIndex(name)
		s.indexes[name] = idx
	}
	return idx
}

// Open implements nestsearch.Opener.
func (s *Store) Open(name string) nestsearch.Searcher {
	return s.Index(name)
}

// Names lists the indexes in the store, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fixtures is the on-disk layout: index name -> records. Records keep their
// idx_ prefixed fields and may carry an "objectID".
type Fixtures map[string][]map[string]any

// ReadFixtures decodes a fixtures document.
func ReadFixtures(r io.Reader) (Fixtures, error) {
	var fx Fixtures
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, errors.Wrap(err, "failed to decode fixtures")
	}
	return fx, nil
}

// ReadFixturesFile reads and decodes the fixtures file at path.
func ReadFixturesFile(path string) (Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open fixtures %s", path)
	}
	defer f.Close()
	return ReadFixtures(f)
}

// Load adds every fixture record to its index. Records without an objectID get
// "<index>-<position>".
func (s *Store) Load(fx Fixtures) {
	for name, records := range fx {
		idx := s.Index(name)
		for i, record := range records {
			id, _ := record["objectID"].(string)
			if id == "" {
				id = fmt.Sprintf("%s-%d", name, i+1)
			}
			idx.AddDocument(Document{ID: id, Fields: record})
		}
	}
}

// LoadFile is ReadFixturesFile followed by Load.
func (s *Store) LoadFile(path string) error {
	fx, err := ReadFixturesFile(path)
	if err != nil {
		return err
	}
	s.Load(fx)
	return nil
}
