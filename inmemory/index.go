// Package inmemory is a process-local search backend. It serves the same
// nestsearch contract as Algolia over records loaded from a fixtures file and
// is the backend used by tests and by `nest serve --backend memory`.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/owasp/nestsearch"
)

// Document is one record of an index.
type Document struct {
	ID     string
	Fields map[string]any
}

// Index implements nestsearch.Searcher over an ordered set of documents.
// It is safe for concurrent use.
type Index struct {
	name string

	mu        sync.RWMutex
	documents []Document
	idIndex   map[string]int // document ID -> position in documents
}

// NewIndex creates an empty index.
func NewIndex(name string) *Index {
	return &Index{
		name:    name,
		idIndex: make(map[string]int),
	}
}

// Name returns the index name.
func (x *Index) Name() string {
	return x.name
}

// AddDocument inserts doc, replacing any document with the same ID in place.
func (x *Index) AddDocument(doc Document) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if pos, exists := x.idIndex[doc.ID]; exists {
		x.documents[pos] = doc
		return
	}
	x.idIndex[doc.ID] = len(x.documents)
	x.documents = append(x.documents, doc)
}

// AddJSON parses data as one JSON object and adds it under id.
func (x *Index) AddJSON(id string, data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON")
	}
	x.AddDocument(Document{ID: id, Fields: fields})
	return nil
}

// RemoveDocument deletes the document with id and reports whether it existed.
func (x *Index) RemoveDocument(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	pos, exists := x.idIndex[id]
	if !exists {
		return false
	}

	x.documents = append(x.documents[:pos], x.documents[pos+1:]...)
	delete(x.idIndex, id)
	for i := pos; i < len(x.documents); i++ {
		x.idIndex[x.documents[i].ID] = i
	}
	return true
}

// Size returns the number of documents.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.documents)
}

type scoredDocument struct {
	document Document
	score    float64
}

// Search implements nestsearch.Searcher. Matching is a case-insensitive
// substring test of each query term against every field value; the empty
// query matches everything. Ties keep insertion order.
func (x *Index) Search(ctx context.Context, query string, opts ...nestsearch.SearchOption) (*nestsearch.Page, error) {
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nestsearch.ErrTimeout
		}
		return nil, nestsearch.ErrCanceled
	}

	cfg, err := nestsearch.NewSearchConfig(opts...)
	if err != nil {
		return nil, err
	}

	x.mu.RLock()
	var matches []scoredDocument
	for _, doc := range x.documents {
		if !matchesFilters(doc, cfg.Filters) {
			continue
		}
		if score := scoreDocument(doc, query); score > 0 {
			matches = append(matches, scoredDocument{document: doc, score: score})
		}
	}
	x.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	total := len(matches)
	page := &nestsearch.Page{
		CurrentPage: cfg.Page,
		TotalPages:  nestsearch.TotalPagesFor(int64(total), cfg.HitsPerPage),
		Total:       int64(total),
		HitsPerPage: cfg.HitsPerPage,
		Query:       query,
	}

	start := min((cfg.Page-1)*cfg.HitsPerPage, total)
	end := min(start+cfg.HitsPerPage, total)
	page.Hits = make([]nestsearch.Hit, 0, end-start)
	for _, m := range matches[start:end] {
		page.Hits = append(page.Hits, nestsearch.Hit{ID: m.document.ID, Fields: m.document.Fields})
	}

	page.Took = time.Since(startTime).Milliseconds()
	return page, nil
}

// scoreDocument counts term hits across field values, boosting documents that
// match every term.
func scoreDocument(doc Document, query string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 1.0
	}

	score := 0.0
	matchedTerms := 0
	for _, term := range terms {
		termMatched := false
		for _, value := range doc.Fields {
			if valueContainsTerm(value, term) {
				termMatched = true
				score++
			}
		}
		if termMatched {
			matchedTerms++
		}
	}

	if matchedTerms == 0 {
		return 0
	}
	if matchedTerms == len(terms) {
		score *= 1.5
	}
	return score
}

func valueContainsTerm(value any, term string) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), term)
	case []any:
		for _, item := range v {
			if valueContainsTerm(item, term) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, item := range v {
			if valueContainsTerm(item, term) {
				return true
			}
		}
		return false
	case nil:
		return false
	default:
		return strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), term)
	}
}
