package search

import (
	"context"
	"strings"
	"sync"
)

// MemoryIndexer holds documents in process memory. Intended for development
// and tests; Search ranks subject matches ahead of body matches.
type MemoryIndexer struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryIndexer creates an in-process indexer.
func NewMemoryIndexer() *MemoryIndexer {
	return &MemoryIndexer{}
}

// Index stores the document.
func (m *MemoryIndexer) Index(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	return nil
}

// Search returns documents whose subject or body contains the term,
// case-insensitively, subject hits first.
func (m *MemoryIndexer) Search(term string) []Document {
	term = strings.ToLower(term)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var subjectHits, bodyHits []Document
	for _, doc := range m.docs {
		switch {
		case strings.Contains(strings.ToLower(doc.Subject), term):
			subjectHits = append(subjectHits, doc)
		case strings.Contains(strings.ToLower(doc.Body), term):
			bodyHits = append(bodyHits, doc)
		}
	}
	return append(subjectHits, bodyHits...)
}

// Len reports how many documents were indexed.
func (m *MemoryIndexer) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
