// Package search is the pluggable text-search boundary. The engine is
// selected once at process startup from configuration; the core never
// branches on it per call.
package search

import (
	"context"
	"fmt"
	"time"
)

// Engine names a search backend.
type Engine string

const (
	EngineNone       Engine = "none"
	EngineMemory     Engine = "memory"
	EngineOpenSearch Engine = "opensearch"
)

// Document is what gets indexed for one delivered notification. Participant
// references are rendered in "type:id" form.
type Document struct {
	Recipients []string  `json:"recipients"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Indexer receives delivered content for indexing.
type Indexer interface {
	Index(ctx context.Context, doc Document) error
}

// NewIndexer builds the indexer for the configured engine.
func NewIndexer(ctx context.Context, engine Engine, cfg OpenSearchConfig) (Indexer, error) {
	switch engine {
	case EngineNone, "":
		return NewNoopIndexer(), nil
	case EngineMemory:
		return NewMemoryIndexer(), nil
	case EngineOpenSearch:
		return NewOpenSearchIndexer(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown search engine: %s", engine)
	}
}

// noopIndexer discards everything
type noopIndexer struct{}

// NewNoopIndexer creates an indexer for deployments without search.
func NewNoopIndexer() Indexer {
	return noopIndexer{}
}

func (noopIndexer) Index(context.Context, Document) error {
	return nil
}
