package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexer_IndexAndSearch(t *testing.T) {
	idx := NewMemoryIndexer()
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, Document{
		Recipients: []string{"contact:2"},
		Sender:     "contact:1",
		Subject:    "Project update",
		Body:       "The release slipped a week.",
		CreatedAt:  time.Now(),
	}))
	require.NoError(t, idx.Index(ctx, Document{
		Recipients: []string{"contact:3"},
		Sender:     "contact:1",
		Subject:    "Lunch",
		Body:       "Any update on the venue?",
		CreatedAt:  time.Now(),
	}))

	assert.Equal(t, 2, idx.Len())

	hits := idx.Search("update")
	require.Len(t, hits, 2)
	// Subject hit ranks ahead of the body hit.
	assert.Equal(t, "Project update", hits[0].Subject)
	assert.Equal(t, "Lunch", hits[1].Subject)
}

func TestMemoryIndexer_NoMatch(t *testing.T) {
	idx := NewMemoryIndexer()

	require.NoError(t, idx.Index(context.Background(), Document{Subject: "Hi", Body: "there"}))
	assert.Empty(t, idx.Search("absent"))
}

func TestNoopIndexer_Discards(t *testing.T) {
	idx := NewNoopIndexer()
	assert.NoError(t, idx.Index(context.Background(), Document{Subject: "Hi"}))
}

func TestNewIndexer_SelectsEngine(t *testing.T) {
	ctx := context.Background()

	idx, err := NewIndexer(ctx, EngineNone, OpenSearchConfig{})
	require.NoError(t, err)
	assert.IsType(t, noopIndexer{}, idx)

	idx, err = NewIndexer(ctx, EngineMemory, OpenSearchConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryIndexer{}, idx)

	_, err = NewIndexer(ctx, Engine("solr"), OpenSearchConfig{})
	assert.Error(t, err)
}
