package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
)

// OpenSearchConfig holds connection parameters for the OpenSearch engine.
type OpenSearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// indexMapping declares the document fields. Field weighting (boosting
// subject over body) belongs to query-time configuration, not the mapping.
const indexMapping = `{
	"mappings": {
		"properties": {
			"recipients": {"type": "keyword"},
			"sender":     {"type": "keyword"},
			"subject":    {"type": "text"},
			"body":       {"type": "text"},
			"created_at": {"type": "date"}
		}
	}
}`

// openSearchIndexer implements Indexer against an OpenSearch cluster
type openSearchIndexer struct {
	client *opensearch.Client
	index  string
}

// NewOpenSearchIndexer connects to the cluster and ensures the index exists.
func NewOpenSearchIndexer(ctx context.Context, cfg OpenSearchConfig) (Indexer, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	indexer := &openSearchIndexer{client: client, index: cfg.Index}
	if err := indexer.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return indexer, nil
}

// ensureIndex creates the index with its mapping if it is missing
func (o *openSearchIndexer) ensureIndex(ctx context.Context) error {
	exists, err := o.client.Indices.Exists(
		[]string{o.index},
		o.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := o.client.Indices.Create(
		o.index,
		o.client.Indices.Create.WithContext(ctx),
		o.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}
	return nil
}

// Index stores the document in the cluster
func (o *openSearchIndexer) Index(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal search document: %w", err)
	}

	res, err := o.client.Index(
		o.index,
		bytes.NewReader(payload),
		o.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to index document: %s", res.String())
	}
	return nil
}
