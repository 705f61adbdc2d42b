// Package vectordb stores and searches embedded chunks.
package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/schema"
)

// CollectionStats describes the live collection.
type CollectionStats struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// Provider is the vector-search collaborator. All calls are bounded by
// the caller's context.
type Provider interface {
	// EnsureCollection creates the collection, the vector index and the
	// keyword index on the source field if they do not exist.
	EnsureCollection(ctx context.Context) error
	// Upsert writes documents (text, metadata, vector) in one batch.
	Upsert(ctx context.Context, docs []schema.Document) error
	// ListSourceIDs returns the IDs of every chunk belonging to a source
	// filename.
	ListSourceIDs(ctx context.Context, source string) ([]string, error)
	// DeleteByIDs removes chunks by ID.
	DeleteByIDs(ctx context.Context, ids []string) error
	// Search returns the topK most similar documents with vectors
	// attached, so callers can re-rank for diversity.
	Search(ctx context.Context, vector []float32, topK int) ([]schema.SearchResult, error)
	// Stats reports collection existence and row count.
	Stats(ctx context.Context) (CollectionStats, error)
	// Close releases the underlying connection.
	Close() error
}

// New builds the provider selected by the configuration. The embedding
// dimensionality fixes the collection's vector width.
func New(ctx context.Context, cfg config.VectorDBConfig, dimensions int) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "milvus":
		return newMilvus(ctx, cfg, dimensions)
	case "":
		return nil, fmt.Errorf("vectordb provider is required")
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
