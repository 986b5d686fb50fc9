// Package vectorindex defines the contract between the gateway and the
// external vector store holding the document corpus. Backends live in
// subpackages: qdrant (REST), postgres (pgvector) and memory.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
)

// Document is one unit of retrievable content.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a matched document. Higher Score means more similar
// (cosine similarity).
type SearchResult struct {
	ID      string
	Content string
	Score   float64
}

// Index is a cosine-similarity nearest-neighbour store bound to one
// collection. Implementations must be safe for concurrent use.
type Index interface {
	// Search returns at most k results ordered closest first.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// ListCollections is the liveness check used by health endpoints.
	ListCollections(ctx context.Context) ([]string, error)

	// EnsureCollection creates the collection with the given dimension.
	// With recreate set an existing collection is dropped first.
	EnsureCollection(ctx context.Context, dimension int, recreate bool) error

	// Upsert stores docs with their vectors; both slices line up by index.
	Upsert(ctx context.Context, docs []Document, vectors [][]float32) error
}

var (
	ErrLengthMismatch    = errors.New("vectorindex: documents and vectors length mismatch")
	ErrInvalidDimension  = errors.New("vectorindex: invalid dimension")
	ErrDimensionMismatch = errors.New("vectorindex: vector dimension mismatch")
)

// CheckUpsert validates an Upsert call against the collection dimension.
func CheckUpsert(docs []Document, vectors [][]float32, dimension int) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents, %d vectors", ErrLengthMismatch, len(docs), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: document %q has %d, want %d", ErrDimensionMismatch, docs[i].ID, len(v), dimension)
		}
	}
	return nil
}
