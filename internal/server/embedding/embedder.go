// Package embedding turns query text into fixed-length vectors through a
// remote embedding provider.
package embedding

import (
	"context"
	"errors"
)

// Embedder converts text into dense float32 vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

var (
	// ErrEmptyInput is returned when there is nothing to embed.
	ErrEmptyInput = errors.New("embedding: empty input")

	// ErrDimensionMismatch is returned when the provider's vectors do not
	// have the configured length.
	ErrDimensionMismatch = errors.New("embedding: dimension mismatch")
)
