package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatgate/internal/logging"
	"github.com/dmitrijs2005/chatgate/internal/server/embedding"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
)

// SeedLoader reads seed documents from a source location.
type SeedLoader interface {
	Load(ctx context.Context, source string) ([]vectorindex.Document, error)
}

// ProvisionOptions controls startup index provisioning.
type ProvisionOptions struct {
	Recreate   bool
	SeedSource string
	BatchSize  int
}

const defaultSeedBatch = 64

// Provisioner prepares the collection before the gateway starts serving.
type Provisioner struct {
	index    vectorindex.Index
	embedder embedding.Embedder
	loader   SeedLoader
	opts     ProvisionOptions
	logger   logging.Logger
}

func NewProvisioner(idx vectorindex.Index, e embedding.Embedder, loader SeedLoader, opts ProvisionOptions, logger logging.Logger) *Provisioner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSeedBatch
	}
	return &Provisioner{
		index:    idx,
		embedder: e,
		loader:   loader,
		opts:     opts,
		logger:   logger.With("module", "provisioner"),
	}
}

// Provision ensures the collection exists with the embedder's dimension and,
// when a seed source is set, embeds and upserts its documents.
func (p *Provisioner) Provision(ctx context.Context) error {
	dim := p.embedder.Dimension()
	if err := p.index.EnsureCollection(ctx, dim, p.opts.Recreate); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	p.logger.Info(ctx, "collection ready", "dimension", dim, "recreate", p.opts.Recreate)

	if p.opts.SeedSource == "" {
		return nil
	}

	docs, err := p.loader.Load(ctx, p.opts.SeedSource)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	for start := 0; start < len(docs); start += p.opts.BatchSize {
		end := min(start+p.opts.BatchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Content
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed seed batch at %d: %w", start, err)
		}
		if err := p.index.Upsert(ctx, batch, vectors); err != nil {
			return fmt.Errorf("upsert seed batch at %d: %w", start, err)
		}
	}

	p.logger.Info(ctx, "seed loaded", "source", p.opts.SeedSource, "documents", len(docs))
	return nil
}
