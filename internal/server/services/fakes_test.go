package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
)

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	dim     int
	err     error
	calls   int
	batches [][]string
	// block makes Embed wait for ctx to finish.
	block bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batches = append(f.batches, texts)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, errors.New("unknown text")
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

// fakeIndex records calls and returns canned values.
type fakeIndex struct {
	results     []vectorindex.SearchResult
	searchErr   error
	listErr     error
	ensureErr   error
	upsertErr   error
	searchK     int
	searchCalls int
	ensured     []int
	recreate    bool
	upserted    []vectorindex.Document
	deadline    time.Time
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, k int) ([]vectorindex.SearchResult, error) {
	f.searchCalls++
	f.searchK = k
	f.deadline, _ = ctx.Deadline()
	return f.results, f.searchErr
}

func (f *fakeIndex) ListCollections(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []string{"chatbot_docs"}, nil
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, dimension int, recreate bool) error {
	f.ensured = append(f.ensured, dimension)
	f.recreate = recreate
	return f.ensureErr
}

func (f *fakeIndex) Upsert(ctx context.Context, docs []vectorindex.Document, vectors [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, docs...)
	return nil
}

type fakeLoader struct {
	docs   []vectorindex.Document
	err    error
	source string
}

func (f *fakeLoader) Load(ctx context.Context, source string) ([]vectorindex.Document, error) {
	f.source = source
	return f.docs, f.err
}

type issuerFunc func(string) (string, error)

func (f issuerFunc) Issue(username string) (string, error) { return f(username) }
