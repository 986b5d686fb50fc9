// Package memory is an in-process vectorindex.Index using brute-force cosine
// similarity. It suits development and tests with small corpora.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
)

type entry struct {
	doc    vectorindex.Document
	vector []float32
}

// Index is safe for concurrent use. Ties in similarity keep insertion order.
type Index struct {
	mu         sync.RWMutex
	collection string
	created    bool
	dimension  int
	entries    []entry
	positions  map[string]int
}

var _ vectorindex.Index = (*Index)(nil)

func New(collection string) *Index {
	return &Index{collection: collection, positions: make(map[string]int)}
}

func (m *Index) ListCollections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return []string{}, nil
	}
	return []string{m.collection}, nil
}

func (m *Index) EnsureCollection(ctx context.Context, dimension int, recreate bool) error {
	if dimension <= 0 {
		return vectorindex.ErrInvalidDimension
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.created && !recreate {
		if m.dimension != dimension {
			return vectorindex.ErrDimensionMismatch
		}
		return nil
	}
	m.created = true
	m.dimension = dimension
	m.entries = nil
	m.positions = make(map[string]int)
	return nil
}

func (m *Index) Upsert(ctx context.Context, docs []vectorindex.Document, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.created {
		return vectorindex.ErrInvalidDimension
	}
	if err := vectorindex.CheckUpsert(docs, vectors, m.dimension); err != nil {
		return err
	}

	for i, doc := range docs {
		cp := make([]float32, len(vectors[i]))
		copy(cp, vectors[i])
		e := entry{doc: doc, vector: cp}
		if pos, ok := m.positions[doc.ID]; ok {
			m.entries[pos] = e
			continue
		}
		m.positions[doc.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return nil
}

func (m *Index) Search(ctx context.Context, vector []float32, k int) ([]vectorindex.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.entries) == 0 || k <= 0 {
		return []vectorindex.SearchResult{}, nil
	}
	if len(vector) != m.dimension {
		return nil, vectorindex.ErrDimensionMismatch
	}

	results := make([]vectorindex.SearchResult, len(m.entries))
	for i, e := range m.entries {
		results[i] = vectorindex.SearchResult{
			ID:      e.doc.ID,
			Content: e.doc.Content,
			Score:   CosineSimilarity(vector, e.vector),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of stored documents.
func (m *Index) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CosineSimilarity returns a value in [-1, 1]; -1 when either vector has
// zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return -1
	}

	s := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, s))
}
