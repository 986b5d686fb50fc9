// Package qdrant is a vectorindex.Index speaking Qdrant's REST API.
//
// Points are stored with the LangChain payload layout ("page_content",
// "metadata") so collections filled by LangChain tooling can be served
// as-is. Document IDs are mapped onto deterministic UUIDs because Qdrant
// only accepts integers and UUIDs as point IDs; the original ID is kept in
// the "doc_id" payload field.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
	"github.com/google/uuid"
)

const (
	payloadContent  = "page_content"
	payloadMetadata = "metadata"
	payloadDocID    = "doc_id"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

var _ vectorindex.Index = (*Storage)(nil)

func NewStorage(cfg Config) *Storage {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Storage{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     client,
	}
}

type collectionsResponse struct {
	Result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	} `json:"result"`
}

func (s *Storage) ListCollections(ctx context.Context) ([]string, error) {
	var resp collectionsResponse
	if err := s.do(ctx, http.MethodGet, "/collections", nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Result.Collections))
	for _, c := range resp.Result.Collections {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *Storage) EnsureCollection(ctx context.Context, dimension int, recreate bool) error {
	if dimension <= 0 {
		return vectorindex.ErrInvalidDimension
	}

	names, err := s.ListCollections(ctx)
	if err != nil {
		return err
	}
	exists := slices.Contains(names, s.collection)

	if exists && recreate {
		if err := s.do(ctx, http.MethodDelete, s.collectionPath(""), nil, nil); err != nil {
			return err
		}
		exists = false
	}

	if exists {
		size, err := s.vectorSize(ctx)
		if err != nil {
			return err
		}
		if size != dimension {
			return fmt.Errorf("%w: collection %q has size %d, want %d",
				vectorindex.ErrDimensionMismatch, s.collection, size, dimension)
		}
	} else {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		if err := s.do(ctx, http.MethodPut, s.collectionPath(""), body, nil); err != nil {
			return err
		}
	}

	s.dimension = dimension
	return nil
}

type collectionInfoResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// vectorSize reads the unnamed vector size of the collection. Collections
// with named vectors report zero.
func (s *Storage) vectorSize(ctx context.Context) (int, error) {
	var resp collectionInfoResponse
	if err := s.do(ctx, http.MethodGet, s.collectionPath(""), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Config.Params.Vectors.Size, nil
}

func (s *Storage) Upsert(ctx context.Context, docs []vectorindex.Document, vectors [][]float32) error {
	if s.dimension > 0 {
		if err := vectorindex.CheckUpsert(docs, vectors, s.dimension); err != nil {
			return err
		}
	} else if len(docs) != len(vectors) {
		return vectorindex.ErrLengthMismatch
	}
	if len(docs) == 0 {
		return nil
	}

	points := make([]map[string]any, len(docs))
	for i, doc := range docs {
		points[i] = map[string]any{
			"id":     PointID(doc.ID),
			"vector": vectors[i],
			"payload": map[string]any{
				payloadContent:  doc.Content,
				payloadMetadata: doc.Metadata,
				payloadDocID:    doc.ID,
			},
		}
	}
	return s.do(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), map[string]any{"points": points}, nil)
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (s *Storage) Search(ctx context.Context, vector []float32, k int) ([]vectorindex.SearchResult, error) {
	if k <= 0 {
		return []vectorindex.SearchResult{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}

	var resp searchResponse
	if err := s.do(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	results := make([]vectorindex.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := vectorindex.SearchResult{Score: r.Score, ID: fmt.Sprint(r.ID)}
		if v, ok := r.Payload[payloadDocID].(string); ok {
			res.ID = v
		}
		if v, ok := r.Payload[payloadContent].(string); ok {
			res.Content = v
		}
		results = append(results, res)
	}
	return results, nil
}

// PointID maps an arbitrary document ID onto a stable UUID.
func PointID(docID string) string {
	if id, err := uuid.Parse(docID); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String()
}

func (s *Storage) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(s.collection) + suffix
}

func (s *Storage) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("qdrant: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return fmt.Errorf("qdrant: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return nil
}
