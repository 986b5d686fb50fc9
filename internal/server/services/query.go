package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/dmitrijs2005/chatgate/internal/logging"
	"github.com/dmitrijs2005/chatgate/internal/server/embedding"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
)

// Response is the answer to one authenticated query.
type Response struct {
	User     string `json:"user"`
	Response string `json:"response"`
}

// QueryGateway answers a query with the single nearest document.
type QueryGateway struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	timeout  time.Duration
	logger   logging.Logger
}

// NewQueryGateway builds a gateway. A zero timeout leaves the caller's
// deadline as the only bound.
func NewQueryGateway(e embedding.Embedder, idx vectorindex.Index, timeout time.Duration, logger logging.Logger) *QueryGateway {
	return &QueryGateway{
		embedder: e,
		index:    idx,
		timeout:  timeout,
		logger:   logger.With("module", "query_gateway"),
	}
}

// Answer embeds query, fetches its nearest neighbour and returns that
// document's content on behalf of user. user is trusted as authenticated.
func (g *QueryGateway) Answer(ctx context.Context, query, user string) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.ErrInvalidQuery
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	vector, err := g.embedder.Embed(ctx, query)
	if err != nil {
		g.logger.Error(ctx, "embedding failed", "user", user, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamEmbedding, err)
	}

	results, err := g.index.Search(ctx, vector, 1)
	if err != nil {
		g.logger.Error(ctx, "vector search failed", "user", user, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamIndex, err)
	}

	if len(results) == 0 {
		g.logger.Debug(ctx, "no match", "user", user)
		return &Response{User: user, Response: common.NoRelevantInformation}, nil
	}

	g.logger.Debug(ctx, "match", "user", user, "id", results[0].ID, "score", results[0].Score)
	return &Response{User: user, Response: results[0].Content}, nil
}
