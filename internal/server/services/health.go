package services

import (
	"context"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/dmitrijs2005/chatgate/internal/logging"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
)

// HealthService reports whether the vector index answers.
type HealthService struct {
	index  vectorindex.Index
	logger logging.Logger
}

func NewHealthService(idx vectorindex.Index, logger logging.Logger) *HealthService {
	return &HealthService{index: idx, logger: logger.With("module", "health_service")}
}

// Check returns common.ErrHealthCheck when listing collections fails. The
// underlying cause is only logged.
func (h *HealthService) Check(ctx context.Context) error {
	if _, err := h.index.ListCollections(ctx); err != nil {
		h.logger.Error(ctx, "health check failed", "error", err)
		return common.ErrHealthCheck
	}
	return nil
}
