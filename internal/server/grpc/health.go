package grpc

import (
	"context"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/dmitrijs2005/chatgate/internal/logging"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Checker reports vector index liveness.
type Checker interface {
	Check(ctx context.Context) error
}

// HealthServer answers Check from the checker on every call. Watch and List
// are left unimplemented.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	checker Checker
	logger  logging.Logger
}

func NewHealthServer(p Checker, l logging.Logger) *HealthServer {
	return &HealthServer{checker: p, logger: l}
}

func (h *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", common.ServiceName:
	default:
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	if err := h.checker.Check(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
