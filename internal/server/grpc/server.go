// Package grpc serves the standard grpc.health.v1 service, backed by the
// same vector index check as the HTTP health endpoint.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/chatgate/internal/logging"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address string
	health  *HealthServer
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, checker Checker) *GRPCServer {
	logger := l.With("module", "grpc_server")
	return &GRPCServer{
		address: a,
		logger:  logger,
		health:  NewHealthServer(checker, logger),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
