// Package server wires the gateway together: credentials, tokens, the
// embedding provider and the vector index backend. It provisions the index
// and runs the HTTP API and the gRPC health service until shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/chatgate/internal/logging"
	"github.com/dmitrijs2005/chatgate/internal/server/auth"
	"github.com/dmitrijs2005/chatgate/internal/server/config"
	"github.com/dmitrijs2005/chatgate/internal/server/credentials"
	"github.com/dmitrijs2005/chatgate/internal/server/embedding"
	"github.com/dmitrijs2005/chatgate/internal/server/httpapi"
	"github.com/dmitrijs2005/chatgate/internal/server/seed"
	"github.com/dmitrijs2005/chatgate/internal/server/services"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex/memory"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex/postgres"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex/qdrant"

	gs "github.com/dmitrijs2005/chatgate/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	index       vectorindex.Index
	provisioner *services.Provisioner
	httpServer  *httpapi.Server
	grpcServer  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	store, err := credentials.NewMemoryStore(c.Users)
	if err != nil {
		return nil, fmt.Errorf("credentials init error: %w", err)
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenLifetime)

	embedder := newEmbedder(c)

	index, err := newIndex(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("vector index init error: %w", err)
	}

	authService, err := services.NewAuthService(store, tokens, logger)
	if err != nil {
		return nil, err
	}
	gateway := services.NewQueryGateway(embedder, index, c.QueryTimeout, logger)
	health := services.NewHealthService(index, logger)

	loader := seed.NewLoader(seed.S3Config{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
	provisioner := services.NewProvisioner(index, embedder, loader, services.ProvisionOptions{
		Recreate:   c.RecreateCollection,
		SeedSource: c.SeedSource,
	}, logger)

	handler := httpapi.NewHandler(authService, tokens, gateway, health, logger)

	return &App{
		config:      c,
		logger:      logger,
		index:       index,
		provisioner: provisioner,
		httpServer:  httpapi.NewServer(c.HTTPAddr, handler.Routes(), logger),
		grpcServer:  gs.NewGRPCServer(c.GRPCAddr, logger, health),
	}, nil
}

func newEmbedder(c *config.Config) *embedding.OpenAI {
	opts := []embedding.Option{
		embedding.WithModel(c.EmbeddingModel),
		embedding.WithDimension(c.EmbeddingDimension),
	}
	if c.EmbeddingBaseURL != "" {
		opts = append(opts, embedding.WithBaseURL(c.EmbeddingBaseURL))
	}
	return embedding.NewOpenAI(c.OpenAIAPIKey, opts...)
}

func newIndex(ctx context.Context, c *config.Config) (vectorindex.Index, error) {
	switch c.IndexBackend {
	case config.IndexQdrant:
		return qdrant.NewStorage(qdrant.Config{
			URL:        c.QdrantURL,
			APIKey:     c.QdrantAPIKey,
			Collection: c.Collection,
		}), nil
	case config.IndexPostgres:
		store, err := postgres.Open(ctx, c.DatabaseDSN, c.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.IndexMemory:
		return memory.New(c.Collection), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", c.IndexBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

// firstError keeps the first error reported by any server goroutine.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner, errs *firstError) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
		errs.set(fmt.Errorf("%s server: %w", name, err))
		cancelFunc()
	}
}

// Run provisions the index, then serves until a signal arrives or ctx is
// cancelled. A provisioning failure is returned before any listener opens;
// otherwise the first server failure, if any, is returned after both
// servers have stopped.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "index_backend", app.config.IndexBackend, "collection", app.config.Collection)

	app.initSignalHandler(cancelFunc)

	defer app.closeIndexIfNeeded(ctx)

	if err := app.provisioner.Provision(ctx); err != nil {
		return fmt.Errorf("provision index: %w", err)
	}

	var (
		wg   sync.WaitGroup
		errs firstError
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.httpServer, &errs)
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc", app.grpcServer, &errs)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return errs.get()
}

func (app *App) closeIndexIfNeeded(ctx context.Context) {
	c, ok := app.index.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		app.logger.Error(ctx, "closing index", "error", err)
	}
}
