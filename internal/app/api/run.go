package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	posserver "github.com/DewinU/backend-DSI/server"

	catalogmemory "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/DewinU/backend-DSI/internal/domains/catalog/application"
	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"

	salesmemory "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/memory"
	salesobs "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/observability"
	salespostgres "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/persistence/postgres"
	salesredis "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/persistence/redis"
	salesworkflows "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/workflows"
	salesapp "github.com/DewinU/backend-DSI/internal/domains/sales/application"
	salesports "github.com/DewinU/backend-DSI/internal/domains/sales/ports"

	"github.com/DewinU/backend-DSI/internal/platform/migrations"
	platformobservability "github.com/DewinU/backend-DSI/internal/platform/observability"
	platformpostgres "github.com/DewinU/backend-DSI/internal/platform/postgres"
	platformredis "github.com/DewinU/backend-DSI/internal/platform/redis"
)

// Run boots the POS HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "pos-api"
	cfg := LoadConfig()

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	salesRepo, catalogRepo, cleanupRepos := buildRepositories(ctx, cfg, logger)
	defer cleanupRepos()

	idempotencyStore, cleanupIdempotency := buildIdempotencyStore(ctx, cfg, logger)
	defer cleanupIdempotency()

	catalogService := catalogobs.New(
		catalogapp.NewService(catalogRepo),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	salesService := salesobs.New(
		salesapp.NewService(salesRepo, catalogRepo, salesapp.WithIdempotencyStore(idempotencyStore)),
		salesobs.WithLogger(logger),
		salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
		salesobs.WithMeter(instruments.Meter("internal.sales.application")),
	)

	var saleWorkflows salesports.WorkflowOrchestrator = salesworkflows.NewInlineSaleWorkflows(salesService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline CreateSale", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		saleWorkflows = salesworkflows.NewTemporalSaleWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := posserver.ApiHandleFunctions{
		SalesAPI:   posserver.NewSalesAPI(salesService, saleWorkflows),
		CatalogAPI: posserver.NewCatalogAPI(catalogService),
	}

	// Middleware must be attached before the routes so gin folds it into
	// every handler chain.
	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := posserver.NewRouterWithGinEngine(engine, handlers)
	addr := ":" + cfg.Port
	logger.Info("POS API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("POS API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildRepositories wires the sales and catalog repositories against Postgres
// when a DSN is configured, falling back to a shared in-memory product store so
// stock debits stay visible to both contexts.
func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (salesports.Repository, catalogports.Repository, func()) {
	db, cleanup := platformpostgres.TryConnect(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		productStore := catalogmemory.NewRepository()
		return salesmemory.NewRepository(productStore), productStore, func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to in-memory repositories", slog.String("error", err.Error()))
		cleanup()
		productStore := catalogmemory.NewRepository()
		return salesmemory.NewRepository(productStore), productStore, func() {}
	}
	logger.Info("repositories configured with postgres")
	return salespostgres.NewRepository(db), catalogpostgres.NewRepository(db), cleanup
}

func buildIdempotencyStore(ctx context.Context, cfg Config, logger *slog.Logger) (salesports.IdempotencyStore, func()) {
	client, cleanup := platformredis.TryConnect(ctx, cfg.RedisAddr, logger)
	if client == nil {
		return salesmemory.NewIdempotencyStore(), func() {}
	}
	logger.Info("idempotency store configured with redis")
	return salesredis.NewIdempotencyStore(client), cleanup
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
