package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	appapi "github.com/DewinU/backend-DSI/internal/app/api"
	catalogmemory "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/DewinU/backend-DSI/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/DewinU/backend-DSI/internal/domains/catalog/ports"
	salesmemory "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/memory"
	salesobs "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/observability"
	salespostgres "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/persistence/postgres"
	salesredis "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/persistence/redis"
	salesapp "github.com/DewinU/backend-DSI/internal/domains/sales/application"
	salesports "github.com/DewinU/backend-DSI/internal/domains/sales/ports"
	"github.com/DewinU/backend-DSI/internal/platform/migrations"
	platformobservability "github.com/DewinU/backend-DSI/internal/platform/observability"
	platformpostgres "github.com/DewinU/backend-DSI/internal/platform/postgres"
	platformredis "github.com/DewinU/backend-DSI/internal/platform/redis"
	saleactivities "github.com/DewinU/backend-DSI/internal/platform/temporal/activities/sales"
	saleworkflows "github.com/DewinU/backend-DSI/internal/platform/temporal/workflows/sales"
)

func main() {
	ctx := context.Background()
	const serviceName = "pos-worker"
	cfg := appapi.LoadConfig()

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
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

	salesService := salesobs.New(
		salesapp.NewService(salesRepo, catalogRepo, salesapp.WithIdempotencyStore(idempotencyStore)),
		salesobs.WithLogger(logger),
		salesobs.WithTracer(instruments.Tracer("internal.sales.application")),
		salesobs.WithMeter(instruments.Meter("internal.sales.application")),
	)
	saleActivities := saleactivities.NewActivities(salesService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, saleworkflows.SaleSettlementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(saleworkflows.SaleSettlementWorkflow, workflow.RegisterOptions{Name: saleworkflows.SaleSettlementWorkflowName})
	w.RegisterActivityWithOptions(saleActivities.PersistSale, activity.RegisterOptions{Name: saleactivities.PersistSaleActivityName})

	logger.Info("worker listening", slog.String("taskQueue", saleworkflows.SaleSettlementTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildRepositories(ctx context.Context, cfg appapi.Config, logger *slog.Logger) (salesports.Repository, catalogports.Repository, func()) {
	db, cleanup := platformpostgres.TryConnect(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		productStore := catalogmemory.NewRepository()
		return salesmemory.NewRepository(productStore), productStore, func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("worker failed to run migrations, falling back to in-memory repositories", slog.String("error", err.Error()))
		cleanup()
		productStore := catalogmemory.NewRepository()
		return salesmemory.NewRepository(productStore), productStore, func() {}
	}
	logger.Info("worker repositories configured with postgres")
	return salespostgres.NewRepository(db), catalogpostgres.NewRepository(db), cleanup
}

func buildIdempotencyStore(ctx context.Context, cfg appapi.Config, logger *slog.Logger) (salesports.IdempotencyStore, func()) {
	client, cleanup := platformredis.TryConnect(ctx, cfg.RedisAddr, logger)
	if client == nil {
		return salesmemory.NewIdempotencyStore(), func() {}
	}
	logger.Info("worker idempotency store configured with redis")
	return salesredis.NewIdempotencyStore(client), cleanup
}
