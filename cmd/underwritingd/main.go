package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/middleware"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/internal/infrastructure/adapter"
	"github.com/bibbank/underwriting/internal/infrastructure/cache"
	"github.com/bibbank/underwriting/internal/infrastructure/config"
	"github.com/bibbank/underwriting/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/underwriting/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/underwriting/internal/presentation/grpc"
	"github.com/bibbank/underwriting/internal/presentation/rest"
	"github.com/bibbank/underwriting/migrations"
	"github.com/bibbank/underwriting/pkg/auth"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
	"github.com/bibbank/underwriting/pkg/observability"
	pkgpostgres "github.com/bibbank/underwriting/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("underwriting-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := observability.InitLogger(cfg.Log)
	logger.Info("starting underwriting-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck

	scoringMetrics, err := observability.NewScoringMetrics(otel.Meter("github.com/bibbank/underwriting"))
	if err != nil {
		return fmt.Errorf("init scoring metrics: %w", err)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, cfg.Postgres())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if cfg.DB.Migrate {
		if err := pkgpostgres.RunMigrations(cfg.Postgres().DSN(), migrations.FS); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Wire infrastructure adapters.
	submissionRepo := pgRepo.NewSubmissionRepository(pool)
	outboxRepo := pgRepo.NewOutboxRepository(pool)

	var guidelineRepo port.GuidelineRepository = pgRepo.NewGuidelineRepository(pool)
	readiness := map[string]rest.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}
	if cfg.Redis.GuidelineTTL > 0 {
		store, err := cache.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis unavailable, guideline cache disabled", "error", err)
		} else {
			defer store.Close()
			guidelineRepo = cache.NewCachedGuidelineRepository(guidelineRepo, store, cfg.Redis.GuidelineTTL, logger)
			readiness["redis"] = store.Ping
		}
	}

	kafkaProducer, err := pkgkafka.NewProducer(cfg.KafkaClient())
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer kafkaProducer.Close()
	publisher := kafka.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger)

	var checker port.ClearanceChecker = adapter.NewRepositoryClearanceChecker(submissionRepo)
	if cfg.UseStubClearance {
		logger.Warn("using stub clearance checker; duplicate submissions will not be flagged")
		checker = adapter.NewStubClearanceChecker()
	}

	// Wire use cases behind the standard middleware chain.
	v := validator.New(validator.WithRequiredStructEnabled())
	uc := grpcPresentation.UseCases{
		CreateSubmission: middleware.Standard("create_submission",
			usecase.NewCreateSubmissionUseCase(submissionRepo, logger).Execute, v, logger),
		GetSubmission: middleware.Standard("get_submission",
			usecase.NewGetSubmissionUseCase(submissionRepo).Execute, v, logger),
		ListSubmissions: middleware.Standard("list_submissions",
			usecase.NewListSubmissionsUseCase(submissionRepo).Execute, v, logger),
		TransitionSubmission: middleware.Standard("transition_submission",
			usecase.NewTransitionSubmissionUseCase(submissionRepo, logger).Execute, v, logger),
		RunClearance: middleware.Standard("run_clearance",
			usecase.NewRunClearanceUseCase(submissionRepo, checker, logger).Execute, v, logger),
		ScoreSubmission: middleware.Standard("score_submission",
			usecase.NewScoreSubmissionUseCase(submissionRepo, guidelineRepo, cfg.Scoring, scoringMetrics, logger).Execute, v, logger),
		PriceSubmission: middleware.Standard("price_submission",
			usecase.NewPriceSubmissionUseCase(submissionRepo, guidelineRepo, service.NewPricingService()).Execute, v, logger),
		AssessExtractionQuality: middleware.Standard("assess_extraction_quality",
			usecase.NewAssessExtractionQualityUseCase(cfg.Scoring.DataQuality, scoringMetrics, logger).Execute, v, logger),
		CreateGuideline: middleware.Standard("create_guideline",
			usecase.NewCreateGuidelineUseCase(guidelineRepo, logger).Execute, v, logger),
		ChangeGuidelineStatus: middleware.Standard("change_guideline_status",
			usecase.NewChangeGuidelineStatusUseCase(guidelineRepo, logger).Execute, v, logger),
	}
	dispatch := middleware.Standard("dispatch_outbox",
		usecase.NewDispatchOutboxUseCase(outboxRepo, publisher, logger).Execute, v, logger)

	// JWT service: a public key makes it validation-only.
	jwtSvc, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.NewUnderwritingHandler(uc), logger, jwtSvc,
		grpcPresentation.ServerOptions{TLS: cfg.TLS, Reflection: cfg.GRPCReflection})
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	// HTTP server (health checks and metrics).
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           rest.NewHealthHandler(cfg.ServiceName, readiness, metricsHandler, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers and the outbox dispatcher.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		runOutboxDispatcher(ctx, dispatch, cfg.Outbox, logger)
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
		cancel()
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	<-dispatcherDone

	logger.Info("underwriting-service stopped")
	return nil
}

// runOutboxDispatcher relays unpublished outbox entries to Kafka until ctx is
// done. A failed batch is retried on the next tick.
func runOutboxDispatcher(
	ctx context.Context,
	dispatch middleware.Handler[dto.DispatchOutboxRequest, dto.DispatchOutboxResponse],
	cfg config.OutboxConfig,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain while full batches keep coming back.
			for ctx.Err() == nil {
				resp, err := dispatch(ctx, dto.DispatchOutboxRequest{BatchSize: cfg.BatchSize})
				if err != nil {
					logger.WarnContext(ctx, "outbox dispatch failed", "error", err)
					break
				}
				if resp.Published < cfg.BatchSize {
					break
				}
			}
		}
	}
}
