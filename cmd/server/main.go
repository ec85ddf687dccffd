package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oleawatch/oleawatch/internal"
	"github.com/oleawatch/oleawatch/internal/dossier"
	"github.com/oleawatch/oleawatch/internal/email"
	"github.com/oleawatch/oleawatch/internal/handler"
	"github.com/oleawatch/oleawatch/internal/jobs"
	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/middleware"
	"github.com/oleawatch/oleawatch/internal/repository"
	"github.com/oleawatch/oleawatch/internal/sentiment"
	sentimenthttp "github.com/oleawatch/oleawatch/internal/sentiment/httpapi"
	sentimentmock "github.com/oleawatch/oleawatch/internal/sentiment/mock"
	"github.com/oleawatch/oleawatch/internal/service"
	"github.com/oleawatch/oleawatch/internal/storage"
	"github.com/oleawatch/oleawatch/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository and transactor
	repo := repository.New(db)
	tx := service.NewTransactor(db)

	// Initialize blob storage
	files, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize outbound mail
	mailer, err := email.NewSMTPEmailService(email.SMTPConfig{
		Host:            cfg.SMTPHost,
		Port:            cfg.SMTPPort,
		Username:        cfg.SMTPUsername,
		Password:        cfg.SMTPPassword,
		From:            cfg.SMTPFrom,
		FromName:        cfg.SMTPFromName,
		ComplianceInbox: cfg.ComplianceInbox,
	}, cfg.BaseURL, logger)
	if err != nil {
		return fmt.Errorf("email initialization failed: %w", err)
	}

	// Initialize sentiment provider
	provider, err := newSentimentProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("sentiment provider initialization failed: %w", err)
	}

	// Initialize services
	actorService := service.NewActorService(repo, logger)
	reportService := service.NewReportService(repo, tx, logger)
	workflowService := service.NewWorkflowService(repo, tx, mailer, logger)
	feedbackService := service.NewFeedbackService(tx, workflowService, logger)
	mentionService := service.NewMentionService(repo, tx, logger)
	attachmentService := service.NewAttachmentService(repo, files, logger)
	dossierService := service.NewDossierService(repo, []dossier.Generator{
		dossier.NewPDFGenerator(),
		dossier.NewDOCXGenerator(),
	}, logger)

	// Initialize background worker
	var jobWorker *worker.Worker
	if cfg.WorkerEnabled {
		jobWorker, err = worker.New(db, repo, worker.Config{
			Concurrency:  cfg.WorkerConcurrency,
			PollInterval: cfg.WorkerPollInterval,
			JobTimeout:   cfg.WorkerJobTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		jobWorker.Register(jobs.NewScoreMentionHandler(mentionService, provider, logger))
		jobWorker.Register(jobs.NewOverdueClarificationsHandler(repo, tx, reportService, mailer, logger))
		jobWorker.Start(ctx)
		logger.Info("Worker started", "concurrency", cfg.WorkerConcurrency)

		go runOverdueScheduler(ctx, repo, cfg.OverdueSweepInterval, logger)
	}

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(actorService, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(cfg.Env != "development")
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	ingestLimits := middleware.NewIngestRateLimiter(logger)

	// Initialize handlers
	reportHandler := handler.NewReportHandler(reportService, logger)
	workflowHandler := handler.NewWorkflowHandler(workflowService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	mentionHandler := handler.NewMentionHandler(mentionService, logger)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, logger)
	operatorHandler := handler.NewOperatorHandler(actorService, logger)
	dossierHandler := handler.NewDossierHandler(dossierService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// All API routes require an authenticated operator
	protect := middleware.Stack(authMw.WithOperator, authMw.RequireOperator)

	reportHandler.RegisterRoutes(mux, protect)
	workflowHandler.RegisterRoutes(mux, protect)
	feedbackHandler.RegisterRoutes(mux, protect)
	operatorHandler.RegisterRoutes(mux, protect)
	dossierHandler.RegisterRoutes(mux, protect)
	mentionHandler.RegisterRoutes(mux, protect, ingestLimits.LimitMentions)
	attachmentHandler.RegisterRoutes(mux, protect, ingestLimits.LimitUploads)

	// Outer middleware: security headers, request logging, HTTP metrics
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if jobWorker != nil {
		jobWorker.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the configured blob storage backend.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.StorageProvider == "r2" {
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	}
	return storage.NewLocalStorage(storage.LocalConfig{
		BasePath: cfg.LocalStoragePath,
		BaseURL:  cfg.LocalStorageURL,
	}, logger)
}

// newSentimentProvider builds the configured sentiment scoring backend.
func newSentimentProvider(cfg *internal.Config, logger *slog.Logger) (sentiment.Provider, error) {
	if cfg.SentimentProvider == "http" {
		return sentimenthttp.New(sentimenthttp.Config{
			BaseURL: cfg.SentimentAPIURL,
			APIKey:  cfg.SentimentAPIKey,
			ProviderConfig: sentiment.ProviderConfig{
				MaxRetries:     cfg.SentimentMaxRetries,
				RetryBaseDelay: cfg.SentimentRetryBaseDelay,
				RequestTimeout: cfg.SentimentRequestTimeout,
			},
		}, logger)
	}
	return sentimentmock.New(logger), nil
}

// runOverdueScheduler enqueues the overdue clarification sweep on a fixed
// interval. The worker pool picks the job up like any other.
func runOverdueScheduler(ctx context.Context, repo *repository.Queries, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := worker.EnqueueClarificationOverdue(ctx, repo); err != nil {
				logger.Error("failed to enqueue overdue sweep", "error", err)
			}
		}
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
