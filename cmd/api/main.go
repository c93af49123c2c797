package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "plan-review/docs" // Swagger docs
	"plan-review/internal/auth"
	"plan-review/internal/config"
	"plan-review/internal/database"
	"plan-review/internal/events"
	"plan-review/internal/handlers"
	"plan-review/internal/logger"
	"plan-review/internal/middleware"
	"plan-review/internal/repository"
	"plan-review/internal/scheduler"
	"plan-review/internal/topics"
	"plan-review/internal/vault"
	"plan-review/internal/workflow"
	"plan-review/migrations"

	httpSwagger "github.com/swaggo/http-swagger"
)

// startupTimeout bounds each dependency setup step
const startupTimeout = 30 * time.Second

// @title Plan Review API
// @version 1.0
// @description Assessor/reviewer workflow for the sub-topics of planning applications

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Setup(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", logger.GetLevel(cfg.App.LogLevel),
	)

	ctx, cancel := getContext(startupTimeout)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Database connection established")

	if err := database.NewMigrationExecutor(db.DB).RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	registry, err := loadTopics(&cfg.Topics)
	if err != nil {
		return err
	}
	slog.Info("Topic registry loaded", "topics", len(registry.Topics()))

	var (
		sealer      workflow.CommentSealer
		vaultClient *vault.Client
	)
	if cfg.Vault.Enabled {
		vaultClient, err = vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			TransitMount: cfg.Vault.TransitMount,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize vault client: %w", err)
		}
		commentSealer, err := vault.NewCommentSealer(ctx, vaultClient, cfg.Vault.KeyName)
		if err != nil {
			return fmt.Errorf("failed to initialize comment sealing: %w", err)
		}
		sealer = commentSealer
		slog.Info("Rejection comments are sealed with Vault transit", "key", cfg.Vault.KeyName)
	} else {
		slog.Warn("Vault disabled, rejection comments are stored in plain text")
	}

	// Repositories
	reviewRepo := repository.NewReviewRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	// Events
	dispatcher := events.NewDispatcher(cfg.Events.DeliveryTimeout)
	dispatcher.Subscribe("audit", events.NewAuditSubscriber(auditRepo))
	dispatcher.Subscribe("log", events.LogSubscriber{})

	coord := workflow.NewCoordinator(reviewRepo, registry, dispatcher, sealer)

	// Scheduler
	sched := scheduler.NewScheduler(reviewRepo, auditRepo, &cfg.Scheduler)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Middleware
	authMw := middleware.NewAuthMiddleware(auth.NewService(&cfg.JWT))
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()
	auditMw := middleware.NewAuditMiddleware(auditRepo)

	// Handlers
	reviewHandler := handlers.NewReviewHandler(coord)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	healthChecks := map[string]handlers.HealthCheck{"database": db.HealthCheck}
	if vaultClient != nil {
		healthChecks["vault"] = vaultClient.Health
	}
	healthHandler := handlers.NewHealthHandler(cfg.App.Version, healthChecks)

	mux := http.NewServeMux()
	reviewHandler.RegisterRoutes(mux, authMw, auditMw)
	mux.Handle("GET "+handlers.APIBasePath+"/audit-logs",
		authMw.Authenticate(
			middleware.RequireRole(auth.RoleReviewer)(
				http.HandlerFunc(auditHandler.ListAuditLogs),
			),
		),
	)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	slog.Info("Server shutting down...")

	shutdownCtx, cancelShutdown := getContext(cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	sched.Stop()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Error("Event deliveries did not finish", "error", err)
	}

	slog.Info("Server stopped")
	return runErr
}

func loadTopics(cfg *config.TopicsConfig) (*topics.Registry, error) {
	if cfg.Path == "" {
		registry, err := topics.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in topics: %w", err)
		}
		return registry, nil
	}

	registry, err := topics.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics from %s: %w", cfg.Path, err)
	}
	return registry, nil
}
