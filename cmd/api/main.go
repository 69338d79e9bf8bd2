package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "me-platform/docs" // This is for Swagger
	"me-platform/internal/auth"
	"me-platform/internal/config"
	"me-platform/internal/database"
	"me-platform/internal/email"
	"me-platform/internal/handlers"
	"me-platform/internal/logger"
	"me-platform/internal/middleware"
	"me-platform/internal/repository"
	"me-platform/internal/scheduler"
	"me-platform/internal/service"
	"me-platform/internal/vault"
	"me-platform/migrations"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title M&E Platform API
// @version 1.0
// @description Monitoring and evaluation reporting API with staged review workflow

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	ctx := context.Background()

	// Overlay secrets from Vault before validating
	var vaultClient *vault.Client
	if cfg.Vault.Enabled {
		vaultClient, err = vault.NewClient(&cfg.Vault)
		if err != nil {
			slog.Error("Failed to initialize Vault client", "error", err)
			os.Exit(1)
		}
		if err := vaultClient.ApplySecrets(ctx, cfg); err != nil {
			slog.Error("Failed to read secrets from Vault", "path", cfg.Vault.SecretPath, "error", err)
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
		"strict_stage", cfg.Workflow.StrictStage,
		"vault", cfg.Vault.Enabled,
	)

	// Initialize database
	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	var migrationFS fs.FS = migrations.FS
	if cfg.Database.MigrationsDir != "" {
		migrationFS = os.DirFS(cfg.Database.MigrationsDir)
	}
	if err := database.NewMigrationExecutor(db).Up(ctx, migrationFS); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	taxonomyRepo := repository.NewTaxonomyRepository(db)
	reportRepo := repository.NewReportRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	if !emailService.Enabled() {
		slog.Warn("SMTP_HOST is empty - review notifications are logged only")
	}

	auditSvc := service.NewAuditService(auditRepo)
	taxonomySvc := service.NewTaxonomyService(taxonomyRepo, roleRepo)
	reportSvc := service.NewReportService(reportRepo, taxonomySvc, userRepo, emailService, cfg.Workflow.StrictStage)
	analyticsSvc := service.NewAnalyticsService(reportRepo, projectRepo)
	projectSvc := service.NewProjectService(projectRepo, taxonomySvc)
	authSvc := service.NewAuthService(userRepo, sessionRepo, authService)
	userSvc := service.NewUserService(userRepo, sessionRepo, authService)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(reportRepo, userRepo, authSvc, emailService, auditSvc, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, sessionRepo)
	auditMw := middleware.NewAuditMiddleware(auditSvc)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	checks := map[string]handlers.HealthChecker{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}
	if vaultClient != nil {
		checks["vault"] = vaultClient.Health
	}

	// Setup router
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, auditMw),
		Reports:  handlers.NewReportHandler(reportSvc, analyticsSvc, auditMw),
		Projects: handlers.NewProjectHandler(projectSvc, auditMw),
		Taxonomy: handlers.NewTaxonomyHandler(taxonomySvc),
		Users:    handlers.NewUserHandler(userSvc, auditMw),
		Audit:    handlers.NewAuditHandler(auditSvc),
		Sessions: handlers.NewSessionHandler(authSvc, userSvc, auditMw),
		Config:   handlers.NewConfigHandler(cfg),
		Health:   handlers.NewHealthHandler(cfg.App.Version, checks),
	}, authMw, auditMw)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.RequestID(
		middleware.LoggingMiddleware(
			middleware.SecurityHeaders(
				corsMw.Handler(
					rateLimiter.Limit(mux),
				),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		slog.Error("Server failed to start", "error", err)
		return
	}

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped")
}
