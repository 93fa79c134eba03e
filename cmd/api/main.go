package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arihant25/isitopen/internal/auth"
	"github.com/Arihant25/isitopen/internal/background"
	"github.com/Arihant25/isitopen/internal/config"
	"github.com/Arihant25/isitopen/internal/database"
	"github.com/Arihant25/isitopen/internal/handlers"
	middlewareCustom "github.com/Arihant25/isitopen/internal/middleware"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/repositories"
	"github.com/Arihant25/isitopen/internal/routes"
	"github.com/Arihant25/isitopen/internal/services"
	pkglogger "github.com/Arihant25/isitopen/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Run migrations before opening the pool
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, cfg.Database.DSN()); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	canteenRepo := repositories.NewCanteenRepository(db)
	rateLimitRepo := repositories.NewRateLimitRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	voteRepo := repositories.NewVoteRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Persistent limiter
	rateLimitService := services.NewRateLimitService(rateLimitRepo, services.RateLimitConfig{
		MaxAttempts:     cfg.Guardrail.MaxAttempts,
		LockoutDuration: cfg.Guardrail.LockoutDuration,
		AttemptReset:    cfg.Guardrail.AttemptReset,
	}, logger)

	// In-memory pattern detector
	detector := services.NewGuardrailService(services.GuardrailConfig{
		Window:            cfg.Guardrail.VelocityWindow,
		SoftLimit:         cfg.Guardrail.SoftLimit,
		HardLimit:         cfg.Guardrail.HardLimit,
		HardBlockDuration: cfg.Guardrail.HardBlockDuration,
		EnumerationWindow: cfg.Guardrail.EnumerationWindow,
	}, logger)

	// Operator alerts on new hard blocks
	var alerts services.AlertService = services.NoopAlertService{}
	if cfg.Alerts.AlertsEnabled() {
		sesAlerts, err := services.NewSESAlertService(
			cfg.Alerts.AWSRegion,
			cfg.Alerts.FromAddress,
			cfg.Alerts.ToAddress,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize alert service", slog.Any("error", err))
			os.Exit(1)
		}
		alerts = sesAlerts
	}
	detector.OnHardBlock(func(endpoint, ip, deviceID, reason string, until time.Time) {
		auditLogger.LogHardBlock(endpoint, ip, deviceID, reason, until)
		alerts.NotifyHardBlock(endpoint, ip, deviceID, reason, until)
	})

	// Admin session tokens
	tokenManager := auth.NewTokenManager(cfg.Admin.TokenSecret, cfg.Admin.TokenExpiry)

	// Initialize services
	analyticsService := services.NewAnalyticsService(analyticsRepo, logger)
	canteenService := services.NewCanteenService(canteenRepo, analyticsService, logger)
	voteService := services.NewVoteService(voteRepo)
	adminService := services.NewAdminService(settingsRepo, canteenRepo, rateLimitService, tokenManager, cfg.Admin.InitialPIN, logger)

	// Initialize handlers
	gate := handlers.NewPINGate(detector, rateLimitService, auditLogger)
	canteenHandler := handlers.NewCanteenHandler(canteenService, analyticsService, gate)
	adminHandler := handlers.NewAdminHandler(adminService, gate, auditLogger)
	voteHandler := handlers.NewVoteHandler(voteService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Seed the canteen roster and admin PIN
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := canteenRepo.EnsureSeeded(seedCtx, models.SeedCanteens); err != nil {
		logger.Error("failed to seed canteens", slog.Any("error", err))
	}
	if err := adminService.EnsurePIN(seedCtx); err != nil {
		logger.Error("failed to seed admin pin", slog.Any("error", err))
	}
	seedCancel()

	// Cleanup manager
	cleanupManager := background.NewCleanupManager(
		rateLimitRepo,
		canteenRepo,
		voteRepo,
		analyticsRepo,
		detector,
		cfg.Guardrail.AttemptReset,
		logger,
		cfg.Guardrail.CleanupInterval,
	)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, canteenHandler, adminHandler, voteHandler, analyticsHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		stats := db.Stats()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","database":"up","pool_total":%d,"pool_idle":%d}`,
			stats.TotalConns(), stats.IdleConns())
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
