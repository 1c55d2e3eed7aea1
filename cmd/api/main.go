package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/ticket-metrics/internal/adapters/primary/http"
	mw "github.com/lorrc/ticket-metrics/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-metrics/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/email"
	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/spreadsheet"
	"github.com/lorrc/ticket-metrics/internal/auth"
	"github.com/lorrc/ticket-metrics/internal/config"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
	"github.com/lorrc/ticket-metrics/internal/core/services"
	"github.com/lorrc/ticket-metrics/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	schemas, err := config.LoadSchemas(cfg.Source.SchemaFile)
	if err != nil {
		logger.Error("failed to load column schema", "error", err)
		os.Exit(1)
	}

	// 3. Ticket & Indicator Sources
	ctx := context.Background()
	checkers := map[string]httpAdapter.HealthChecker{}

	var (
		ticketSource ports.TicketSource
		pool         *pgxpool.Pool
	)
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		pool, err = openDatabase(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgSource := postgres.NewTicketSource(pool, cfg.Source.Dataset)
		ticketSource = pgSource
		checkers["database"] = pgSource
	default:
		fileSource := spreadsheet.NewFileTicketSource(filepath.Base(cfg.Source.SLAFile), cfg.Source.SLAFile, schemas.Tickets)
		ticketSource = fileSource
		checkers["tickets"] = fileSource
	}

	indicatorSource := spreadsheet.NewFileIndicatorSource(cfg.Source.IndicatorsFile, schemas.Indicators)
	checkers["indicators"] = indicatorSource

	// 4. Real-time Components
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := websocket.NewHub(logger)
	go hub.Run(hubCtx)

	// 5. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter, uploadRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer generalRateLimiter.Stop()

		authRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
		defer authRateLimiter.Stop()

		uploadConfig := mw.UploadRateLimiterConfig()
		uploadConfig.RequestsPerSecond = cfg.RateLimit.UploadRPS
		uploadConfig.BurstSize = cfg.RateLimit.UploadBurst
		uploadRateLimiter = mw.NewRateLimiter(uploadConfig)
		defer uploadRateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Notifier (Secondary Adapter)
	notifier := email.NewMockSMTPNotifier(logger)

	// Services (Core)
	slaService := services.NewSLAService(ticketSource, notifier, hub, services.SLAConfig{
		ThresholdHours:  cfg.SLA.ThresholdHours,
		TargetPercent:   cfg.SLA.TargetPercent,
		MeanScope:       domain.MeanScope(cfg.SLA.MeanScope),
		AlertRecipients: cfg.Alerts.Recipients,
	}, logger)
	indicatorService := services.NewIndicatorService(indicatorSource, schemas.Indicators, logger)

	var tokenManager *auth.TokenManager
	var authHandler *httpAdapter.AuthHandler
	if cfg.Auth.Enabled {
		tokenManager = auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
		authService := services.NewAuthService(cfg.Auth.ViewerUsername, cfg.Auth.ViewerPasswordHash)
		authHandler = httpAdapter.NewAuthHandler(authService, tokenManager, errorHandler, logger)
	} else {
		logger.Warn("viewer authentication is disabled")
	}

	// Handlers (Primary Adapters)
	slaHandler := httpAdapter.NewSLAHandler(slaService, schemas.Tickets, cfg.Server.MaxUploadBytes, errorHandler, logger)
	indicatorHandler := httpAdapter.NewIndicatorHandler(indicatorService, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, ticketSource.Dataset(), logger)
	healthHandler := httpAdapter.NewHealthHandler(checkers, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)

	var uploadLimit func(http.Handler) http.Handler
	if uploadRateLimiter != nil {
		uploadLimit = uploadRateLimiter.Middleware
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes with stricter rate limiting
		if authHandler != nil {
			r.Group(func(r chi.Router) {
				if authRateLimiter != nil {
					r.Use(authRateLimiter.Middleware)
				}
				r.Route("/auth", authHandler.RegisterRoutes)
			})
		}

		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Dashboard routes, protected when auth is enabled
		r.Group(func(r chi.Router) {
			if tokenManager != nil {
				r.Use(mw.JWTMiddleware(tokenManager))
			}
			r.Route("/sla", func(r chi.Router) {
				slaHandler.RegisterRoutes(r, uploadLimit)
			})
			r.Route("/indicators", indicatorHandler.RegisterRoutes)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Warm the snapshot cache. A failure is retried on the first request.
	if _, err := slaService.Overview(ctx, ports.OverviewParams{}); err != nil {
		logger.Warn("initial dataset load failed", "dataset", ticketSource.Dataset(), "error", err)
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	stopHub()
	slaService.Shutdown()

	logger.Info("server shutdown complete")
}

// openDatabase connects the pool and applies migrations when asked to.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.Database.RunMigrations {
		if err := postgres.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied", "path", cfg.Database.MigrationsPath)
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")
	return pool, nil
}
