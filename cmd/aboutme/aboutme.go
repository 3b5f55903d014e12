package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"aboutme/internal/api"
	"aboutme/internal/auth"
	"aboutme/internal/config"
	"aboutme/internal/logger"
	"aboutme/internal/models"
	"aboutme/internal/observability"
	"aboutme/internal/profile"
	"aboutme/internal/ratelimit"
	"aboutme/internal/storage"
	"aboutme/internal/version"
)

var configFile = flag.String("config", "", "Path to configuration file")

func main() {
	flag.Parse()

	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// Initialize storage
	factory := storage.NewFactory()
	if err := factory.ValidateConfig(cfg.Storage); err != nil {
		slog.Error("Invalid storage configuration", "error", err)
		os.Exit(1)
	}
	storageInstance, err := factory.Create(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer storageInstance.Close()

	// Wrap storage with instrumentation if metrics are enabled
	var activeStorage storage.Storage = storageInstance
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedStorage(storageInstance)
		if err != nil {
			slog.Error("Failed to create instrumented storage", "error", err)
			os.Exit(1)
		}
		activeStorage = instrumented
	}

	// Initialize sessions and the profile service
	sessions, err := auth.NewSessionManager(cfg.Security.SessionSecret, cfg.Security.SessionTTL)
	if err != nil {
		slog.Error("Failed to initialize session manager", "error", err)
		os.Exit(1)
	}
	profileService := profile.NewService(activeStorage, sessions, cfg.Site.BaseURL)

	// Initialize HTTP handlers
	handlers := api.NewHandlers(profileService, sessions, cfg)

	// Setup routes with middleware
	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	// Initialize rate limiter if enabled
	if cfg.Security.RateLimit.Enabled {
		limiter := ratelimit.NewMemoryLimiter(
			ratelimit.WithBudgets(budgetsFromConfig(cfg.Security.RateLimit)),
		)
		routeOpts = append(routeOpts, api.WithRateLimiter(ratelimit.Middleware(limiter)))
	}

	router := api.SetupRoutes(handlers, cfg, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "addr", server.Addr)

		var err error
		if cfg.Server.TLSEnabled {
			if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
				slog.Error("TLS is enabled but cert file or key file is not specified")
				os.Exit(1)
			}
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	// Create a deadline to wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown metrics server
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}

// budgetsFromConfig converts the configured per-class limits into limiter
// budgets. Zero values are left out so the limiter's defaults apply.
func budgetsFromConfig(cfg models.RateLimitConfig) map[ratelimit.Class]ratelimit.Budget {
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	budgets := make(map[ratelimit.Class]ratelimit.Budget)
	if cfg.APIPerWindow > 0 {
		budgets[ratelimit.ClassAPI] = ratelimit.Budget{MaxRequests: cfg.APIPerWindow, Window: window}
	}
	if cfg.UsernamePerWindow > 0 {
		budgets[ratelimit.ClassUsernameCheck] = ratelimit.Budget{MaxRequests: cfg.UsernamePerWindow, Window: window}
	}
	if cfg.AuthPerWindow > 0 {
		budgets[ratelimit.ClassAuth] = ratelimit.Budget{MaxRequests: cfg.AuthPerWindow, Window: window}
	}
	if cfg.GeneralPerWindow > 0 {
		budgets[ratelimit.ClassGeneral] = ratelimit.Budget{MaxRequests: cfg.GeneralPerWindow, Window: window}
	}
	return budgets
}
