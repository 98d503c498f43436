package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	echoapi "go.pilab.hu/grants/api/echo"
	"go.pilab.hu/grants/config"
	"go.pilab.hu/grants/internal/audit"
	"go.pilab.hu/grants/internal/metrics"
	"go.pilab.hu/grants/internal/server"
	"go.pilab.hu/grants/log"
	"go.pilab.hu/grants/middleware"
	"go.pilab.hu/grants/services"
	"go.pilab.hu/grants/tracing"
)

func main() {
	// Load configuration first
	cfg, err := config.LoadConfig()
	if err != nil {
		stdLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		stdLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := log.ParseLevel(cfg.LogLevel)
	appLogger := log.NewZerologAdapter(logLevel, cfg.LogPretty)
	if parseErr != nil {
		appLogger.Warn(context.Background(), "Invalid log_level configured, defaulting to 'info'", log.Fields{
			"configured_log_level": cfg.LogLevel,
		})
	}

	appLogger.Info(context.Background(), "Configuration loaded successfully", log.Fields{
		"http_addr":       cfg.HTTPAddr,
		"storage_backend": string(cfg.StorageBackend),
		"token_cache":     string(cfg.TokenCache),
		"log_level":       logLevel.String(),
		"otel_enabled":    cfg.OtelEnabled,
	})

	var tracerProvider *sdktrace.TracerProvider
	if cfg.OtelEnabled {
		tracerProvider, err = tracing.InitTracerProvider(cfg.OtelServiceName, os.Stdout)
		if err != nil {
			appLogger.Fatal(context.Background(), "Failed to initialize TracerProvider", err)
		}
		appLogger.Info(context.Background(), "TracerProvider initialized.")
	}

	// --- Initialize Dependencies ---
	ctx := context.Background()

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to open storage backend", err, log.Fields{"backend": string(cfg.StorageBackend)})
	}

	tokenCache, err := server.OpenTokenCache(ctx, cfg)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize token cache", err, log.Fields{"cache": string(cfg.TokenCache)})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authzService := services.NewAuthorizationService(store,
		services.WithTokenCache(tokenCache),
		services.WithAuditLogger(audit.NewLogger(cfg.OtelServiceName, os.Stdout)),
		services.WithMetrics(metrics.New(registry)),
		services.WithLogger(appLogger.With(log.Fields{"component": "authorizations"})),
	)
	api := echoapi.NewAuthorizationsAPI(authzService, middleware.NewAuthenticator(store, tokenCache))

	router := server.NewRouter(cfg, appLogger, api, tokenCache, registry)
	httpServer := server.NewHTTPServer(cfg, router)

	go func() {
		appLogger.Info(context.Background(), "HTTP server listening", log.Fields{"addr": cfg.HTTPAddr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(context.Background(), "Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(context.Background(), "Shutting down server...", log.Fields{"signal": receivedSignal.String()})

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}

	if err := tokenCache.Close(); err != nil {
		appLogger.Error(shutdownCtx, "Token cache close error", err)
	}

	if err := store.Close(); err != nil {
		appLogger.Error(shutdownCtx, "Storage close error", err)
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err)
		}
	}

	appLogger.Info(shutdownCtx, "Server gracefully stopped.")
}
