// Package main provides the main entry point for the chat widget backend
// server. It sets up the HTTP server, the upstream translation client,
// middleware, and API routes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gabaychat/internal/client"
	"gabaychat/internal/config"
	"gabaychat/internal/handlers"
	"gabaychat/internal/i18n"
	"gabaychat/internal/middleware"
	"gabaychat/internal/observability"
	"gabaychat/internal/services"
	contextutils "gabaychat/internal/utils"

	"github.com/gin-gonic/gin"
)

// Application encapsulates the main application wiring and can be tested.
type Application struct {
	cfg    *config.Config
	router *gin.Engine
	logger *observability.Logger
}

// NewApplication builds the service graph and the router.
func NewApplication(cfg *config.Config, logger *observability.Logger) (*Application, error) {
	upstreamClient := client.New(cfg, logger)
	widgetService := services.NewWidgetService(cfg, upstreamClient, logger)
	settingsService := services.NewSettingsService(cfg)
	translator, err := i18n.NewTranslator(cfg.I18n.DefaultLanguage)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load UI strings")
	}

	validator, err := middleware.NewSchemaValidator()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load request schemas")
	}

	router := handlers.NewRouter(cfg, upstreamClient, widgetService, settingsService, translator, validator, logger)

	return &Application{
		cfg:    cfg,
		router: router,
		logger: logger,
	}, nil
}

// Run starts the HTTP server and returns when it fails or the context ends.
func (a *Application) Run(ctx context.Context, port string) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.router.Run(":" + port); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		return contextutils.WrapError(err, "server failed")
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup observability (tracing/metrics/logging)
	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "gabaychat")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		// The auto SDK tracer provider has no Shutdown; only flush SDK providers.
		if shutdown, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := shutdown.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
	}()

	logger.Info(ctx, "Starting chat widget backend", map[string]interface{}{
		"port":     cfg.Server.Port,
		"upstream": cfg.Upstream.BaseURL,
		"logLevel": cfg.Server.LogLevel,
	})

	app, err := NewApplication(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err, nil)
		os.Exit(1)
	}

	appErr := make(chan error, 1)
	go func() {
		if err := app.Run(ctx, cfg.Server.Port); err != nil {
			appErr <- err
		}
	}()

	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully", nil)
	case err := <-appErr:
		logger.Error(ctx, "Application failed", err, nil)
		os.Exit(1)
	}

	logger.Info(ctx, "Shutdown completed successfully", nil)
}
