package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"mediapulse/internal/config"
	"mediapulse/internal/dataprocessing"
	"mediapulse/internal/infrastructure"
	"mediapulse/internal/insights"
	"mediapulse/internal/services"
	transport "mediapulse/internal/transport/http"
	"mediapulse/web"
)

// AppName is the application name used in startup logs.
const AppName = "mediapulse"

// Application wires configuration, services, handlers and the HTTP
// server into one runnable unit.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Server  *http.Server
	Metrics *infrastructure.BusinessMetrics
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := infrastructure.NewBusinessMetrics(registry)

	parser := dataprocessing.NewParser(logger, cfg.Pipeline.CleaningPolicy)

	var generator services.InsightGenerator
	if cfg.GeminiEnabled() {
		generator = insights.NewGenerator(cfg.Gemini, logger)
		logger.Info("generative insights enabled", slog.String("model", cfg.Gemini.Model))
	} else {
		logger.Info("generative insights disabled, using templated phrasing")
	}

	dashboardService := services.NewDashboardService(parser, generator, cfg.Gemini.Timeout, logger, metrics)
	healthService := services.NewHealthService()

	dashboardHandler, err := transport.NewDashboardHandler(dashboardService, web.Templates, cfg.Pipeline.MaxUploadBytes, cfg.GeminiEnabled(), logger)
	if err != nil {
		return nil, err
	}

	router := transport.NewRouter(transport.RouterDeps{
		Dashboard: dashboardHandler,
		API:       transport.NewAPIHandler(dashboardService, cfg.Pipeline.MaxUploadBytes, logger),
		Health:    transport.NewHealthHandler(healthService, logger),
		Registry:  registry,
		RateLimit: cfg.Server.RateLimit,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Server:  server,
		Metrics: metrics,
	}, nil
}

// Start begins serving. The server runs in a goroutine; listen errors
// cancel the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", services.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
