package app

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	promclient "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	customMiddleware "salespulse/internal/middleware"
	"salespulse/internal/services"
	handlers "salespulse/internal/transport/http"
	"salespulse/internal/validation"
)

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Files            *files.Manager
	AnalyticsService *services.AnalyticsService
	HealthService    *services.HealthService
	ErrorHandler     *apperrors.ErrorHandler

	registry *promclient.Registry
}

// Option customizes an Application before its services are built
type Option func(*Application)

// WithLogger replaces the logger built from the logging config
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) {
		a.Logger = logger
	}
}

// WithRegistry sends Prometheus metrics to reg instead of the default registerer
func WithRegistry(reg *promclient.Registry) Option {
	return func(a *Application) {
		a.registry = reg
	}
}

// NewApplication wires every service from cfg. A nil cfg loads the
// configuration from file and environment.
func NewApplication(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	app := &Application{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	if app.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = logger
	}

	app.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(app.Logger)
	app.Paths = paths

	validator := validation.NewFileValidator(app.Logger)
	if err := validator.ValidateOutputDirectories(paths.UploadsDir, paths.ReportsDir, paths.StagingDir); err != nil {
		return nil, fmt.Errorf("output directories are not writable: %w", err)
	}

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.Registry = app.registry
	providers, err := infrastructure.InitializeOTel(otelCfg, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = providers

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the analytics pipeline and its collaborators
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	a.Files = files.NewManager(a.Paths, a.Logger)

	reportExporter := exporter.NewReportExporter(
		a.Paths.ReportsDir,
		a.Paths.StagingDir,
		a.Files,
		a.Logger,
		exporter.WithBOM(a.Config.Analytics.CSVBOM),
	)

	mergerOpts := []dataprocessing.MergerOption{dataprocessing.WithLogger(a.Logger)}
	if len(a.Config.Analytics.DateLayouts) > 0 {
		mergerOpts = append(mergerOpts, dataprocessing.WithDateLayouts(a.Config.Analytics.DateLayouts))
	}
	merger := dataprocessing.NewMerger(mergerOpts...)

	a.AnalyticsService = services.NewAnalyticsService(merger, reportExporter, metrics, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.Paths, a.Logger)
	a.ErrorHandler = apperrors.NewErrorHandler(a.Logger, false)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.ErrorHandler,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
		})

		// A run parses three uploads and writes the archive, so it gets its own budget
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RunTimeout, a.Logger))
			reportsHandler := handlers.NewReportsHandler(
				a.AnalyticsService,
				a.Files,
				a.Config.Security.MaxUploadBytes,
				a.Logger,
				a.ErrorHandler,
			)
			r.Mount("/reports", reportsHandler.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
func (a *Application) Serve(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Application started successfully",
			slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.Serve(ctx)
	if ctx.Err() != nil {
		a.Logger.Info("Received interrupt signal")
	}
	return err
}

// performStartupHealthCheck reports unusable output directories before traffic arrives
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := a.HealthService.ReadinessCheck(checkCtx)
	if status.Status == "ready" {
		return nil
	}

	var errs []error
	for name, svc := range status.Services {
		if svc.Status != "ready" {
			errs = append(errs, fmt.Errorf("%s: %s", name, svc.Message))
		}
	}
	return errors.Join(errs...)
}
