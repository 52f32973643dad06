package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"shoplens/internal/config"
	"shoplens/internal/dataset"
	"shoplens/internal/errors"
	"shoplens/internal/exporter"
	"shoplens/internal/infrastructure"
	customMiddleware "shoplens/internal/middleware"
	"shoplens/internal/services"
	handlers "shoplens/internal/transport/http"
)

const (
	Version = "1.2.0"
	AppName = "ShopLens - E-Commerce Analytics Dashboard"
)

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Dataset          *dataset.Dataset
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	Metrics          *infrastructure.Metrics
	Logger           *slog.Logger
	FrontendFS       fs.FS
}

// NewApplication creates a new application instance. Loading the dataset is
// part of construction: a missing required source file fails startup.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("data_dir", cfg.Paths.DataDir))

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    infrastructure.NewMetrics(),
		FrontendFS: frontendFS,
	}

	if err := app.loadDataset(context.Background()); err != nil {
		return nil, err
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// loadDataset reads the source CSV files and joins them into the in-memory
// order table served by every request.
func (a *Application) loadDataset(ctx context.Context) error {
	loader := dataset.NewLoader(a.Config.Paths.DataDir, a.Logger)
	tables, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	a.Dataset = dataset.Join(ctx, tables, a.Logger)
	a.Metrics.ObserveDatasetSize(a.Dataset.SourceRows)

	a.Logger.Info("Dataset loaded",
		slog.Int("orders", len(a.Dataset.Orders)),
		slog.Bool("has_payments", a.Dataset.HasPayments),
		slog.Time("min_purchase", a.Dataset.MinPurchase),
		slog.Time("max_purchase", a.Dataset.MaxPurchase))

	return nil
}

// initializeServices wires the service layer
func (a *Application) initializeServices() {
	a.DashboardService = services.NewDashboardService(a.Dataset, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(Version, a.Config.Paths.DataDir, a.Dataset, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.Metrics(a.Metrics))
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	r.Handle("/metrics", a.Metrics.Handler())

	if a.FrontendFS != nil {
		a.setupFrontend(r)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(
		a.DashboardService,
		exporter.NewXLSXExporter(a.Logger),
		exporter.NewCSVWriter(a.Logger),
		a.Logger,
		errorHandler,
	)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Get("/dataset", dashboardHandler.GetDataset)
		r.Get("/dataset/export", dashboardHandler.DownloadDataset)

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
	})
}

// setupFrontend serves the embedded static dashboard
func (a *Application) setupFrontend(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Use(chimiddleware.SetHeader("Cache-Control", "public, max-age=86400"))
		r.Handle("/*", http.FileServer(http.FS(a.FrontendFS)))
	})

	r.Get("/*", a.serveIndex)
}

// serveIndex serves files from the embedded frontend, falling back to
// index.html for unmatched paths.
func (a *Application) serveIndex(w http.ResponseWriter, r *http.Request) {
	urlPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if urlPath == "" {
		urlPath = "index.html"
	}

	file, err := a.FrontendFS.Open(urlPath)
	if err != nil {
		file, err = a.FrontendFS.Open("index.html")
		if err != nil {
			http.Error(w, "frontend not available", http.StatusServiceUnavailable)
			return
		}
		urlPath = "index.html"
	}
	defer file.Close()

	switch path.Ext(urlPath) {
	case ".html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case ".js":
		w.Header().Set("Content-Type", "application/javascript")
	case ".css":
		w.Header().Set("Content-Type", "text/css")
	case ".svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case ".ico":
		w.Header().Set("Content-Type", "image/x-icon")
	}

	io.Copy(w, file)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("address", a.Server.Addr),
		slog.Int("orders", len(a.Dataset.Orders)))

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
