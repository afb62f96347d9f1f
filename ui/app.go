// Package ui serves the interactive control surface: one page with
// three bound inputs whose committed changes re-run the pipeline and
// replace the displayed figure wholesale.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lightlab/app"
)

//go:embed templates/* docs/*
var embeddedFiles embed.FS

// Defaults for the three controls, matching the reference tool.
const (
	DefaultTrialPeriod = 5.0
	DefaultBinSize     = 0.02
)

// App is the web UI application.
type App struct {
	router    *chi.Mux
	service   *app.ExploreService
	hub       *SSEHub
	templates *template.Template
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates the UI application around an explore service. The
// returned hub should be wired into the service as its event
// publisher.
func NewApp(service *app.ExploreService, hub *SSEHub) (*App, error) {
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		hub:       hub,
		templates: templates,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/figure.png", a.handleFigure)
	a.router.Get("/method", a.handleMethod)
	a.router.Get("/events", a.hub.ServeHTTP)

	a.router.Get("/api/identifiers", a.handleIdentifiers)
	a.router.Get("/api/runs", a.handleRuns)
}

// Router exposes the handler for serving and tests.
func (a *App) Router() http.Handler { return a.router }

// Start runs the HTTP server.
func (a *App) Start(cfg Config) error {
	addr := ":" + cfg.Port
	return http.ListenAndServe(addr, a.router)
}
