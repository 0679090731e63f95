package handlers

import (
	"encoding/json"
	"net/http"

	"fieldquote/internal/domain"
	"fieldquote/internal/infra"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Jobs    domain.RenderJobRepository
	Quotes  domain.QuoteRepository
	Tenants domain.TenantRepository
	Logger  infra.Logger
}

func NewApp(jobs domain.RenderJobRepository, quotes domain.QuoteRepository, tenants domain.TenantRepository, logger infra.Logger) *App {
	return &App{Jobs: jobs, Quotes: quotes, Tenants: tenants, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
