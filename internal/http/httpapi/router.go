package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fieldquote/internal/http/handlers"
	"fieldquote/internal/infra"
	"fieldquote/internal/middleware"
)

// NewRouter wires the public API surface. The status endpoint is polled by
// customer browsers, so it carries a per-IP rate limit; everything else sits
// behind the standard middleware stack.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger, store handlers.BlobReader) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))

	r.Get("/v1/healthz", app.Health)
	if store != nil {
		r.Get("/static/*", handlers.StaticFiles(store, logger))
	}

	r.Route("/v1/tenants/{tenantKey}/quotes/{quoteID}", func(r chi.Router) {
		r.Post("/estimate", app.QuoteEstimate)
		r.Post("/render", app.RenderEnqueue)
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).
			Get("/render", app.RenderStatus)
	})

	return r
}
