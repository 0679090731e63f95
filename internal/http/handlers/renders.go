package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldquote/internal/domain"
	"fieldquote/internal/render"
)

type enqueueRenderResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Attempt int    `json:"attempt"`
}

// RenderEnqueue creates a queued render job for a quote. The job references
// the quote's active assessment version when one exists; the worker builds
// the prompt from that immutable snapshot at claim time.
func (a *App) RenderEnqueue(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.resolveTenant(w, r)
	if !ok {
		return
	}
	quoteID := chi.URLParam(r, "quoteID")

	if _, err := a.Quotes.GetByID(r.Context(), tenantID, quoteID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "quote not found")
			return
		}
		a.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("render enqueue: load quote failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue render")
		return
	}

	var versionID *string
	if v, err := a.Quotes.ActiveVersion(r.Context(), quoteID); err == nil {
		versionID = &v.ID
	}

	job := &domain.RenderJob{
		TenantID:       tenantID,
		QuoteID:        quoteID,
		QuoteVersionID: versionID,
	}
	if err := a.Jobs.Enqueue(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("render enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue render")
		return
	}

	a.json(w, http.StatusAccepted, enqueueRenderResponse{
		JobID:   job.ID,
		Status:  string(domain.RenderJobQueued),
		Attempt: job.Attempt,
	})
}

// RenderStatus returns the projected render state for a quote. A quote with
// no job history reads as idle, and a stale row is normalized at read time,
// so the client always sees one of exactly four states.
func (a *App) RenderStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.resolveTenant(w, r)
	if !ok {
		return
	}
	quoteID := chi.URLParam(r, "quoteID")

	job, err := a.Jobs.LatestByQuote(r.Context(), tenantID, quoteID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("render status lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read render status")
		return
	}

	a.json(w, http.StatusOK, render.ProjectJob(job))
}

// resolveTenant maps the {tenantKey} path segment (slug or id) onto a tenant
// id, writing the error response itself when resolution fails.
func (a *App) resolveTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "tenantKey")
	tenantID, err := a.Tenants.Resolve(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "tenant not found")
			return "", false
		}
		a.Logger.Error().Err(err).Str("tenant_key", key).Msg("tenant resolution failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve tenant")
		return "", false
	}
	return tenantID, true
}
