package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fieldquote/internal/domain"
	"fieldquote/internal/pricing"
)

type estimateRequest struct {
	Assessment domain.Assessment `json:"assessment"`
	ImageCount int               `json:"image_count"`
}

type estimateResponse struct {
	EstimateLow        int64         `json:"estimate_low"`
	EstimateHigh       int64         `json:"estimate_high"`
	InspectionRequired bool          `json:"inspection_required"`
	Basis              pricing.Basis `json:"basis"`
	Version            int           `json:"version"`
	Display            string        `json:"display"`
}

// QuoteEstimate runs the pricing engine over a posted assessment against the
// tenant's policy snapshot, persists the result as a new immutable quote
// version, and returns the bounded estimate with its audit basis.
func (a *App) QuoteEstimate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.resolveTenant(w, r)
	if !ok {
		return
	}
	quoteID := chi.URLParam(r, "quoteID")

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ImageCount <= 0 {
		req.ImageCount = req.Assessment.ImageCount
	}

	quote, err := a.Quotes.GetByID(r.Context(), tenantID, quoteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "quote not found")
			return
		}
		a.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("estimate: load quote failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to compute estimate")
		return
	}
	if req.ImageCount <= 0 {
		req.ImageCount = len(quote.PhotoURLs)
	}

	snapshot, err := a.Tenants.PricingSettings(r.Context(), tenantID)
	if err != nil {
		a.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("estimate: load pricing settings failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to compute estimate")
		return
	}

	estimate := pricing.ComputeEstimate(req.Assessment, req.ImageCount, snapshot.Policy, snapshot.Config, snapshot.Rules)

	basisJSON, _ := json.Marshal(estimate.Basis)
	version := &domain.QuoteVersion{
		QuoteID:            quoteID,
		Assessment:         req.Assessment,
		EstimateLow:        estimate.Low,
		EstimateHigh:       estimate.High,
		InspectionRequired: estimate.InspectionRequired,
		BasisJSON:          basisJSON,
	}
	if err := a.Quotes.CreateVersion(r.Context(), version); err != nil {
		a.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("estimate: create version failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist estimate")
		return
	}
	if err := a.Quotes.UpdateAssessment(r.Context(), quoteID, req.Assessment); err != nil {
		a.Logger.Warn().Err(err).Str("quote_id", quoteID).Msg("estimate: update current assessment failed")
	}

	a.json(w, http.StatusOK, estimateResponse{
		EstimateLow:        estimate.Low,
		EstimateHigh:       estimate.High,
		InspectionRequired: estimate.InspectionRequired,
		Basis:              estimate.Basis,
		Version:            version.Version,
		Display:            formatEstimateRange(snapshot.Currency, estimate.Low, estimate.High),
	})
}

// formatEstimateRange renders a customer-facing amount string in the tenant's
// currency, with grouping per English locale conventions.
func formatEstimateRange(code string, low, high int64) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.USD
	}
	p := message.NewPrinter(language.English)
	if low == high {
		return p.Sprintf("%v", currency.Symbol(unit.Amount(low)))
	}
	return p.Sprintf("%v to %v", currency.Symbol(unit.Amount(low)), currency.Symbol(unit.Amount(high)))
}
