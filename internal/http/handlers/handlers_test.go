package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"fieldquote/internal/domain"
	"fieldquote/internal/pricing"
)

type fakeTenants struct {
	ids      map[string]string
	snapshot domain.PricingSnapshot
}

func (f *fakeTenants) Resolve(ctx context.Context, key string) (string, error) {
	if id, ok := f.ids[key]; ok {
		return id, nil
	}
	return "", domain.ErrNotFound
}

func (f *fakeTenants) PricingSettings(ctx context.Context, tenantID string) (domain.PricingSnapshot, error) {
	return f.snapshot, nil
}

type fakeQuotes struct {
	quotes   map[string]*domain.Quote
	active   map[string]*domain.QuoteVersion
	versions []*domain.QuoteVersion
	updated  map[string]domain.Assessment
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{
		quotes:  make(map[string]*domain.Quote),
		active:  make(map[string]*domain.QuoteVersion),
		updated: make(map[string]domain.Assessment),
	}
}

func (f *fakeQuotes) GetByID(ctx context.Context, tenantID, quoteID string) (*domain.Quote, error) {
	q, ok := f.quotes[quoteID]
	if !ok || q.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

func (f *fakeQuotes) CreateVersion(ctx context.Context, version *domain.QuoteVersion) error {
	version.ID = "ver-1"
	version.Version = len(f.versions) + 1
	version.Active = true
	version.CreatedAt = time.Now()
	f.versions = append(f.versions, version)
	return nil
}

func (f *fakeQuotes) ActiveVersion(ctx context.Context, quoteID string) (*domain.QuoteVersion, error) {
	if v, ok := f.active[quoteID]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeQuotes) UpdateAssessment(ctx context.Context, quoteID string, a domain.Assessment) error {
	f.updated[quoteID] = a
	return nil
}

type fakeJobs struct {
	enqueued []*domain.RenderJob
	latest   map[string]*domain.RenderJob
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{latest: make(map[string]*domain.RenderJob)}
}

func (f *fakeJobs) Enqueue(ctx context.Context, job *domain.RenderJob) error {
	job.ID = "job-1"
	job.Attempt = len(f.enqueued) + 1
	job.Status = domain.RenderJobQueued
	job.CreatedAt = time.Now()
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeJobs) ClaimOneQueued(ctx context.Context) (*domain.ClaimedRenderJob, error) {
	return nil, domain.ErrNoJobAvailable
}

func (f *fakeJobs) MarkRendered(ctx context.Context, jobID, imageURL string) error { return nil }

func (f *fakeJobs) MarkFailed(ctx context.Context, jobID, reason string) error { return nil }

func (f *fakeJobs) LatestByQuote(ctx context.Context, tenantID, quoteID string) (*domain.RenderJob, error) {
	if j, ok := f.latest[quoteID]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

func testSnapshot() domain.PricingSnapshot {
	return domain.PricingSnapshot{
		Policy: domain.PricingPolicy{
			AIMode:         domain.AIModeRange,
			PricingEnabled: true,
			PricingModel:   domain.PricingModelFlatPerJob,
		},
		Config:   domain.PricingConfig{FlatRateDefault: 500},
		Rules:    domain.PricingRules{MinJob: 150, TypicalLow: 300, TypicalHigh: 900},
		Currency: "USD",
	}
}

type fixture struct {
	app    *App
	jobs   *fakeJobs
	quotes *fakeQuotes
	router http.Handler
}

func newFixture() *fixture {
	jobs := newFakeJobs()
	quotes := newFakeQuotes()
	quotes.quotes["q1"] = &domain.Quote{
		ID:        "q1",
		TenantID:  "t1",
		Notes:     "repaint the front fence",
		PhotoURLs: []string{"https://cdn.local/p1.jpg", "https://cdn.local/p2.jpg"},
	}
	tenants := &fakeTenants{
		ids:      map[string]string{"harbor-decking": "t1", "t1": "t1"},
		snapshot: testSnapshot(),
	}
	app := NewApp(jobs, quotes, tenants, zerolog.New(io.Discard))

	r := chi.NewRouter()
	r.Route("/v1/tenants/{tenantKey}/quotes/{quoteID}", func(r chi.Router) {
		r.Post("/estimate", app.QuoteEstimate)
		r.Post("/render", app.RenderEnqueue)
		r.Get("/render", app.RenderStatus)
	})
	return &fixture{app: app, jobs: jobs, quotes: quotes, router: r}
}

func (f *fixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRenderEnqueueAccepted(t *testing.T) {
	f := newFixture()
	f.quotes.active["q1"] = &domain.QuoteVersion{ID: "ver-7", QuoteID: "q1", Version: 7, Active: true}

	rec := f.do(t, http.MethodPost, "/v1/tenants/harbor-decking/quotes/q1/render", nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp enqueueRenderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.JobID == "" || resp.Status != "queued" || resp.Attempt != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(f.jobs.enqueued) != 1 {
		t.Fatalf("enqueued = %d", len(f.jobs.enqueued))
	}
	job := f.jobs.enqueued[0]
	if job.TenantID != "t1" || job.QuoteID != "q1" {
		t.Fatalf("job scoped wrong: %+v", job)
	}
	if job.QuoteVersionID == nil || *job.QuoteVersionID != "ver-7" {
		t.Fatal("job should reference the active quote version")
	}
}

func TestRenderEnqueueUnknownTenant(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/tenants/nobody/quotes/q1/render", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.jobs.enqueued) != 0 {
		t.Fatal("nothing should be enqueued for an unknown tenant")
	}
}

func TestRenderEnqueueUnknownQuote(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/tenants/harbor-decking/quotes/missing/render", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRenderStatusIdleWithoutHistory(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/v1/tenants/harbor-decking/quotes/q1/render", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status   string  `json:"status"`
		ImageURL *string `json:"imageUrl"`
		Error    *string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "idle" || resp.ImageURL != nil || resp.Error != nil {
		t.Fatalf("unexpected projection %+v", resp)
	}
}

func TestRenderStatusProjectsLatestJob(t *testing.T) {
	f := newFixture()
	url := "http://cdn.local/static/renders/job-1/concept.png"
	f.jobs.latest["q1"] = &domain.RenderJob{
		ID:       "job-1",
		TenantID: "t1",
		QuoteID:  "q1",
		Status:   domain.RenderJobRendered,
		ImageURL: &url,
	}

	rec := f.do(t, http.MethodGet, "/v1/tenants/t1/quotes/q1/render", nil)

	var resp struct {
		Status   string  `json:"status"`
		ImageURL *string `json:"imageUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "rendered" || resp.ImageURL == nil || *resp.ImageURL != url {
		t.Fatalf("unexpected projection %+v", resp)
	}
}

func TestQuoteEstimatePersistsVersion(t *testing.T) {
	f := newFixture()
	assessment := domain.Assessment{
		Confidence:   domain.ConfidenceMedium,
		VisibleScope: []string{"repaint fence"},
		Summary:      "single fence repaint",
	}
	body, _ := json.Marshal(map[string]any{"assessment": assessment, "image_count": 2})

	rec := f.do(t, http.MethodPost, "/v1/tenants/harbor-decking/quotes/q1/estimate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp estimateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	snap := testSnapshot()
	want := pricing.ComputeEstimate(assessment, 2, snap.Policy, snap.Config, snap.Rules)
	if resp.EstimateLow != want.Low || resp.EstimateHigh != want.High {
		t.Fatalf("estimate = [%d, %d], want [%d, %d]", resp.EstimateLow, resp.EstimateHigh, want.Low, want.High)
	}
	if resp.Version != 1 {
		t.Fatalf("version = %d", resp.Version)
	}
	if resp.Display == "" {
		t.Fatal("display string missing")
	}

	if len(f.quotes.versions) != 1 {
		t.Fatalf("versions persisted = %d", len(f.quotes.versions))
	}
	stored := f.quotes.versions[0]
	if stored.EstimateLow != want.Low || stored.EstimateHigh != want.High {
		t.Fatal("persisted version disagrees with response")
	}
	if len(stored.BasisJSON) == 0 {
		t.Fatal("basis audit trail not persisted")
	}
	if _, ok := f.quotes.updated["q1"]; !ok {
		t.Fatal("current assessment not updated")
	}
}

func TestQuoteEstimateFallsBackToQuotePhotoCount(t *testing.T) {
	f := newFixture()
	assessment := domain.Assessment{Confidence: domain.ConfidenceHigh, VisibleScope: []string{"deck wash"}}
	body, _ := json.Marshal(map[string]any{"assessment": assessment})

	rec := f.do(t, http.MethodPost, "/v1/tenants/harbor-decking/quotes/q1/estimate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp estimateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	snap := testSnapshot()
	want := pricing.ComputeEstimate(assessment, 2, snap.Policy, snap.Config, snap.Rules)
	if resp.EstimateLow != want.Low || resp.EstimateHigh != want.High {
		t.Fatalf("estimate = [%d, %d], want photo-count-derived [%d, %d]", resp.EstimateLow, resp.EstimateHigh, want.Low, want.High)
	}
}

func TestQuoteEstimateBadPayload(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/tenants/harbor-decking/quotes/q1/estimate", []byte("{not json"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
