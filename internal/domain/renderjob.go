package domain

import "time"

// RenderJobStatus enumerates render job lifecycle states.
type RenderJobStatus string

const (
	RenderJobQueued   RenderJobStatus = "queued"
	RenderJobRunning  RenderJobStatus = "running"
	RenderJobRendered RenderJobStatus = "rendered"
	RenderJobFailed   RenderJobStatus = "failed"
)

// Terminal reports whether the status can never change again. A retry is a
// new RenderJob row with an incremented attempt, never a rewrite.
func (s RenderJobStatus) Terminal() bool {
	return s == RenderJobRendered || s == RenderJobFailed
}

// RenderJob is one attempt to produce a concept image for a quote. The row is
// mutated exactly twice, both times by the worker holding the claim: once on
// claim (queued -> running) and once on completion (running -> terminal).
type RenderJob struct {
	ID             string
	TenantID       string
	QuoteID        string
	QuoteVersionID *string
	Attempt        int
	Status         RenderJobStatus
	Prompt         string
	ImageURL       *string
	ErrorMessage   *string
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// TenantRenderSettings is the tenant-scoped slice of configuration the worker
// needs to execute a claimed job.
type TenantRenderSettings struct {
	RenderEnabled    bool
	BusinessName     string
	Trade            string
	PromptAddendum   string
	NegativeGuidance string
	CurrencyCode     string
}

// ClaimedRenderJob is the fully hydrated result of an atomic claim: the job
// plus every field the worker needs downstream, read in the same statement so
// later steps never re-read a possibly-changed row.
type ClaimedRenderJob struct {
	Job            RenderJob
	Tenant         TenantRenderSettings
	VersionNumber  int
	QuoteNotes     string
	QuotePhotoURLs []string
}
