package domain

import "context"

// RenderJobRepository defines persistence for render jobs. ClaimOneQueued is
// the only synchronization primitive in the pipeline: it must atomically move
// one queued row to running (oldest first, skipping rows locked by concurrent
// claimants) and return it fully hydrated, or ErrNoJobAvailable.
type RenderJobRepository interface {
	Enqueue(ctx context.Context, job *RenderJob) error
	ClaimOneQueued(ctx context.Context) (*ClaimedRenderJob, error)
	MarkRendered(ctx context.Context, jobID, imageURL string) error
	MarkFailed(ctx context.Context, jobID, reason string) error
	LatestByQuote(ctx context.Context, tenantID, quoteID string) (*RenderJob, error)
}

// QuoteRepository defines persistence for quotes and their immutable
// assessment versions.
type QuoteRepository interface {
	GetByID(ctx context.Context, tenantID, quoteID string) (*Quote, error)
	CreateVersion(ctx context.Context, version *QuoteVersion) error
	ActiveVersion(ctx context.Context, quoteID string) (*QuoteVersion, error)
	UpdateAssessment(ctx context.Context, quoteID string, a Assessment) error
}

// PricingSnapshot is the read-only bundle of tenant settings captured at the
// moment of computation. The engine receives it as an explicit parameter;
// nothing reads ambient tenant state mid-computation.
type PricingSnapshot struct {
	Policy   PricingPolicy
	Config   PricingConfig
	Rules    PricingRules
	Currency string
}

// TenantRepository resolves tenants and their pricing settings. Resolve
// accepts either the tenant's human-readable slug or its internal id.
type TenantRepository interface {
	Resolve(ctx context.Context, key string) (string, error)
	PricingSettings(ctx context.Context, tenantID string) (PricingSnapshot, error)
}
