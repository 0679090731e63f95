package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fieldquote/internal/domain"
	"fieldquote/internal/infra"
	"fieldquote/internal/sqlinline"
)

// RenderJobRepositoryPG implements domain.RenderJobRepository over PostgreSQL.
// The claim statement is the pipeline's only synchronization primitive; no
// application-level locking is layered on top.
type RenderJobRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewRenderJobRepository(sql infra.SQLExecutor) *RenderJobRepositoryPG {
	return &RenderJobRepositoryPG{sql: sql}
}

// Enqueue inserts a new queued job, assigning the next attempt number for the
// quote. The attempt counter makes a retry a fresh row, never a reset.
func (r *RenderJobRepositoryPG) Enqueue(ctx context.Context, job *domain.RenderJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	row := r.sql.QueryRow(ctx, sqlinline.QEnqueueRenderJob,
		job.ID, job.TenantID, job.QuoteID, job.QuoteVersionID, job.Prompt)
	if err := row.Scan(&job.Attempt, &job.CreatedAt); err != nil {
		return fmt.Errorf("enqueue render job: %w", err)
	}
	job.Status = domain.RenderJobQueued
	return nil
}

// ClaimOneQueued moves the oldest queued job to running and returns it fully
// hydrated, or domain.ErrNoJobAvailable when the queue is empty or every
// candidate is locked by a concurrent claimant.
func (r *RenderJobRepositoryPG) ClaimOneQueued(ctx context.Context) (*domain.ClaimedRenderJob, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QClaimRenderJob)

	var c domain.ClaimedRenderJob
	err := row.Scan(
		&c.Job.ID,
		&c.Job.TenantID,
		&c.Job.QuoteID,
		&c.Job.QuoteVersionID,
		&c.Job.Attempt,
		&c.Job.Prompt,
		&c.Job.CreatedAt,
		&c.Job.StartedAt,
		&c.Tenant.RenderEnabled,
		&c.Tenant.BusinessName,
		&c.Tenant.Trade,
		&c.Tenant.PromptAddendum,
		&c.Tenant.NegativeGuidance,
		&c.Tenant.CurrencyCode,
		&c.VersionNumber,
		&c.QuoteNotes,
		&c.QuotePhotoURLs,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNoJobAvailable
		}
		return nil, fmt.Errorf("claim render job: %w", err)
	}
	c.Job.Status = domain.RenderJobRunning
	return &c, nil
}

// MarkRendered writes the successful terminal state. The update is guarded on
// status = 'running'; a row already terminal returns domain.ErrTerminalState
// and is left untouched.
func (r *RenderJobRepositoryPG) MarkRendered(ctx context.Context, jobID, imageURL string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkRenderJobRendered, jobID, imageURL)
	if err != nil {
		return fmt.Errorf("mark rendered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTerminalState
	}
	return nil
}

// MarkFailed writes the failed terminal state with a human-readable reason.
func (r *RenderJobRepositoryPG) MarkFailed(ctx context.Context, jobID, reason string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkRenderJobFailed, jobID, reason)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTerminalState
	}
	return nil
}

// LatestByQuote returns the most recent job for a quote, or
// domain.ErrNotFound when none was ever enqueued.
func (r *RenderJobRepositoryPG) LatestByQuote(ctx context.Context, tenantID, quoteID string) (*domain.RenderJob, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QLatestRenderJobByQuote, tenantID, quoteID)

	var job domain.RenderJob
	err := row.Scan(
		&job.ID,
		&job.TenantID,
		&job.QuoteID,
		&job.QuoteVersionID,
		&job.Attempt,
		&job.Status,
		&job.Prompt,
		&job.ImageURL,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("latest render job: %w", err)
	}
	return &job, nil
}

var _ domain.RenderJobRepository = (*RenderJobRepositoryPG)(nil)
