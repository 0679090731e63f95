package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldquote/internal/domain"
	"fieldquote/internal/infra"
	"fieldquote/internal/providers/image"
)

const defaultGenerationTimeout = 90 * time.Second

// BlobStore persists rendered image bytes and returns the canonical key.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Worker drives one render job from claim to terminal state. It holds no
// internal scheduler: an external trigger calls ProcessOneQueuedRender
// repeatedly, and any number of worker instances may run concurrently. The
// atomic claim in the repository is the only synchronization.
type Worker struct {
	jobs    domain.RenderJobRepository
	images  image.Generator
	store   BlobStore
	baseURL string
	timeout time.Duration
	logger  infra.Logger
}

// NewWorker wires a worker. publicBaseURL is the prefix under which stored
// render keys are reachable by clients.
func NewWorker(jobs domain.RenderJobRepository, images image.Generator, store BlobStore, publicBaseURL string, logger infra.Logger) *Worker {
	return &Worker{
		jobs:    jobs,
		images:  images,
		store:   store,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		timeout: defaultGenerationTimeout,
		logger:  logger,
	}
}

// WithTimeout overrides the generation call timeout.
func (w *Worker) WithTimeout(d time.Duration) *Worker {
	if d > 0 {
		w.timeout = d
	}
	return w
}

// Result reports the outcome of one invocation. OK is false only when the
// pipeline itself broke (claim or terminal write failed); a job that ran and
// failed still yields OK with FailureReason set, because the failure was
// recorded on the job row where it belongs.
type Result struct {
	OK            bool
	DidWork       bool
	JobID         string
	FailureReason string
	Err           error
}

// ProcessOneQueuedRender claims at most one queued job and runs it to a
// terminal state. Transient generation failures are not retried here; retry
// is a new job row enqueued by the caller. No failure escapes this boundary.
func (w *Worker) ProcessOneQueuedRender(ctx context.Context) Result {
	claimed, err := w.jobs.ClaimOneQueued(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoJobAvailable) {
			return Result{OK: true, DidWork: false}
		}
		w.logger.Error().Err(err).Msg("render: claim failed")
		return Result{OK: false, Err: err}
	}

	jobID := claimed.Job.ID
	w.logger.Info().
		Str("job_id", jobID).
		Str("quote_id", claimed.Job.QuoteID).
		Int("attempt", claimed.Job.Attempt).
		Msg("render: claimed job")

	reason, execErr := w.execute(ctx, claimed)
	if reason == "" {
		if err := w.jobs.MarkRendered(ctx, jobID, *claimed.Job.ImageURL); err != nil && !errors.Is(err, domain.ErrTerminalState) {
			w.logger.Error().Err(err).Str("job_id", jobID).Msg("render: rendered write failed")
			return Result{OK: false, DidWork: true, JobID: jobID, Err: err}
		}
		w.logger.Info().Str("job_id", jobID).Msg("render: job rendered")
		return Result{OK: true, DidWork: true, JobID: jobID}
	}

	if err := w.jobs.MarkFailed(ctx, jobID, reason); err != nil && !errors.Is(err, domain.ErrTerminalState) {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("render: failed write failed")
		return Result{OK: false, DidWork: true, JobID: jobID, Err: err}
	}
	w.logger.Warn().Str("job_id", jobID).Str("reason", reason).Msg("render: job failed")
	return Result{OK: true, DidWork: true, JobID: jobID, FailureReason: reason, Err: execErr}
}

// execute runs the claimed job and returns a failure reason, or "" on success
// with claimed.Job.ImageURL populated. Panics inside generation are converted
// into a failure reason so the row always reaches a terminal state.
func (w *Worker) execute(ctx context.Context, claimed *domain.ClaimedRenderJob) (reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
			reason = deepestMessage(err)
		}
	}()

	if !claimed.Tenant.RenderEnabled {
		return domain.ErrFeatureDisabled.Error(), domain.ErrFeatureDisabled
	}

	prompt := claimed.Job.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = BuildPrompt(*claimed)
	}

	genCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	asset, genErr := w.images.Generate(genCtx, image.Request{
		Prompt:    prompt,
		Size:      "1024x1024",
		RequestID: claimed.Job.ID,
	})
	if genErr != nil {
		return deepestMessage(genErr), genErr
	}

	imageURL, storeErr := w.persist(ctx, claimed.Job.ID, asset)
	if storeErr != nil {
		return deepestMessage(storeErr), storeErr
	}
	if imageURL == "" {
		err = errors.New("generation returned no image data")
		return err.Error(), err
	}

	claimed.Job.ImageURL = &imageURL
	return "", nil
}

func (w *Worker) persist(ctx context.Context, jobID string, asset *image.Asset) (string, error) {
	if asset == nil {
		return "", nil
	}
	if len(asset.Data) == 0 {
		// Provider returned a hosted URL instead of bytes.
		return strings.TrimSpace(asset.URL), nil
	}
	key := fmt.Sprintf("renders/%s/concept%s", jobID, extensionForFormat(asset.Format))
	saved, err := w.store.Write(ctx, key, asset.Data)
	if err != nil {
		return "", fmt.Errorf("persist render: %w", err)
	}
	if w.baseURL == "" {
		return saved, nil
	}
	return w.baseURL + "/" + saved, nil
}

func extensionForFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// deepestMessage walks the wrap chain and returns the innermost message, the
// most specific detail available for a human-readable failure reason.
func deepestMessage(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
