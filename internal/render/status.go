package render

import (
	"strings"

	"fieldquote/internal/domain"
)

// ClientStatus is the closed set of render states exposed to clients.
type ClientStatus string

const (
	StatusIdle     ClientStatus = "idle"
	StatusRunning  ClientStatus = "running"
	StatusRendered ClientStatus = "rendered"
	StatusFailed   ClientStatus = "failed"
)

// Projection is the client-facing view of a quote's render state.
type Projection struct {
	Status   ClientStatus `json:"status"`
	ImageURL *string      `json:"imageUrl"`
	Error    *string      `json:"error"`
}

// NormalizeStatus maps a raw persisted status onto the client set. Unknown
// values read as idle; a client is never shown a status outside the set.
func NormalizeStatus(raw string) ClientStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "not_requested", "queued":
		return StatusIdle
	case "running":
		return StatusRunning
	case "rendered":
		return StatusRendered
	case "failed":
		return StatusFailed
	default:
		return StatusIdle
	}
}

// ProjectJob normalizes a possibly-stale job row into one truthful view.
// A nil job means no render was ever requested.
//
// The image override is the contract-hardening rule: a usable image is
// definitive proof of completion, so a stale status field (for example a row
// still reading "queued" after the image write landed) is corrected at read
// time rather than surfaced to the client.
func ProjectJob(job *domain.RenderJob) Projection {
	if job == nil {
		return Projection{Status: StatusIdle}
	}

	status := NormalizeStatus(string(job.Status))
	imageURL := job.ImageURL
	if imageURL != nil && strings.TrimSpace(*imageURL) == "" {
		imageURL = nil
	}
	if imageURL != nil && status != StatusFailed {
		status = StatusRendered
	}

	p := Projection{Status: status}
	if status == StatusRendered {
		p.ImageURL = imageURL
	}
	if status == StatusFailed && job.ErrorMessage != nil && *job.ErrorMessage != "" {
		msg := *job.ErrorMessage
		p.Error = &msg
	}
	return p
}
