package domain

import "time"

// Quote is one customer submission: photos plus free-text notes awaiting or
// holding an AI assessment.
type Quote struct {
	ID           string
	TenantID     string
	ContactName  string
	ContactEmail string
	Notes        string
	PhotoURLs    []string
	Assessment   *Assessment
	Read         bool
	Stage        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QuoteVersion is an immutable snapshot of one assessment result for a quote.
// Version numbers are strictly increasing per quote; at most one version is
// active at a time. Rows are never mutated after insert.
type QuoteVersion struct {
	ID                 string
	QuoteID            string
	Version            int
	Active             bool
	Assessment         Assessment
	EstimateLow        int64
	EstimateHigh       int64
	InspectionRequired bool
	BasisJSON          []byte
	CreatedAt          time.Time
}

// Confidence levels reported by the vision model.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Assessment is the structured output of the vision model for a quote. It is
// consumed by the pricing engine and snapshotted into quote versions; it is
// never a pricing output itself.
type Assessment struct {
	Confidence         string   `json:"confidence"`
	InspectionRequired bool     `json:"inspection_required"`
	VisibleScope       []string `json:"visible_scope"`
	Assumptions        []string `json:"assumptions"`
	Questions          []string `json:"questions"`
	Summary            string   `json:"summary"`
	ImageCount         int      `json:"image_count"`
}
