package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"fieldquote/internal/domain"
	"fieldquote/internal/infra"
	"fieldquote/internal/sqlinline"
)

// QuoteRepositoryPG implements domain.QuoteRepository over PostgreSQL.
type QuoteRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewQuoteRepository(sql infra.SQLExecutor) *QuoteRepositoryPG {
	return &QuoteRepositoryPG{sql: sql}
}

func (r *QuoteRepositoryPG) GetByID(ctx context.Context, tenantID, quoteID string) (*domain.Quote, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetQuote, tenantID, quoteID)

	var q domain.Quote
	var assessment []byte
	err := row.Scan(
		&q.ID,
		&q.TenantID,
		&q.ContactName,
		&q.ContactEmail,
		&q.Notes,
		&q.PhotoURLs,
		&assessment,
		&q.Read,
		&q.Stage,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if len(assessment) > 0 {
		var a domain.Assessment
		if err := json.Unmarshal(assessment, &a); err == nil {
			q.Assessment = &a
		}
	}
	return &q, nil
}

// CreateVersion inserts the next immutable version for a quote. Version
// numbering and the single-active invariant live in the insert statement, so
// concurrent writers cannot produce duplicates or two active rows.
func (r *QuoteRepositoryPG) CreateVersion(ctx context.Context, version *domain.QuoteVersion) error {
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	assessment, err := json.Marshal(version.Assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertQuoteVersion,
		version.ID,
		version.QuoteID,
		assessment,
		version.EstimateLow,
		version.EstimateHigh,
		version.InspectionRequired,
		nullableBytes(version.BasisJSON),
	)
	if err := row.Scan(&version.Version, &version.CreatedAt); err != nil {
		return fmt.Errorf("insert quote version: %w", err)
	}
	version.Active = true
	return nil
}

func (r *QuoteRepositoryPG) ActiveVersion(ctx context.Context, quoteID string) (*domain.QuoteVersion, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QActiveQuoteVersion, quoteID)

	var v domain.QuoteVersion
	var assessment []byte
	err := row.Scan(
		&v.ID,
		&v.QuoteID,
		&v.Version,
		&v.Active,
		&assessment,
		&v.EstimateLow,
		&v.EstimateHigh,
		&v.InspectionRequired,
		&v.BasisJSON,
		&v.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("active quote version: %w", err)
	}
	if len(assessment) > 0 {
		_ = json.Unmarshal(assessment, &v.Assessment)
	}
	return &v, nil
}

// UpdateAssessment stores the latest assessment on the quote row itself. The
// immutable history lives in quote_versions; this is the mutable "current"
// pointer.
func (r *QuoteRepositoryPG) UpdateAssessment(ctx context.Context, quoteID string, a domain.Assessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QUpdateQuoteAssessment, quoteID, payload); err != nil {
		return fmt.Errorf("update quote assessment: %w", err)
	}
	return nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.QuoteRepository = (*QuoteRepositoryPG)(nil)
