package repo

import (
	"context"
	"fmt"
	"strings"

	"fieldquote/internal/domain"
	"fieldquote/internal/infra"
	"fieldquote/internal/sqlinline"
)

// TenantRepositoryPG implements domain.TenantRepository over PostgreSQL.
type TenantRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewTenantRepository(sql infra.SQLExecutor) *TenantRepositoryPG {
	return &TenantRepositoryPG{sql: sql}
}

// Resolve maps a slug or internal id onto the tenant id. Both keys resolve to
// the same row, so cached lookups by either key agree.
func (r *TenantRepositoryPG) Resolve(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrNotFound
	}
	row := r.sql.QueryRow(ctx, sqlinline.QResolveTenant, key)
	var id string
	if err := row.Scan(&id); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolve tenant: %w", err)
	}
	return id, nil
}

// PricingSettings loads the tenant's policy, config and rules as one
// read-only snapshot. The stored payloads may be jsonb objects or serialized
// strings under legacy keys; decoding normalizes them here, at the ingestion
// boundary, so the pricing engine only ever sees canonical types.
func (r *TenantRepositoryPG) PricingSettings(ctx context.Context, tenantID string) (domain.PricingSnapshot, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QTenantPricingSettings, tenantID)

	var rawPolicy, rawConfig, rawRules []byte
	var currency string
	if err := row.Scan(&rawPolicy, &rawConfig, &rawRules, &currency); err != nil {
		if infra.IsNoRows(err) {
			return domain.PricingSnapshot{}, domain.ErrNotFound
		}
		return domain.PricingSnapshot{}, fmt.Errorf("tenant pricing settings: %w", err)
	}

	return domain.PricingSnapshot{
		Policy:   domain.DecodePricingPolicy(rawPolicy),
		Config:   domain.DecodePricingConfig(rawConfig),
		Rules:    domain.DecodePricingRules(rawRules),
		Currency: currency,
	}, nil
}

var _ domain.TenantRepository = (*TenantRepositoryPG)(nil)
