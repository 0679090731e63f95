package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AIMode controls whether numeric pricing is shown to customers at all.
type AIMode string

const (
	AIModeAssessmentOnly AIMode = "assessment_only"
	AIModeRange          AIMode = "range"
	AIModeFixed          AIMode = "fixed"
)

// Pricing model identifiers. "packages" and "line_items" are accepted but
// deliberately unimplemented; they resolve through the rules fallback.
const (
	PricingModelFlatPerJob     = "flat_per_job"
	PricingModelHourlyPlusMats = "hourly_plus_materials"
	PricingModelPerUnit        = "per_unit"
	PricingModelPackages       = "packages"
	PricingModelLineItems      = "line_items"
	PricingModelInspectionOnly = "inspection_only"
	PricingModelAssessmentFee  = "assessment_fee"
)

// PricingPolicy is the tenant switch for whether and how estimates surface.
// Owned by tenant settings; read-only here.
type PricingPolicy struct {
	AIMode         AIMode `json:"ai_mode"`
	PricingEnabled bool   `json:"pricing_enabled"`
	PricingModel   string `json:"pricing_model"`
}

// PricingConfig carries the numeric parameters for the active pricing model.
// All monetary values are whole currency units.
type PricingConfig struct {
	Model              string  `json:"model"`
	FlatRateDefault    int64   `json:"flat_rate_default"`
	HourlyRate         int64   `json:"hourly_rate"`
	MaterialMarkupPct  float64 `json:"material_markup_pct"`
	UnitRate           int64   `json:"unit_rate"`
	UnitLabel          string  `json:"unit_label"`
	AssessmentFee      int64   `json:"assessment_fee"`
	FeeCreditsTowardJo bool    `json:"fee_credits_toward_job"`
}

// PricingRules are the tenant guardrails applied after model computation.
// Zero means "not configured".
type PricingRules struct {
	MinJob               int64 `json:"min_job"`
	TypicalLow           int64 `json:"typical_low"`
	TypicalHigh          int64 `json:"typical_high"`
	MaxWithoutInspection int64 `json:"max_without_inspection"`
}

// The settings rows written by older tenant dashboards arrive in two shapes:
// jsonb objects, or jsonb strings holding serialized objects, and some keys
// drifted across frontend revisions. Decoding is the single normalization
// boundary; nothing deeper than this file inspects row shape.

// DecodePricingPolicy normalizes a persisted policy payload.
func DecodePricingPolicy(raw []byte) PricingPolicy {
	m := decodeLooseObject(raw)
	p := PricingPolicy{
		AIMode:         AIMode(strings.ToLower(looseString(m, "ai_mode", "aiMode", "mode"))),
		PricingEnabled: looseBool(m, "pricing_enabled", "pricingEnabled", "enabled"),
		PricingModel:   strings.ToLower(looseString(m, "pricing_model", "pricingModel")),
	}
	switch p.AIMode {
	case AIModeAssessmentOnly, AIModeRange, AIModeFixed:
	default:
		p.AIMode = AIModeAssessmentOnly
	}
	return p
}

// DecodePricingConfig normalizes a persisted config payload.
func DecodePricingConfig(raw []byte) PricingConfig {
	m := decodeLooseObject(raw)
	return PricingConfig{
		Model:              strings.ToLower(looseString(m, "model", "pricing_model")),
		FlatRateDefault:    looseAmount(m, "flat_rate_default", "flatRateDefault", "flat_rate"),
		HourlyRate:         looseAmount(m, "hourly_rate", "hourlyRate", "labor_rate"),
		MaterialMarkupPct:  looseFloat(m, "material_markup_pct", "materialMarkupPercent", "markup_pct"),
		UnitRate:           looseAmount(m, "unit_rate", "unitRate", "per_unit_rate"),
		UnitLabel:          looseString(m, "unit_label", "unitLabel"),
		AssessmentFee:      looseAmount(m, "assessment_fee", "assessmentFee", "fee_amount"),
		FeeCreditsTowardJo: looseBool(m, "fee_credits_toward_job", "feeCreditsTowardJob"),
	}
}

// DecodePricingRules normalizes a persisted rules payload.
func DecodePricingRules(raw []byte) PricingRules {
	m := decodeLooseObject(raw)
	return PricingRules{
		MinJob:               looseAmount(m, "min_job", "minJob", "minimum"),
		TypicalLow:           looseAmount(m, "typical_low", "typicalLow"),
		TypicalHigh:          looseAmount(m, "typical_high", "typicalHigh"),
		MaxWithoutInspection: looseAmount(m, "max_without_inspection", "maxWithoutInspection", "inspection_ceiling"),
	}
}

func decodeLooseObject(raw []byte) map[string]any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	// Double-encoded rows: a jsonb string whose contents are the object.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil
		}
		raw = []byte(inner)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func looseString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func looseBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			return t == "true" || t == "1" || t == "yes"
		case float64:
			return t != 0
		}
	}
	return false
}

func looseFloat(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case string:
			var f float64
			if err := json.Unmarshal([]byte(strings.TrimSpace(t)), &f); err == nil {
				return f
			}
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f
			}
		}
	}
	return 0
}

func looseAmount(m map[string]any, keys ...string) int64 {
	f := looseFloat(m, keys...)
	if f <= 0 {
		return 0
	}
	return int64(f + 0.5)
}
