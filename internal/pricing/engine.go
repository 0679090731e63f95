// Package pricing turns a loosely structured AI assessment into a bounded,
// auditable estimate. ComputeEstimate is pure: identical inputs always yield
// identical outputs, and no branch ever returns an error.
package pricing

import (
	"fmt"
	"math"

	"fieldquote/internal/domain"
)

// Estimate is the engine output. Low and High are whole currency units.
type Estimate struct {
	Low                int64 `json:"estimate_low"`
	High               int64 `json:"estimate_high"`
	InspectionRequired bool  `json:"inspection_required"`
	Basis              Basis `json:"basis"`
}

// Basis is the audit trail: which model resolved, which multipliers applied,
// and every clamp or fallback that fired, in order.
type Basis struct {
	Method           string   `json:"method"`
	ConfidenceWeight float64  `json:"confidence_weight"`
	Complexity       float64  `json:"complexity"`
	Adjustments      []string `json:"adjustments,omitempty"`
}

// Confidence weights: high confidence narrows the spread, low or unknown
// widens it.
const (
	weightHigh   = 0.85
	weightMedium = 1.0
	weightLow    = 1.2
)

// Complexity score inputs, an industry-agnostic proxy for job size.
const (
	scopeItemWeight  = 0.9
	questionWeight   = 0.35
	assumptionWeight = 0.2
	imageWeight      = 0.25
	imageWeightCap   = 1.5
	inspectionBump   = 1.0
	complexityMin    = 1.0
	complexityMax    = 10.0
)

// ComputeEstimate maps an assessment plus the tenant's pricing policy, config
// and rules to a bounded estimate and an inspection flag.
func ComputeEstimate(a domain.Assessment, imageCount int, policy domain.PricingPolicy, cfg domain.PricingConfig, rules domain.PricingRules) Estimate {
	if !policy.PricingEnabled || policy.AIMode == domain.AIModeAssessmentOnly {
		return Estimate{
			InspectionRequired: a.InspectionRequired,
			Basis:              Basis{Method: "suppressed"},
		}
	}

	model := policy.PricingModel
	if model == "" {
		model = cfg.Model
	}

	cw := confidenceWeight(a.Confidence)
	cx := complexityScore(a, imageCount)
	basis := Basis{Method: model, ConfidenceWeight: cw, Complexity: cx}
	inspection := a.InspectionRequired

	var low, high float64
	switch model {
	case domain.PricingModelFlatPerJob:
		base := float64(cfg.FlatRateDefault)
		if base <= 0 {
			base = float64(rules.TypicalLow)
			basis.note("flat rate missing, using typical low")
		}
		spread := base*0.18*cw + cx*25
		low = math.Max(0, base-0.55*spread)
		high = base + spread

	case domain.PricingModelAssessmentFee:
		if cfg.AssessmentFee > 0 {
			low = float64(cfg.AssessmentFee)
			high = low
		} else {
			low, high = typicalFallback(rules, &basis)
		}

	case domain.PricingModelHourlyPlusMats:
		if cfg.HourlyRate <= 0 {
			basis.note("hourly rate missing, using typical range")
			low, high = typicalFallback(rules, &basis)
			break
		}
		rate := float64(cfg.HourlyRate)
		hoursMid := 2.5 + cx*0.85
		hoursSpread := hoursMid * 0.25 * cw
		laborLow := (hoursMid - hoursSpread) * rate
		laborHigh := (hoursMid + hoursSpread) * rate
		markup := 1 + math.Max(0, cfg.MaterialMarkupPct)/100
		low = laborLow + laborLow*0.22*markup
		high = laborHigh + laborHigh*0.35*markup

	case domain.PricingModelPerUnit:
		if cfg.UnitRate <= 0 {
			basis.note("unit rate missing, using typical range")
			low, high = typicalFallback(rules, &basis)
			break
		}
		rate := float64(cfg.UnitRate)
		unitsMid := 4 + cx*3.2
		unitsSpread := unitsMid * 0.25 * cw
		low = (unitsMid - unitsSpread) * rate
		high = (unitsMid + unitsSpread) * rate

	case domain.PricingModelInspectionOnly:
		inspection = true
		basis.note("inspection forced by model")
		low, high = typicalFallback(rules, &basis)

	default:
		// packages, line_items, unrecognized or unset: rules fallback only.
		if model == "" {
			basis.Method = "unresolved"
		} else {
			basis.Method = "unresolved:" + model
		}
		low, high = typicalFallback(rules, &basis)
	}

	if rules.MinJob > 0 {
		min := float64(rules.MinJob)
		if low < min || high < min {
			basis.note(fmt.Sprintf("clamped to minimum job amount %d", rules.MinJob))
		}
		low = math.Max(low, min)
		high = math.Max(high, min)
	}

	if !inspection && rules.MaxWithoutInspection > 0 && high > float64(rules.MaxWithoutInspection) {
		inspection = true
		high = float64(rules.MaxWithoutInspection)
		if low > high {
			low = high
		}
		basis.note(fmt.Sprintf("capped at %d and inspection forced", rules.MaxWithoutInspection))
	}

	if low > high {
		low, high = high, low
		basis.note("bounds swapped")
	}

	outLow := roundAmount(low)
	outHigh := roundAmount(high)

	if policy.AIMode == domain.AIModeFixed {
		mid := roundAmount(float64(outLow+outHigh) / 2)
		outLow, outHigh = mid, mid
		basis.note("fixed mode collapsed to midpoint")
	}

	return Estimate{Low: outLow, High: outHigh, InspectionRequired: inspection, Basis: basis}
}

func confidenceWeight(confidence string) float64 {
	switch confidence {
	case domain.ConfidenceHigh:
		return weightHigh
	case domain.ConfidenceMedium:
		return weightMedium
	default:
		// Unknown confidence reads as low: widest spread.
		return weightLow
	}
}

func complexityScore(a domain.Assessment, imageCount int) float64 {
	score := scopeItemWeight*float64(len(a.VisibleScope)) +
		questionWeight*float64(len(a.Questions)) +
		assumptionWeight*float64(len(a.Assumptions)) +
		math.Min(imageWeight*float64(imageCount), imageWeightCap)
	if a.InspectionRequired {
		score += inspectionBump
	}
	return math.Min(complexityMax, math.Max(complexityMin, score))
}

// typicalFallback resolves the rules-based range: both bounds when both are
// configured, a point estimate on the single configured bound, zero when
// neither is set.
func typicalFallback(rules domain.PricingRules, basis *Basis) (float64, float64) {
	switch {
	case rules.TypicalLow > 0 && rules.TypicalHigh > 0:
		return float64(rules.TypicalLow), float64(rules.TypicalHigh)
	case rules.TypicalLow > 0:
		basis.note("only typical low configured")
		return float64(rules.TypicalLow), float64(rules.TypicalLow)
	case rules.TypicalHigh > 0:
		basis.note("only typical high configured")
		return float64(rules.TypicalHigh), float64(rules.TypicalHigh)
	default:
		basis.note("no typical range configured")
		return 0, 0
	}
}

func roundAmount(v float64) int64 {
	if v <= 0 {
		return 0
	}
	return int64(math.Round(v))
}

func (b *Basis) note(msg string) {
	b.Adjustments = append(b.Adjustments, msg)
}
