package hypocal_shap

import (
	"math"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// ---------------------------------------------------------------------------
// Category
// ---------------------------------------------------------------------------

// Category is the clinical risk band of a probability.
type Category string

const (
	CategoryLow      Category = "Low"
	CategoryModerate Category = "Moderate"
	CategoryHigh     Category = "High"
)

// AllCategories returns every Category in ascending severity.
func AllCategories() []Category {
	return []Category{CategoryLow, CategoryModerate, CategoryHigh}
}

func (c Category) String() string { return string(c) }

// Categorize maps a probability onto its risk band.
func Categorize(p float64) Category {
	switch {
	case p > HighRiskThreshold:
		return CategoryHigh
	case p > ModerateRiskThreshold:
		return CategoryModerate
	default:
		return CategoryLow
	}
}

// ---------------------------------------------------------------------------
// RiskEstimate
// ---------------------------------------------------------------------------

// RiskEstimate is the aggregated model output for one feature vector.
type RiskEstimate struct {
	Variant     clinical.Variant `json:"variant" yaml:"variant"`
	Probability float64          `json:"probability" yaml:"probability"`
	CILower     float64          `json:"ci_lower" yaml:"ci_lower"`
	CIUpper     float64          `json:"ci_upper" yaml:"ci_upper"`
	Category    Category         `json:"category" yaml:"category"`

	BaseRisk          float64         `json:"base_risk" yaml:"base_risk"`
	Contributions     ContributionSet `json:"contributions" yaml:"contributions"`
	TotalContribution float64         `json:"total_contribution" yaml:"total_contribution"`
	LogOdds           float64         `json:"log_odds" yaml:"log_odds"`

	EpistemicUncertainty float64 `json:"epistemic_uncertainty" yaml:"epistemic_uncertainty"`
	AleatoricUncertainty float64 `json:"aleatoric_uncertainty" yaml:"aleatoric_uncertainty"`
	TotalUncertainty     float64 `json:"total_uncertainty" yaml:"total_uncertainty"`
}

// Estimate clamps v into the feature domains and aggregates its
// contributions into a calibrated probability with an uncertainty band.
func (e *Engine) Estimate(v clinical.Vector, variant clinical.Variant) *RiskEstimate {
	return estimate(e.catalog.Clamp(v), modelOrDefault(variant))
}

func estimate(v clinical.Vector, m *VariantModel) *RiskEstimate {
	contrib := contributions(v, m)
	total := contrib.Total()
	logOdds := m.BaseLogOdds() + LogOddsScale*total
	p := clampProbability(sigmoid(logOdds))

	epistemic := m.ResidualSD / 2
	aleatoric := math.Sqrt(p * (1 - p) / CohortSize)
	unc := math.Sqrt(epistemic*epistemic + aleatoric*aleatoric)

	return &RiskEstimate{
		Variant:              m.Variant,
		Probability:          p,
		CILower:              math.Max(0, p-unc),
		CIUpper:              math.Min(1, p+unc),
		Category:             Categorize(p),
		BaseRisk:             m.BaseRisk,
		Contributions:        contrib,
		TotalContribution:    total,
		LogOdds:              logOdds,
		EpistemicUncertainty: epistemic,
		AleatoricUncertainty: aleatoric,
		TotalUncertainty:     unc,
	}
}

// probability is the hot path used by iterative analyses.
func probability(v clinical.Vector, m *VariantModel) float64 {
	total := 0.0
	for _, id := range clinical.AllFeatures() {
		total += m.Curves[id].At(v[id])
	}
	return clampProbability(sigmoid(m.BaseLogOdds() + LogOddsScale*total))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return MinProbability
	}
	return math.Max(MinProbability, math.Min(MaxProbability, p))
}

//Personal.AI order the ending
