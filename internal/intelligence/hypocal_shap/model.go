/*
 * Calibrated contribution tables for the two hypocalcemia model variants. Each feature maps to a
 * Piecewise function of named curve shapes; the aggregation constants below turn the summed
 * contributions into a probability with an uncertainty band.
 */
package hypocal_shap

import (
	"math"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// ---------------------------------------------------------------------------
// Aggregation constants
// ---------------------------------------------------------------------------

const (
	// LogOddsScale converts summed contributions into log-odds units.
	LogOddsScale = 8.0
	// CohortSize is the calibration cohort size used for aleatoric uncertainty.
	CohortSize = 395.0
	// MinProbability and MaxProbability bound every reported probability.
	MinProbability = 0.001
	MaxProbability = 0.999

	// HighRiskThreshold and ModerateRiskThreshold are strict lower bounds.
	HighRiskThreshold     = 0.15
	ModerateRiskThreshold = 0.08
)

// Performance holds held-out evaluation metrics of a variant.
type Performance struct {
	ROCAUC      float64 `json:"roc_auc" yaml:"roc_auc"`
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"`
	Specificity float64 `json:"specificity" yaml:"specificity"`
	BrierScore  float64 `json:"brier_score" yaml:"brier_score"`
}

// VariantModel is the full parameter set of one model variant.
type VariantModel struct {
	Variant    clinical.Variant
	BaseRisk   float64
	ResidualSD float64
	Curves     map[clinical.FeatureID]Piecewise
	Performance
}

// BaseLogOdds returns logit(BaseRisk).
func (m *VariantModel) BaseLogOdds() float64 {
	return math.Log(m.BaseRisk / (1 - m.BaseRisk))
}

// ModelCard is the public description of a variant.
type ModelCard struct {
	Variant     clinical.Variant `json:"variant" yaml:"variant"`
	BaseRisk    float64          `json:"base_risk" yaml:"base_risk"`
	ResidualSD  float64          `json:"residual_sd" yaml:"residual_sd"`
	Performance Performance      `json:"performance" yaml:"performance"`
}

// Card returns the model card for m.
func (m *VariantModel) Card() *ModelCard {
	return &ModelCard{
		Variant:     m.Variant,
		BaseRisk:    m.BaseRisk,
		ResidualSD:  m.ResidualSD,
		Performance: m.Performance,
	}
}

var noLower = math.Inf(-1)
var noUpper = math.Inf(1)

var baselineModel = &VariantModel{
	Variant:    clinical.VariantBaseline,
	BaseRisk:   0.046,
	ResidualSD: 0.179,
	Performance: Performance{
		ROCAUC: 0.757, Sensitivity: 0.182, Specificity: 0.989, BrierScore: 0.045,
	},
	Curves: map[clinical.FeatureID]Piecewise{
		clinical.FeatureCalcium: {
			Lower:  1.93,
			Upper:  2.41,
			Below:  PowerBelow{Scale: 0.52, Threshold: 1.93, Span: 0.43, Exponent: 1.25},
			Within: CosineWell{Offset: -0.08, Scale: 0.18, Start: 1.93, Width: 0.48},
			Above:  PowerAbove{Scale: 0.18, Threshold: 2.41, Span: 0.09, Exponent: 0.85},
		},
		clinical.FeatureBMI: {
			Lower:          noLower,
			Upper:          27.4,
			UpperInclusive: true,
			Within:         GaussianBump{Scale: -0.06, Center: 27.4, Width: 10},
			Above:          LogAbove{Scale: 0.12, Threshold: 27.4, Span: 5},
		},
		clinical.FeatureTSH: {
			Lower:  1.0,
			Upper:  1.86,
			Below:  PowerBelow{Scale: 0.10, Threshold: 1.0, Span: 0.9, Exponent: 0.95},
			Within: GaussianBump{Scale: -0.05, Center: 1.43, Width: 0.5},
			Above:  PowerAbove{Scale: 0.10, Threshold: 1.86, Span: 2.14, Exponent: 0.85},
		},
		clinical.FeatureAge: {
			Lower:  34,
			Upper:  noUpper,
			Below:  PowerBelow{Scale: 0.14, Threshold: 34, Span: 16, Exponent: 1.15},
			Within: GaussianBump{Scale: -0.07, Center: 51, Width: 20},
		},
		clinical.FeatureMagnesium: {
			Lower:  0.659,
			Upper:  0.812,
			Below:  PowerBelow{Scale: 0.11, Threshold: 0.659, Span: 0.159, Exponent: 0.95},
			Within: GaussianBump{Scale: -0.06, Center: 0.742, Width: 0.08},
			Above:  LinearAbove{Scale: 0.03, Threshold: 0.812, Span: 0.188},
		},
	},
}

var balancedBMIEdge = EdgeGaussian{Scale: -0.10, Low: 27.8, High: 38.3, Width: 8}
var balancedMgEdge = EdgeGaussian{Scale: -0.10, Low: 0.672, High: 0.769, Width: 0.15}

var balancedModel = &VariantModel{
	Variant:    clinical.VariantBalanced,
	BaseRisk:   0.136,
	ResidualSD: 0.191,
	Performance: Performance{
		ROCAUC: 0.704, Sensitivity: 0.182, Specificity: 0.941, BrierScore: 0.076,
	},
	Curves: map[clinical.FeatureID]Piecewise{
		clinical.FeatureCalcium: {
			Lower:  2.13,
			Upper:  2.41,
			Below:  PowerBelow{Scale: 0.58, Threshold: 2.13, Span: 0.63, Exponent: 1.2},
			Within: GaussianBump{Scale: -0.14, Center: 2.27, Width: 0.15},
			Above:  PowerAbove{Scale: 0.20, Threshold: 2.41, Span: 0.09, Exponent: 0.9},
		},
		clinical.FeatureBMI: {
			Lower:  27.8,
			Upper:  38.3,
			Below:  balancedBMIEdge,
			Within: SineArch{Scale: 0.22, Start: 27.8, Width: 10.5},
			Above:  balancedBMIEdge,
		},
		clinical.FeatureTSH: {
			Lower:          noLower,
			Upper:          1.54,
			UpperInclusive: true,
			Within:         GaussianBump{Scale: -0.07, Center: 1.54, Width: 1.2},
			Above:          LogAbove{Scale: 0.16, Threshold: 1.54, Span: 2},
		},
		clinical.FeatureAge: {
			Lower:  32.8,
			Upper:  50,
			Below:  PowerBelow{Scale: 0.17, Threshold: 32.8, Span: 14.8, Exponent: 1.1},
			Within: GaussianBump{Scale: -0.09, Center: 41.4, Width: 10},
			Above:  LinearAbove{Scale: 0.04, Threshold: 50, Span: 25},
		},
		clinical.FeatureMagnesium: {
			Lower:  0.672,
			Upper:  0.769,
			Below:  balancedMgEdge,
			Within: SineArch{Scale: 0.14, Start: 0.672, Width: 0.097},
			Above:  balancedMgEdge,
		},
	},
}

// ModelFor returns the parameter set of a variant.
func ModelFor(v clinical.Variant) (*VariantModel, error) {
	switch v {
	case clinical.VariantBaseline:
		return baselineModel, nil
	case clinical.VariantBalanced:
		return balancedModel, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownVariant, "variant %q is not supported", string(v))
	}
}

// modelOrDefault falls back to the baseline variant so that engine entry
// points stay total.
func modelOrDefault(v clinical.Variant) *VariantModel {
	if m, err := ModelFor(v); err == nil {
		return m
	}
	return baselineModel
}

//Personal.AI order the ending
