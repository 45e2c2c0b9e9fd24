package hypocal_shap

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// InsightKind classifies a generated insight.
type InsightKind string

const (
	InsightSummary     InsightKind = "summary"
	InsightRisk        InsightKind = "risk"
	InsightProtective  InsightKind = "protective"
	InsightUncertainty InsightKind = "uncertainty"
)

const (
	// insightTopN is the number of strongest contributors considered.
	insightTopN = 3
	// insightMinContribution is the strict lower bound on |contribution|.
	insightMinContribution = 0.05
	// impactPercentScale converts a contribution into an approximate percent
	// change of risk (LogOddsScale * 100).
	impactPercentScale = LogOddsScale * 100
)

// Insight is one plain-language statement about an estimate.
type Insight struct {
	Kind    InsightKind        `json:"kind" yaml:"kind"`
	Feature clinical.FeatureID `json:"feature,omitempty" yaml:"feature,omitempty"`
	Value   float64            `json:"value" yaml:"value"`
	Text    string             `json:"text" yaml:"text"`
}

// Insights summarizes an estimate: the risk band, up to three dominant
// contributors and the prediction confidence.
func (e *Engine) Insights(v clinical.Vector, variant clinical.Variant) []Insight {
	clamped := e.catalog.Clamp(v)
	est := estimate(clamped, modelOrDefault(variant))

	out := []Insight{{
		Kind:  InsightSummary,
		Value: est.Probability,
		Text: fmt.Sprintf("This patient presents with a %s risk of %.1f%% for post-thyroidectomy hypocalcemia.",
			strings.ToLower(est.Category.String()), est.Probability*100),
	}}

	ranked := est.Contributions.Ranked()
	if len(ranked) > insightTopN {
		ranked = ranked[:insightTopN]
	}
	for _, fc := range ranked {
		if math.Abs(fc.Value) <= insightMinContribution {
			continue
		}
		spec, err := e.catalog.Get(fc.Feature)
		if err != nil {
			continue
		}
		value := formatFeatureValue(fc.Feature, clamped[fc.Feature])
		impact := fc.Value * impactPercentScale
		if fc.Value > 0 {
			out = append(out, Insight{
				Kind:    InsightRisk,
				Feature: fc.Feature,
				Value:   fc.Value,
				Text:    fmt.Sprintf("%s (%s %s) is contributing +%.1f%% to risk.", spec.Name, value, spec.Unit, impact),
			})
		} else {
			out = append(out, Insight{
				Kind:    InsightProtective,
				Feature: fc.Feature,
				Value:   fc.Value,
				Text:    fmt.Sprintf("%s (%s %s) is providing %.1f%% risk reduction.", spec.Name, value, spec.Unit, impact),
			})
		}
	}

	confidence := (1 - est.TotalUncertainty) * 100
	out = append(out, Insight{
		Kind:  InsightUncertainty,
		Value: confidence,
		Text:  fmt.Sprintf("Prediction confidence: %.1f%%.", confidence),
	})
	return out
}

func formatFeatureValue(id clinical.FeatureID, x float64) string {
	if id == clinical.FeatureAge {
		return fmt.Sprintf("%.0f", x)
	}
	return fmt.Sprintf("%.2f", x)
}

//Personal.AI order the ending
