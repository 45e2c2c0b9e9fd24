// Package hypocal_shap implements the explanation engine of the post-surgical
// hypocalcemia risk model: closed-form per-feature contributions, probability
// aggregation with an uncertainty band, counterfactual search, one-at-a-time
// sensitivity, Monte Carlo attribution stability and a calcium recovery
// trajectory.
//
// Every analysis is a pure function of its inputs. The Engine carries only the
// read-only feature catalog, so one instance can serve concurrent callers.
package hypocal_shap

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// ContributionSet maps each feature to its additive log-odds contribution in
// model units. A fresh set is produced on every call.
type ContributionSet map[clinical.FeatureID]float64

// FeatureContribution pairs a feature with its contribution.
type FeatureContribution struct {
	Feature clinical.FeatureID `json:"feature" yaml:"feature"`
	Value   float64            `json:"value" yaml:"value"`
}

// Values returns the contributions in catalog order.
func (c ContributionSet) Values() []float64 {
	ids := clinical.AllFeatures()
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = c[id]
	}
	return out
}

// Total sums the contributions in catalog order.
func (c ContributionSet) Total() float64 {
	return floats.Sum(c.Values())
}

// Ranked returns the contributions ordered by absolute value, largest first.
// Ties keep catalog order.
func (c ContributionSet) Ranked() []FeatureContribution {
	out := make([]FeatureContribution, 0, len(c))
	for _, id := range clinical.AllFeatures() {
		if v, ok := c[id]; ok {
			out = append(out, FeatureContribution{Feature: id, Value: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out
}

// Contributions evaluates every feature's contribution function for variant.
// It does not clamp: callers that need domain semantics clamp first. Unknown
// variants fall back to the baseline model.
func Contributions(v clinical.Vector, variant clinical.Variant) ContributionSet {
	return contributions(v, modelOrDefault(variant))
}

func contributions(v clinical.Vector, m *VariantModel) ContributionSet {
	out := make(ContributionSet, len(m.Curves))
	for _, id := range clinical.AllFeatures() {
		out[id] = m.Curves[id].At(v[id])
	}
	return out
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine runs analyses against a feature catalog.
type Engine struct {
	catalog clinical.Catalog
}

// NewEngine builds an engine over catalog. A nil catalog selects the
// standard one.
func NewEngine(catalog clinical.Catalog) *Engine {
	if catalog == nil {
		catalog = clinical.Standard()
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the engine's feature catalog.
func (e *Engine) Catalog() clinical.Catalog {
	return e.catalog
}

// Contributions clamps v into the feature domains and evaluates contributions.
func (e *Engine) Contributions(v clinical.Vector, variant clinical.Variant) ContributionSet {
	return Contributions(e.catalog.Clamp(v), variant)
}

//Personal.AI order the ending
