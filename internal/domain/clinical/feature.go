// Package clinical holds the clinical feature catalog for the post-surgical
// hypocalcemia model: feature identifiers, value domains, reference ranges and
// the patient feature vector that every analysis consumes.
package clinical

import (
	"math"
	"sort"
)

// FeatureID identifies one of the five model inputs.
type FeatureID string

const (
	FeatureCalcium   FeatureID = "calcium"
	FeatureBMI       FeatureID = "bmi"
	FeatureTSH       FeatureID = "tsh"
	FeatureAge       FeatureID = "age"
	FeatureMagnesium FeatureID = "magnesium"
)

// AllFeatures returns the feature identifiers in catalog order. Contributions
// are summed in this order.
func AllFeatures() []FeatureID {
	return []FeatureID{FeatureCalcium, FeatureBMI, FeatureTSH, FeatureAge, FeatureMagnesium}
}

// String implements fmt.Stringer.
func (id FeatureID) String() string {
	return string(id)
}

// Range is a closed interval of feature values.
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Contains reports whether x lies inside the interval.
func (r Range) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

// FeatureSpec is the immutable catalog entry for one feature.
type FeatureSpec struct {
	ID          FeatureID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Unit        string    `json:"unit" yaml:"unit"`
	Description string    `json:"description" yaml:"description"`

	// Rank is the feature-importance rank reported for the trained model (1 = most important).
	Rank int `json:"rank" yaml:"rank"`

	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Step    float64 `json:"step" yaml:"step"`
	Default float64 `json:"default" yaml:"default"`

	// Optimal and Critical are reference annotations for display. They do not
	// influence any computation.
	Optimal  map[Variant]Range   `json:"optimal" yaml:"optimal"`
	Critical map[Variant]float64 `json:"critical,omitempty" yaml:"critical,omitempty"`
}

// Width returns Max - Min.
func (s *FeatureSpec) Width() float64 {
	return s.Max - s.Min
}

// Clamp maps x into [Min, Max]. NaN maps to Default.
func (s *FeatureSpec) Clamp(x float64) float64 {
	if math.IsNaN(x) {
		return s.Default
	}
	if x < s.Min {
		return s.Min
	}
	if x > s.Max {
		return s.Max
	}
	return x
}

// OptimalRange returns the reference range for a variant.
func (s *FeatureSpec) OptimalRange(v Variant) (Range, bool) {
	r, ok := s.Optimal[v]
	return r, ok
}

// CriticalValue returns the critical threshold for a variant, if one is defined.
func (s *FeatureSpec) CriticalValue(v Variant) (float64, bool) {
	c, ok := s.Critical[v]
	return c, ok
}

// Vector is a patient feature vector. Missing keys are treated as the
// feature default once the vector is clamped.
type Vector map[FeatureID]float64

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// With returns a copy of v with id set to x.
func (v Vector) With(id FeatureID, x float64) Vector {
	out := v.Clone()
	out[id] = x
	return out
}

// Keys returns the vector's feature ids sorted lexically.
func (v Vector) Keys() []FeatureID {
	keys := make([]FeatureID, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// L1Distance returns the sum of absolute per-feature differences over the
// catalog features.
func (v Vector) L1Distance(other Vector) float64 {
	total := 0.0
	for _, id := range AllFeatures() {
		total += math.Abs(v[id] - other[id])
	}
	return total
}

//Personal.AI order the ending
