package hypocal_shap

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

const (
	// DefaultStabilitySamples is used when a caller passes a non-positive count.
	DefaultStabilitySamples = config.DefaultStabilitySamples
	// NoiseFraction scales uniform noise to ±2.5% of each feature's domain width.
	NoiseFraction = 0.05
	// StableCVThreshold is the strict upper bound on CV for a stable attribution.
	StableCVThreshold = 0.3
)

// StabilityStat summarizes the spread of one feature's |contribution| under
// input noise.
type StabilityStat struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	CV     float64 `json:"cv" yaml:"cv"`
	Stable bool    `json:"stable" yaml:"stable"`
}

// StabilityReport maps each feature to its stability statistics.
type StabilityReport struct {
	Variant     clinical.Variant                     `json:"variant" yaml:"variant"`
	SampleCount int                                  `json:"sample_count" yaml:"sample_count"`
	Seed        int64                                `json:"seed" yaml:"seed"`
	Features    map[clinical.FeatureID]StabilityStat `json:"features" yaml:"features"`
}

// UnstableFeatures returns the features flagged unstable, in catalog order.
func (r *StabilityReport) UnstableFeatures() []clinical.FeatureID {
	var out []clinical.FeatureID
	for _, id := range clinical.AllFeatures() {
		if s, ok := r.Features[id]; ok && !s.Stable {
			out = append(out, id)
		}
	}
	return out
}

// newSource derives a deterministic PRNG from seed.
func newSource(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Stability perturbs the whole vector with uniform noise sampleCount times per
// feature and measures the population mean, standard deviation and
// coefficient of variation of that feature's |contribution|. The same seed
// always yields the same report.
func (e *Engine) Stability(v clinical.Vector, variant clinical.Variant, sampleCount int, seed int64) *StabilityReport {
	if sampleCount <= 0 {
		sampleCount = DefaultStabilitySamples
	}
	m := modelOrDefault(variant)
	specs := e.catalog.List()
	base := e.catalog.Clamp(v)
	rng := newSource(seed)

	report := &StabilityReport{
		Variant:     m.Variant,
		SampleCount: sampleCount,
		Seed:        seed,
		Features:    make(map[clinical.FeatureID]StabilityStat, len(specs)),
	}

	importances := make([]float64, sampleCount)
	noisy := make(clinical.Vector, len(base))
	for _, target := range specs {
		curve := m.Curves[target.ID]
		for i := 0; i < sampleCount; i++ {
			for _, spec := range specs {
				noise := (rng.Float64() - 0.5) * spec.Width() * NoiseFraction
				noisy[spec.ID] = spec.Clamp(base[spec.ID] + noise)
			}
			importances[i] = math.Abs(curve.At(noisy[target.ID]))
		}
		report.Features[target.ID] = summarize(importances)
	}
	return report
}

func summarize(xs []float64) StabilityStat {
	mean, std := stat.PopMeanStdDev(xs, nil)
	if mean == 0 {
		return StabilityStat{Mean: mean, StdDev: std, CV: 0, Stable: true}
	}
	cv := std / mean
	return StabilityStat{Mean: mean, StdDev: std, CV: cv, Stable: cv < StableCVThreshold}
}

//Personal.AI order the ending
