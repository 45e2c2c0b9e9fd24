package hypocal_shap

import (
	"math"
	"sort"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// DefaultSensitivityRange is the default fraction used to size tornado moves.
const DefaultSensitivityRange = config.DefaultSensitivityRange

// SensitivityEntry is one bar of a tornado chart. Low and High are signed
// probability deltas from the baseline risk; Range is |High - Low|.
type SensitivityEntry struct {
	Feature   clinical.FeatureID `json:"feature" yaml:"feature"`
	Name      string             `json:"name" yaml:"name"`
	DownValue float64            `json:"down_value" yaml:"down_value"`
	UpValue   float64            `json:"up_value" yaml:"up_value"`
	Low       float64            `json:"low" yaml:"low"`
	High      float64            `json:"high" yaml:"high"`
	Range     float64            `json:"range" yaml:"range"`
}

// SensitivityReport lists entries sorted by Range, largest first.
type SensitivityReport struct {
	Variant       clinical.Variant   `json:"variant" yaml:"variant"`
	BaselineRisk  float64            `json:"baseline_risk" yaml:"baseline_risk"`
	RangeFraction float64            `json:"range_fraction" yaml:"range_fraction"`
	Entries       []SensitivityEntry `json:"entries" yaml:"entries"`
}

// Tornado moves each feature up and down by step * rangeFraction * 100,
// clamped to its domain, holding the others fixed, and records the change in
// risk against the baseline.
func (e *Engine) Tornado(v clinical.Vector, variant clinical.Variant, rangeFraction float64) *SensitivityReport {
	m := modelOrDefault(variant)
	base := e.catalog.Clamp(v)
	baseline := probability(base, m)

	entries := make([]SensitivityEntry, 0, len(base))
	for _, spec := range e.catalog.List() {
		increment := spec.Step * (rangeFraction * 100)
		cur := base[spec.ID]
		up := spec.Clamp(cur + increment)
		down := spec.Clamp(cur - increment)

		upRisk := probability(base.With(spec.ID, up), m)
		downRisk := probability(base.With(spec.ID, down), m)

		entries = append(entries, SensitivityEntry{
			Feature:   spec.ID,
			Name:      spec.Name,
			DownValue: down,
			UpValue:   up,
			Low:       downRisk - baseline,
			High:      upRisk - baseline,
			Range:     math.Abs(upRisk - downRisk),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Range > entries[j].Range
	})

	return &SensitivityReport{
		Variant:       m.Variant,
		BaselineRisk:  baseline,
		RangeFraction: rangeFraction,
		Entries:       entries,
	}
}

//Personal.AI order the ending
