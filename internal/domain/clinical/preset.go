package clinical

import (
	"sort"
	"strings"

	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// Named example patients.
const (
	PresetReference    = "reference"
	PresetLowRisk      = "low-risk"
	PresetModerateRisk = "moderate-risk"
	PresetHighRisk     = "high-risk"
)

var presets = map[string]Vector{
	PresetReference: {
		FeatureCalcium: 2.26, FeatureBMI: 28.0, FeatureTSH: 1.70, FeatureAge: 41, FeatureMagnesium: 0.79,
	},
	PresetLowRisk: {
		FeatureCalcium: 2.30, FeatureBMI: 24.0, FeatureTSH: 1.50, FeatureAge: 45, FeatureMagnesium: 0.80,
	},
	PresetModerateRisk: {
		FeatureCalcium: 2.10, FeatureBMI: 32.0, FeatureTSH: 2.50, FeatureAge: 35, FeatureMagnesium: 0.70,
	},
	PresetHighRisk: {
		FeatureCalcium: 1.85, FeatureBMI: 35.0, FeatureTSH: 3.50, FeatureAge: 28, FeatureMagnesium: 0.62,
	},
}

// Preset returns a copy of the named example vector.
func Preset(name string) (Vector, error) {
	key := normalizePresetName(name)
	if v, ok := presets[key]; ok {
		return v.Clone(), nil
	}
	return nil, errors.Newf(errors.ErrCodePresetNotFound, "preset %q not found", name).
		WithDetail("expected one of " + strings.Join(PresetNames(), ", "))
}

// PresetNames lists the preset names sorted lexically.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// normalizePresetName folds case and drops separators so "lowRisk",
// "low_risk" and "LOW-RISK" all resolve to PresetLowRisk.
func normalizePresetName(name string) string {
	folded := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	for canonical := range presets {
		if strings.ReplaceAll(canonical, "-", "") == folded {
			return canonical
		}
	}
	return folded
}

//Personal.AI order the ending
