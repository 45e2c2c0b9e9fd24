package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/pkg/errors"
)

func TestPreset(t *testing.T) {
	tests := []struct {
		name    string
		calcium float64
	}{
		{"reference", 2.26},
		{"low-risk", 2.30},
		{"lowRisk", 2.30},
		{"Moderate_Risk", 2.10},
		{"HIGH-RISK", 1.85},
		{"high risk", 1.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Preset(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.calcium, v[FeatureCalcium])
			assert.Len(t, v, 5)
		})
	}
}

func TestPreset_ReturnsCopy(t *testing.T) {
	v, err := Preset(PresetHighRisk)
	require.NoError(t, err)
	v[FeatureCalcium] = 0

	again, err := Preset(PresetHighRisk)
	require.NoError(t, err)
	assert.Equal(t, 1.85, again[FeatureCalcium])
}

func TestPreset_Unknown(t *testing.T) {
	_, err := Preset("severe")
	assert.True(t, errors.IsCode(err, errors.ErrCodePresetNotFound))
	assert.Contains(t, err.Error(), "high-risk")
}

func TestPreset_ReferenceMatchesCatalog(t *testing.T) {
	v, err := Preset(PresetReference)
	require.NoError(t, err)
	assert.Equal(t, Standard().Reference(), v)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{"high-risk", "low-risk", "moderate-risk", "reference"}, PresetNames())
}

//Personal.AI order the ending
