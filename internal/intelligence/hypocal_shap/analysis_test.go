package hypocal_shap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// ---------------------------------------------------------------------------
// Sensitivity
// ---------------------------------------------------------------------------

func TestTornado_ReferenceBaseline(t *testing.T) {
	report := NewEngine(nil).Tornado(referenceVector(), clinical.VariantBaseline, DefaultSensitivityRange)
	require.Len(t, report.Entries, 5)

	order := make([]clinical.FeatureID, 0, 5)
	for _, e := range report.Entries {
		order = append(order, e.Feature)
	}
	assert.Equal(t, []clinical.FeatureID{
		clinical.FeatureCalcium, clinical.FeatureAge, clinical.FeatureBMI,
		clinical.FeatureMagnesium, clinical.FeatureTSH,
	}, order)

	ca := report.Entries[0]
	assert.Equal(t, "Serum Calcium", ca.Name)
	assert.InDelta(t, 2.16, ca.DownValue, 1e-12)
	assert.InDelta(t, 2.36, ca.UpValue, 1e-12)
	assert.InDelta(t, -0.0124119240, ca.Low, 1e-8)
	assert.InDelta(t, 0.0154478398, ca.High, 1e-8)
	assert.InDelta(t, 0.0278597637, ca.Range, 1e-8)
	assert.InDelta(t, 0.0211850762, report.BaselineRisk, 1e-8)
}

func TestTornado_SortedAndConsistent(t *testing.T) {
	engine := NewEngine(nil)
	for _, variant := range clinical.AllVariants() {
		for _, v := range []clinical.Vector{referenceVector(), highRiskVector(), lowRiskVector()} {
			report := engine.Tornado(v, variant, 0.25)
			for i := 1; i < len(report.Entries); i++ {
				assert.GreaterOrEqual(t, report.Entries[i-1].Range, report.Entries[i].Range)
			}
			for _, e := range report.Entries {
				assert.InDelta(t, math.Abs(e.High-e.Low), e.Range, 1e-12)
			}
		}
	}
}

func TestTornado_MovesAreClamped(t *testing.T) {
	v := referenceVector().With(clinical.FeatureAge, 79)
	report := NewEngine(nil).Tornado(v, clinical.VariantBalanced, 0.10)
	for _, e := range report.Entries {
		if e.Feature == clinical.FeatureAge {
			assert.Equal(t, 80.0, e.UpValue)
			assert.Equal(t, 69.0, e.DownValue)
		}
	}
}

// ---------------------------------------------------------------------------
// Stability
// ---------------------------------------------------------------------------

func TestStability_ReproducibleWithSeed(t *testing.T) {
	engine := NewEngine(nil)
	a := engine.Stability(referenceVector(), clinical.VariantBaseline, 100, 42)
	b := engine.Stability(referenceVector(), clinical.VariantBaseline, 100, 42)
	assert.Equal(t, a, b)

	c := engine.Stability(referenceVector(), clinical.VariantBaseline, 100, 43)
	assert.NotEqual(t, a.Features[clinical.FeatureCalcium].Mean, c.Features[clinical.FeatureCalcium].Mean)
}

func TestStability_Invariants(t *testing.T) {
	engine := NewEngine(nil)
	for _, variant := range clinical.AllVariants() {
		report := engine.Stability(highRiskVector(), variant, 50, 7)
		require.Len(t, report.Features, 5)
		for id, s := range report.Features {
			assert.GreaterOrEqual(t, s.Mean, 0.0, string(id))
			assert.GreaterOrEqual(t, s.StdDev, 0.0, string(id))
			if s.Mean > 0 {
				assert.InDelta(t, s.StdDev/s.Mean, s.CV, 1e-12)
			}
			assert.Equal(t, s.CV < StableCVThreshold, s.Stable, string(id))
		}
	}
}

func TestStability_DefaultSampleCount(t *testing.T) {
	report := NewEngine(nil).Stability(referenceVector(), clinical.VariantBalanced, 0, 1)
	assert.Equal(t, DefaultStabilitySamples, report.SampleCount)
	assert.Equal(t, int64(1), report.Seed)
}

func TestStability_HighRiskCalciumIsStable(t *testing.T) {
	// Calcium sits deep in its risk branch, where ±2.5% noise barely moves it.
	report := NewEngine(nil).Stability(highRiskVector(), clinical.VariantBalanced, 200, 3)
	assert.True(t, report.Features[clinical.FeatureCalcium].Stable)
	assert.NotContains(t, report.UnstableFeatures(), clinical.FeatureCalcium)
}

func TestSummarize(t *testing.T) {
	zero := summarize([]float64{0, 0, 0})
	assert.Equal(t, StabilityStat{Mean: 0, StdDev: 0, CV: 0, Stable: true}, zero)

	s := summarize([]float64{1, 3})
	assert.InDelta(t, 2, s.Mean, 1e-12)
	assert.InDelta(t, 1, s.StdDev, 1e-12, "population standard deviation")
	assert.InDelta(t, 0.5, s.CV, 1e-12)
	assert.False(t, s.Stable)

	s = summarize([]float64{1, 1.1, 0.9})
	assert.True(t, s.Stable)
}

// ---------------------------------------------------------------------------
// Trajectory
// ---------------------------------------------------------------------------

func TestSimulateTrajectory_Reference(t *testing.T) {
	traj := NewEngine(nil).SimulateTrajectory(referenceVector(), clinical.VariantBaseline, DefaultTrajectoryDays)
	require.Len(t, traj.Points, 8)

	want := []float64{
		0.0211850762, 0.0259725873, 0.0307414552, 0.0349365992,
		0.0379707812, 0.0393108668, 0.0393108668, 0.0393108668,
	}
	for i, p := range traj.Points {
		assert.Equal(t, i, p.Day)
		assert.InDelta(t, want[i], p.Probability, 1e-8, "day %d", i)
		assert.LessOrEqual(t, p.CILower, p.Probability)
		assert.GreaterOrEqual(t, p.CIUpper, p.Probability)
		if i > 0 {
			assert.GreaterOrEqual(t, p.Calcium, traj.Points[i-1].Calcium)
		}
	}
	assert.InDelta(t, 2.26, traj.Points[0].Calcium, 1e-12)
	assert.Equal(t, CalciumRecoveryCap, traj.Points[7].Calcium)

	require.NotNil(t, traj.Trend)
	assert.Greater(t, traj.Trend.SlopePerDay, 0.0)
	assert.GreaterOrEqual(t, traj.Trend.R2, 0.0)
	assert.LessOrEqual(t, traj.Trend.R2, 1.0)
}

func TestSimulateTrajectory_NonPositiveHorizon(t *testing.T) {
	engine := NewEngine(nil)
	for _, h := range []int{0, -3} {
		traj := engine.SimulateTrajectory(referenceVector(), clinical.VariantBalanced, h)
		require.Len(t, traj.Points, 1)
		assert.Equal(t, 0, traj.Points[0].Day)
		assert.Equal(t, 2.26, traj.Points[0].Calcium)
		assert.InDelta(t, 0.0138775612, traj.Points[0].Probability, 1e-8)
		assert.Nil(t, traj.Trend)
	}
}

func TestSimulateTrajectory_DayZeroCappedForEveryHorizon(t *testing.T) {
	engine := NewEngine(nil)
	v := referenceVector().With(clinical.FeatureCalcium, 2.8)

	single := engine.SimulateTrajectory(v, clinical.VariantBaseline, 0)
	week := engine.SimulateTrajectory(v, clinical.VariantBaseline, 7)
	require.Len(t, single.Points, 1)
	require.Len(t, week.Points, 8)

	assert.Equal(t, CalciumRecoveryCap, single.Points[0].Calcium)
	assert.Equal(t, week.Points[0].Calcium, single.Points[0].Calcium)
	assert.InDelta(t, week.Points[0].Probability, single.Points[0].Probability, 1e-12)
	assert.Equal(t, week.Points[0].Category, single.Points[0].Category)
}

func TestSimulateTrajectory_HorizonOne(t *testing.T) {
	traj := NewEngine(nil).SimulateTrajectory(highRiskVector(), clinical.VariantBaseline, 1)
	require.Len(t, traj.Points, 2)
	assert.InDelta(t, 2.05, traj.Points[1].Calcium, 1e-12)
	assert.Less(t, traj.Points[1].Probability, traj.Points[0].Probability)
}

// ---------------------------------------------------------------------------
// Insights
// ---------------------------------------------------------------------------

func TestInsights_HighRiskBaseline(t *testing.T) {
	insights := NewEngine(nil).Insights(highRiskVector(), clinical.VariantBaseline)
	require.Len(t, insights, 5)

	assert.Equal(t, InsightSummary, insights[0].Kind)
	assert.Equal(t, "This patient presents with a high risk of 40.0% for post-thyroidectomy hypocalcemia.", insights[0].Text)

	assert.Equal(t, InsightRisk, insights[1].Kind)
	assert.Equal(t, clinical.FeatureBMI, insights[1].Feature)
	assert.Equal(t, "Body Mass Index (35.00 kg/m²) is contributing +88.7% to risk.", insights[1].Text)
	assert.Equal(t, clinical.FeatureTSH, insights[2].Feature)
	assert.Equal(t, "Preoperative TSH (3.50 mIU/L) is contributing +63.8% to risk.", insights[2].Text)
	assert.Equal(t, clinical.FeatureCalcium, insights[3].Feature)

	assert.Equal(t, InsightUncertainty, insights[4].Kind)
	assert.Equal(t, "Prediction confidence: 90.7%.", insights[4].Text)
}

func TestInsights_ProtectiveBalanced(t *testing.T) {
	insights := NewEngine(nil).Insights(referenceVector(), clinical.VariantBalanced)
	require.Len(t, insights, 5)

	assert.Equal(t, InsightProtective, insights[1].Kind)
	assert.Equal(t, "Serum Calcium (2.26 mmol/L) is providing -111.5% risk reduction.", insights[1].Text)
	assert.Equal(t, clinical.FeatureMagnesium, insights[2].Feature)
	assert.Equal(t, clinical.FeatureAge, insights[3].Feature)
	assert.Equal(t, "Age at Diagnosis (41 years) is providing -71.9% risk reduction.", insights[3].Text)
}

func TestInsights_WeakContributorsOmitted(t *testing.T) {
	// Baseline reference: only age exceeds the 0.05 threshold.
	insights := NewEngine(nil).Insights(referenceVector(), clinical.VariantBaseline)
	require.Len(t, insights, 3)
	assert.Equal(t, clinical.FeatureAge, insights[1].Feature)
	assert.Equal(t, InsightProtective, insights[1].Kind)
}

//Personal.AI order the ending
