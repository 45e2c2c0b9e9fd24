package hypocal_shap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

func assertInDomain(t *testing.T, v clinical.Vector) {
	t.Helper()
	for _, spec := range clinical.Standard().List() {
		x := v[spec.ID]
		assert.GreaterOrEqual(t, x, spec.Min, string(spec.ID))
		assert.LessOrEqual(t, x, spec.Max, string(spec.ID))
	}
}

func TestSolveCounterfactual_DefaultsExhaustIterations(t *testing.T) {
	engine := NewEngine(nil)
	plan := engine.SolveCounterfactual(referenceVector(), DefaultTargetRisk, clinical.VariantBaseline)

	require.NotNil(t, plan)
	assert.False(t, plan.Converged)
	assert.Equal(t, DefaultMaxIterations, plan.Iterations)
	assert.InDelta(t, 0.02229, plan.AchievedRisk, 5e-4)
	assert.Greater(t, plan.AchievedRisk, plan.OriginalRisk, "search moves toward the target")
	assert.True(t, plan.Feasible)
	assert.Less(t, plan.TotalChange, DefaultFeasibilityBudget)
	assertInDomain(t, plan.Target)
}

func TestSolveCounterfactual_Deterministic(t *testing.T) {
	engine := NewEngine(nil)
	a := engine.SolveCounterfactual(highRiskVector(), 0.10, clinical.VariantBaseline)
	b := engine.SolveCounterfactual(highRiskVector(), 0.10, clinical.VariantBaseline)
	assert.Equal(t, a, b)
}

func TestSolveCounterfactual_ConvergesWithLargerStep(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name    string
		vector  clinical.Vector
		target  float64
		variant clinical.Variant
	}{
		{"reference to 5%", referenceVector(), 0.05, clinical.VariantBaseline},
		{"high risk to 10%", highRiskVector(), 0.10, clinical.VariantBaseline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := engine.SolveCounterfactual(tt.vector, tt.target, tt.variant, WithLearningRate(1))
			assert.True(t, plan.Converged)
			assert.Less(t, math.Abs(plan.AchievedRisk-tt.target), DefaultRiskTolerance)
			assert.Less(t, plan.Iterations, DefaultMaxIterations)
			assertInDomain(t, plan.Target)
		})
	}
}

func TestSolveCounterfactual_AlreadyAtTarget(t *testing.T) {
	engine := NewEngine(nil)
	current := engine.Estimate(referenceVector(), clinical.VariantBaseline).Probability

	plan := engine.SolveCounterfactual(referenceVector(), current, clinical.VariantBaseline)
	assert.True(t, plan.Converged)
	assert.Equal(t, 0, plan.Iterations)
	assert.Equal(t, 0.0, plan.TotalChange)
	assert.Equal(t, plan.Original, plan.Target)
}

func TestSolveCounterfactual_ChangeBookkeeping(t *testing.T) {
	plan := NewEngine(nil).SolveCounterfactual(highRiskVector(), 0.10, clinical.VariantBaseline, WithLearningRate(1))

	total := 0.0
	for _, id := range clinical.AllFeatures() {
		c, ok := plan.Changes[id]
		require.True(t, ok, string(id))
		assert.InDelta(t, c.Target-c.Original, c.Delta, 1e-12)
		assert.InDelta(t, math.Abs(c.Delta), c.AbsDelta, 1e-12)
		assert.InDelta(t, c.Delta/c.Original*100, c.PercentDelta, 1e-9)
		total += c.AbsDelta
	}
	assert.InDelta(t, total, plan.TotalChange, 1e-12)
	assert.InDelta(t, plan.Original.L1Distance(plan.Target), plan.TotalChange, 1e-9)
}

func TestSolveCounterfactual_InfeasibleBudget(t *testing.T) {
	plan := NewEngine(nil).SolveCounterfactual(highRiskVector(), 0.10, clinical.VariantBaseline,
		WithLearningRate(1), WithFeasibilityBudget(1e-6))
	assert.False(t, plan.Feasible)
}

func TestSolveCounterfactual_StartIsClamped(t *testing.T) {
	v := referenceVector().With(clinical.FeatureAge, 120)
	plan := NewEngine(nil).SolveCounterfactual(v, 0.05, clinical.VariantBaseline, WithMaxIterations(3))
	assert.Equal(t, 80.0, plan.Original[clinical.FeatureAge])
	assert.LessOrEqual(t, plan.Iterations, 3)
	assertInDomain(t, plan.Target)
}

func TestSolverOptions_IgnoreNonPositive(t *testing.T) {
	o := DefaultSolverOptions()
	for _, opt := range []CounterfactualOption{
		WithLearningRate(0), WithMaxIterations(-1), WithGradientEpsilon(0),
		WithTolerance(-1), WithFeasibilityBudget(0),
	} {
		opt(&o)
	}
	assert.Equal(t, DefaultSolverOptions(), o)

	WithTolerance(0.01)(&o)
	WithGradientEpsilon(0.0001)(&o)
	assert.Equal(t, 0.01, o.Tolerance)
	assert.Equal(t, 0.0001, o.Epsilon)
}

//Personal.AI order the ending
