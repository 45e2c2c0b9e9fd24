package hypocal_shap

import (
	"math"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

// Solver defaults.
const (
	DefaultLearningRate      = config.DefaultLearningRate
	DefaultGradientEpsilon   = config.DefaultGradientEpsilon
	DefaultMaxIterations     = config.DefaultMaxIterations
	DefaultRiskTolerance     = config.DefaultRiskTolerance
	DefaultFeasibilityBudget = config.DefaultFeasibilityBudget
	DefaultTargetRisk        = config.DefaultTargetRisk
)

// FeatureChange describes how one feature moves in a counterfactual plan.
type FeatureChange struct {
	Original     float64 `json:"original" yaml:"original"`
	Target       float64 `json:"target" yaml:"target"`
	Delta        float64 `json:"delta" yaml:"delta"`
	AbsDelta     float64 `json:"abs_delta" yaml:"abs_delta"`
	PercentDelta float64 `json:"percent_delta" yaml:"percent_delta"`
}

// CounterfactualPlan is the outcome of a counterfactual search.
type CounterfactualPlan struct {
	Variant      clinical.Variant                     `json:"variant" yaml:"variant"`
	TargetRisk   float64                              `json:"target_risk" yaml:"target_risk"`
	OriginalRisk float64                              `json:"original_risk" yaml:"original_risk"`
	AchievedRisk float64                              `json:"achieved_risk" yaml:"achieved_risk"`
	Original     clinical.Vector                      `json:"original" yaml:"original"`
	Target       clinical.Vector                      `json:"target" yaml:"target"`
	Changes      map[clinical.FeatureID]FeatureChange `json:"changes" yaml:"changes"`
	TotalChange  float64                              `json:"total_change" yaml:"total_change"`
	Feasible     bool                                 `json:"feasible" yaml:"feasible"`
	Converged    bool                                 `json:"converged" yaml:"converged"`
	Iterations   int                                  `json:"iterations" yaml:"iterations"`
}

// SolverOptions tunes the gradient search.
type SolverOptions struct {
	LearningRate      float64
	Epsilon           float64
	MaxIterations     int
	Tolerance         float64
	FeasibilityBudget float64
}

// CounterfactualOption mutates SolverOptions.
type CounterfactualOption func(*SolverOptions)

// WithLearningRate overrides the gradient step multiplier.
func WithLearningRate(lr float64) CounterfactualOption {
	return func(o *SolverOptions) {
		if lr > 0 {
			o.LearningRate = lr
		}
	}
}

// WithMaxIterations overrides the iteration cap.
func WithMaxIterations(n int) CounterfactualOption {
	return func(o *SolverOptions) {
		if n > 0 {
			o.MaxIterations = n
		}
	}
}

// WithGradientEpsilon overrides the finite-difference step.
func WithGradientEpsilon(eps float64) CounterfactualOption {
	return func(o *SolverOptions) {
		if eps > 0 {
			o.Epsilon = eps
		}
	}
}

// WithTolerance overrides the convergence tolerance on |risk - target|.
func WithTolerance(tol float64) CounterfactualOption {
	return func(o *SolverOptions) {
		if tol > 0 {
			o.Tolerance = tol
		}
	}
}

// WithFeasibilityBudget overrides the total-change bound used for Feasible.
func WithFeasibilityBudget(budget float64) CounterfactualOption {
	return func(o *SolverOptions) {
		if budget > 0 {
			o.FeasibilityBudget = budget
		}
	}
}

// DefaultSolverOptions returns the calibrated solver constants.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		LearningRate:      DefaultLearningRate,
		Epsilon:           DefaultGradientEpsilon,
		MaxIterations:     DefaultMaxIterations,
		Tolerance:         DefaultRiskTolerance,
		FeasibilityBudget: DefaultFeasibilityBudget,
	}
}

// SolveCounterfactual searches for a nearby feature vector whose risk is
// within tolerance of targetRisk. Every feature moves simultaneously along
// -lr * (risk - target) * dRisk/dx, estimated with forward differences, and is
// clamped back into its domain after each step. The search is deterministic.
// Running out of iterations is reported through Converged, never as an error.
func (e *Engine) SolveCounterfactual(v clinical.Vector, targetRisk float64, variant clinical.Variant, opts ...CounterfactualOption) *CounterfactualPlan {
	o := DefaultSolverOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := modelOrDefault(variant)
	ids := clinical.AllFeatures()
	specs := make(map[clinical.FeatureID]*clinical.FeatureSpec, len(ids))
	for _, spec := range e.catalog.List() {
		specs[spec.ID] = spec
	}

	original := e.catalog.Clamp(v)
	current := original.Clone()
	grad := make(map[clinical.FeatureID]float64, len(ids))

	converged := false
	iterations := 0
	for iterations < o.MaxIterations {
		risk := probability(current, m)
		diff := risk - targetRisk
		if math.Abs(diff) < o.Tolerance {
			converged = true
			break
		}

		for _, id := range ids {
			perturbed := current.With(id, current[id]+o.Epsilon)
			grad[id] = (probability(perturbed, m) - risk) / o.Epsilon
		}
		for _, id := range ids {
			step := -o.LearningRate * diff * grad[id]
			current[id] = specs[id].Clamp(current[id] + step)
		}
		iterations++
	}
	achieved := probability(current, m)
	if !converged && math.Abs(achieved-targetRisk) < o.Tolerance {
		converged = true
	}

	changes := make(map[clinical.FeatureID]FeatureChange, len(ids))
	total := 0.0
	for _, id := range ids {
		delta := current[id] - original[id]
		pct := 0.0
		if original[id] != 0 {
			pct = delta / original[id] * 100
		}
		changes[id] = FeatureChange{
			Original:     original[id],
			Target:       current[id],
			Delta:        delta,
			AbsDelta:     math.Abs(delta),
			PercentDelta: pct,
		}
		total += math.Abs(delta)
	}

	return &CounterfactualPlan{
		Variant:      m.Variant,
		TargetRisk:   targetRisk,
		OriginalRisk: probability(original, m),
		AchievedRisk: achieved,
		Original:     original,
		Target:       current,
		Changes:      changes,
		TotalChange:  total,
		Feasible:     total < o.FeasibilityBudget,
		Converged:    converged,
		Iterations:   iterations,
	}
}

//Personal.AI order the ending
