package explain

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
)

// Explanation is the full report for one patient vector.
type Explanation struct {
	RequestID      string                     `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Variant        clinical.Variant           `json:"variant" yaml:"variant"`
	Input          clinical.Vector            `json:"input" yaml:"input"`
	Risk           *shap.RiskEstimate         `json:"risk" yaml:"risk"`
	Ranked         []shap.FeatureContribution `json:"ranked_contributions" yaml:"ranked_contributions"`
	Insights       []shap.Insight             `json:"insights" yaml:"insights"`
	Sensitivity    *shap.SensitivityReport    `json:"sensitivity" yaml:"sensitivity"`
	Stability      *shap.StabilityReport      `json:"stability" yaml:"stability"`
	Trajectory     *shap.Trajectory           `json:"trajectory" yaml:"trajectory"`
	Counterfactual *shap.CounterfactualPlan   `json:"counterfactual" yaml:"counterfactual"`
	Model          *shap.ModelCard            `json:"model" yaml:"model"`
	GeneratedAt    time.Time                  `json:"generated_at" yaml:"generated_at"`
}

// Explain runs every analysis with the configured defaults. The analyses are
// independent and run concurrently; the first failure cancels the rest.
func (s *service) Explain(ctx context.Context, v clinical.Vector, variant clinical.Variant) (out *Explanation, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "explain", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}

	out = &Explanation{
		RequestID: logging.RequestIDFromContext(ctx),
		Variant:   variant,
		Input:     s.catalog.Clamp(v),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Risk = s.engine.Estimate(v, variant)
		out.Ranked = out.Risk.Contributions.Ranked()
		out.Insights = s.engine.Insights(v, variant)
		return nil
	})
	g.Go(func() (err error) {
		out.Sensitivity, err = s.GetSensitivityReport(gctx, v, variant, 0)
		return err
	})
	g.Go(func() (err error) {
		out.Stability, err = s.GetStabilityReport(gctx, v, variant, 0, s.settings.StabilitySeed)
		return err
	})
	g.Go(func() (err error) {
		out.Trajectory, err = s.GetTrajectory(gctx, v, variant, s.settings.TrajectoryDays)
		return err
	})
	g.Go(func() (err error) {
		out.Counterfactual, err = s.GetCounterfactualPlan(gctx, v, 0, variant)
		return err
	})
	g.Go(func() (err error) {
		out.Model, err = s.GetModelCard(gctx, variant)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	out.GeneratedAt = s.now().UTC()
	s.metrics.RecordRisk(string(variant), out.Risk.Category.String(), out.Risk.Probability)
	s.publish(ctx, EventExplanationGenerated, variant, newAssessment(ctx, out.Input, out.Risk, out.GeneratedAt))
	return out, nil
}

//Personal.AI order the ending
