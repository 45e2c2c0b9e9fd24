package cli

import (
	"context"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
	"github.com/turtacn/hypocal-explain/pkg/client"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// remoteService serves explain.Service from a remote API server.
type remoteService struct {
	c        *client.Client
	settings config.EngineConfig
}

var (
	_ explain.Service = (*remoteService)(nil)
	_ optionalParams  = (*remoteService)(nil)
)

func newRemoteService(c *client.Client, settings config.EngineConfig) *remoteService {
	cfg := config.Config{Engine: settings}
	config.ApplyDefaults(&cfg)
	return &remoteService{c: c, settings: cfg.Engine}
}

func request(v clinical.Vector, variant clinical.Variant) client.PatientRequest {
	return client.PatientRequest{Variant: string(variant), Features: client.FeatureVector(v)}
}

// remoteErr converts an API error response into an AppError carrying the
// server's code.
func remoteErr(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return errors.Wrap(err, errors.ErrCodeExternalService, "API request failed")
	}
	out := errors.New(errors.ErrorCode(apiErr.Code), apiErr.Message)
	if apiErr.Detail != "" {
		out = out.WithDetail(apiErr.Detail)
	}
	return out
}

func (r *remoteService) Settings() config.EngineConfig { return r.settings }

func (r *remoteService) GetRiskEstimate(ctx context.Context, v clinical.Vector, variant clinical.Variant) (*shap.RiskEstimate, error) {
	est, err := r.c.Risk(ctx, request(v, variant))
	if err != nil {
		return nil, remoteErr(err)
	}
	return est, nil
}

func (r *remoteService) GetContributions(ctx context.Context, v clinical.Vector, variant clinical.Variant) (shap.ContributionSet, error) {
	res, err := r.c.Contributions(ctx, request(v, variant))
	if err != nil {
		return nil, remoteErr(err)
	}
	return res.Contributions, nil
}

func (r *remoteService) GetCounterfactualPlan(ctx context.Context, v clinical.Vector, targetRisk float64, variant clinical.Variant) (*shap.CounterfactualPlan, error) {
	plan, err := r.c.Counterfactual(ctx, request(v, variant), targetRisk)
	if err != nil {
		return nil, remoteErr(err)
	}
	return plan, nil
}

func (r *remoteService) GetSensitivityReport(ctx context.Context, v clinical.Vector, variant clinical.Variant, rangeFraction float64) (*shap.SensitivityReport, error) {
	report, err := r.c.Sensitivity(ctx, request(v, variant), rangeFraction)
	if err != nil {
		return nil, remoteErr(err)
	}
	return report, nil
}

func (r *remoteService) GetStabilityReport(ctx context.Context, v clinical.Vector, variant clinical.Variant, sampleCount int, seed int64) (*shap.StabilityReport, error) {
	return r.stability(ctx, v, variant, sampleCount, &seed)
}

func (r *remoteService) stability(ctx context.Context, v clinical.Vector, variant clinical.Variant, sampleCount int, seed *int64) (*shap.StabilityReport, error) {
	report, err := r.c.Stability(ctx, request(v, variant), sampleCount, seed)
	if err != nil {
		return nil, remoteErr(err)
	}
	return report, nil
}

func (r *remoteService) GetTrajectory(ctx context.Context, v clinical.Vector, variant clinical.Variant, horizonDays int) (*shap.Trajectory, error) {
	return r.trajectory(ctx, v, variant, &horizonDays)
}

func (r *remoteService) trajectory(ctx context.Context, v clinical.Vector, variant clinical.Variant, days *int) (*shap.Trajectory, error) {
	tr, err := r.c.Trajectory(ctx, request(v, variant), days)
	if err != nil {
		return nil, remoteErr(err)
	}
	return tr, nil
}

func (r *remoteService) GetFeatureSpec(ctx context.Context, id clinical.FeatureID) (*clinical.FeatureSpec, error) {
	spec, err := r.c.Feature(ctx, string(id))
	if err != nil {
		return nil, remoteErr(err)
	}
	return spec, nil
}

func (r *remoteService) ListFeatureSpecs(ctx context.Context) ([]*clinical.FeatureSpec, error) {
	specs, err := r.c.Features(ctx)
	if err != nil {
		return nil, remoteErr(err)
	}
	return specs, nil
}

func (r *remoteService) GetInsights(ctx context.Context, v clinical.Vector, variant clinical.Variant) ([]shap.Insight, error) {
	insights, err := r.c.Insights(ctx, request(v, variant))
	if err != nil {
		return nil, remoteErr(err)
	}
	return insights, nil
}

func (r *remoteService) GetModelCard(ctx context.Context, variant clinical.Variant) (*shap.ModelCard, error) {
	name := string(variant)
	if name == "" {
		name = r.settings.DefaultVariant
	}
	card, err := r.c.Model(ctx, name)
	if err != nil {
		return nil, remoteErr(err)
	}
	return card, nil
}

func (r *remoteService) Explain(ctx context.Context, v clinical.Vector, variant clinical.Variant) (*explain.Explanation, error) {
	out, err := r.c.Explain(ctx, request(v, variant))
	if err != nil {
		return nil, remoteErr(err)
	}
	return out, nil
}

//Personal.AI order the ending
