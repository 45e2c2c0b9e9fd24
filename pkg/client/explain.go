package client

import (
	"context"
	"net/url"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
)

// PatientRequest identifies the patient by preset, feature values or both.
// Features override the preset.
type PatientRequest struct {
	Variant  string             `json:"variant,omitempty"`
	Preset   string             `json:"preset,omitempty"`
	Features map[string]float64 `json:"features,omitempty"`
}

// ContributionsResult is the response of the contributions endpoint.
type ContributionsResult struct {
	Variant       clinical.Variant           `json:"variant"`
	Contributions shap.ContributionSet       `json:"contributions"`
	Ranked        []shap.FeatureContribution `json:"ranked"`
	Total         float64                    `json:"total"`
}

// FeatureVector converts v into the request's feature map.
func FeatureVector(v clinical.Vector) map[string]float64 {
	out := make(map[string]float64, len(v))
	for id, x := range v {
		out[string(id)] = x
	}
	return out
}

// Features lists the feature catalog.
func (c *Client) Features(ctx context.Context) ([]*clinical.FeatureSpec, error) {
	var resp struct {
		Features []*clinical.FeatureSpec `json:"features"`
	}
	if err := c.get(ctx, "/api/v1/features", &resp); err != nil {
		return nil, err
	}
	return resp.Features, nil
}

// Feature returns one feature spec by id or alias.
func (c *Client) Feature(ctx context.Context, id string) (*clinical.FeatureSpec, error) {
	var spec clinical.FeatureSpec
	if err := c.get(ctx, "/api/v1/features/"+url.PathEscape(id), &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Model returns the model card of a variant.
func (c *Client) Model(ctx context.Context, variant string) (*shap.ModelCard, error) {
	var card shap.ModelCard
	if err := c.get(ctx, "/api/v1/models/"+url.PathEscape(variant), &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Risk estimates the hypocalcemia probability.
func (c *Client) Risk(ctx context.Context, req PatientRequest) (*shap.RiskEstimate, error) {
	var est shap.RiskEstimate
	if err := c.post(ctx, "/api/v1/risk", req, &est); err != nil {
		return nil, err
	}
	return &est, nil
}

// Contributions returns the per-feature contributions.
func (c *Client) Contributions(ctx context.Context, req PatientRequest) (*ContributionsResult, error) {
	var res ContributionsResult
	if err := c.post(ctx, "/api/v1/contributions", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Insights returns the narrative insights.
func (c *Client) Insights(ctx context.Context, req PatientRequest) ([]shap.Insight, error) {
	var resp struct {
		Insights []shap.Insight `json:"insights"`
	}
	if err := c.post(ctx, "/api/v1/insights", req, &resp); err != nil {
		return nil, err
	}
	return resp.Insights, nil
}

// Counterfactual searches for the smallest change reaching targetRisk. Zero
// selects the server default.
func (c *Client) Counterfactual(ctx context.Context, req PatientRequest, targetRisk float64) (*shap.CounterfactualPlan, error) {
	body := struct {
		PatientRequest
		TargetRisk float64 `json:"target_risk,omitempty"`
	}{req, targetRisk}

	var plan shap.CounterfactualPlan
	if err := c.post(ctx, "/api/v1/counterfactual", body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Sensitivity returns the tornado report. Zero selects the server default.
func (c *Client) Sensitivity(ctx context.Context, req PatientRequest, rangeFraction float64) (*shap.SensitivityReport, error) {
	body := struct {
		PatientRequest
		RangeFraction float64 `json:"range_fraction,omitempty"`
	}{req, rangeFraction}

	var report shap.SensitivityReport
	if err := c.post(ctx, "/api/v1/sensitivity", body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Stability runs the perturbation analysis. A nil seed selects the server's
// configured seed.
func (c *Client) Stability(ctx context.Context, req PatientRequest, sampleCount int, seed *int64) (*shap.StabilityReport, error) {
	body := struct {
		PatientRequest
		SampleCount int    `json:"sample_count,omitempty"`
		Seed        *int64 `json:"seed,omitempty"`
	}{req, sampleCount, seed}

	var report shap.StabilityReport
	if err := c.post(ctx, "/api/v1/stability", body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Trajectory projects the risk forward. A nil horizon selects the server
// default.
func (c *Client) Trajectory(ctx context.Context, req PatientRequest, horizonDays *int) (*shap.Trajectory, error) {
	body := struct {
		PatientRequest
		HorizonDays *int `json:"horizon_days,omitempty"`
	}{req, horizonDays}

	var tr shap.Trajectory
	if err := c.post(ctx, "/api/v1/trajectory", body, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Explain returns the full explanation.
func (c *Client) Explain(ctx context.Context, req PatientRequest) (*explain.Explanation, error) {
	var out explain.Explanation
	if err := c.post(ctx, "/api/v1/explain", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready reports whether the server passes its readiness check.
func (c *Client) Ready(ctx context.Context) error {
	return c.get(ctx, "/readyz", nil)
}

//Personal.AI order the ending
