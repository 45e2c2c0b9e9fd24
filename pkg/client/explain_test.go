package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
	httpapi "github.com/turtacn/hypocal-explain/internal/interfaces/http"
	"github.com/turtacn/hypocal-explain/internal/interfaces/http/handlers"
)

func newAPIClient(t *testing.T) (*Client, explain.Service) {
	t.Helper()
	svc := explain.NewService(shap.NewEngine(nil), config.NewDefaultConfig().Engine)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		ExplainHandler: handlers.NewExplainHandler(svc),
		HealthHandler:  handlers.NewHealthHandler("test", nil),
		Mode:           gin.TestMode,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c, svc
}

func TestClient_Catalog(t *testing.T) {
	c, _ := newAPIClient(t)
	ctx := context.Background()

	specs, err := c.Features(ctx)
	require.NoError(t, err)
	require.Len(t, specs, 5)
	assert.Equal(t, clinical.FeatureCalcium, specs[0].ID)

	spec, err := c.Feature(ctx, "mg")
	require.NoError(t, err)
	assert.Equal(t, clinical.FeatureMagnesium, spec.ID)

	_, err = c.Feature(ctx, "glucose")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HYP_001", apiErr.Code)

	card, err := c.Model(ctx, "smote")
	require.NoError(t, err)
	assert.Equal(t, clinical.VariantBalanced, card.Variant)
	assert.InDelta(t, 0.704, card.Performance.ROCAUC, 1e-12)
}

func TestClient_RiskMatchesLocalService(t *testing.T) {
	c, svc := newAPIClient(t)
	ctx := context.Background()

	v, err := clinical.Preset(clinical.PresetHighRisk)
	require.NoError(t, err)
	want, err := svc.GetRiskEstimate(ctx, v, "")
	require.NoError(t, err)

	got, err := c.Risk(ctx, PatientRequest{Features: FeatureVector(v)})
	require.NoError(t, err)
	assert.InDelta(t, want.Probability, got.Probability, 1e-12)
	assert.Equal(t, shap.CategoryHigh, got.Category)

	byPreset, err := c.Risk(ctx, PatientRequest{Preset: clinical.PresetHighRisk})
	require.NoError(t, err)
	assert.InDelta(t, want.Probability, byPreset.Probability, 1e-12)
}

func TestClient_Analyses(t *testing.T) {
	c, _ := newAPIClient(t)
	ctx := context.Background()
	req := PatientRequest{Preset: clinical.PresetModerateRisk, Variant: "balanced"}

	contrib, err := c.Contributions(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, clinical.VariantBalanced, contrib.Variant)
	assert.Len(t, contrib.Ranked, 5)
	assert.InDelta(t, contrib.Contributions.Total(), contrib.Total, 1e-12)

	insights, err := c.Insights(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, shap.InsightSummary, insights[0].Kind)

	plan, err := c.Counterfactual(ctx, req, 0.02)
	require.NoError(t, err)
	assert.Equal(t, 0.02, plan.TargetRisk)

	sens, err := c.Sensitivity(ctx, req, 0)
	require.NoError(t, err)
	assert.Equal(t, shap.DefaultSensitivityRange, sens.RangeFraction)

	seed := int64(9)
	stab, err := c.Stability(ctx, req, 25, &seed)
	require.NoError(t, err)
	assert.Equal(t, 25, stab.SampleCount)
	assert.Equal(t, seed, stab.Seed)

	days := 2
	tr, err := c.Trajectory(ctx, req, &days)
	require.NoError(t, err)
	assert.Len(t, tr.Points, 3)

	full, err := c.Explain(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, clinical.VariantBalanced, full.Variant)
	assert.NotNil(t, full.Risk)
	assert.NotNil(t, full.Counterfactual)
}

func TestClient_ValidationErrors(t *testing.T) {
	c, _ := newAPIClient(t)
	ctx := context.Background()

	_, err := c.Counterfactual(ctx, PatientRequest{Preset: "reference"}, 1.2)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, "HYP_003", apiErr.Code)

	_, err = c.Risk(ctx, PatientRequest{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "COMMON_002", apiErr.Code)
}

func TestClient_Ready(t *testing.T) {
	c, _ := newAPIClient(t)
	assert.NoError(t, c.Ready(context.Background()))
}

//Personal.AI order the ending
