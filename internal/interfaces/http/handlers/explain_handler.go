package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
)

// PatientRequest identifies the patient vector and model variant. Features
// override the preset's values; omitted features take their defaults.
type PatientRequest struct {
	Variant  string             `json:"variant"`
	Preset   string             `json:"preset" binding:"required_without=Features"`
	Features map[string]float64 `json:"features" binding:"required_without=Preset"`
}

// CounterfactualRequest is the body of POST /counterfactual.
type CounterfactualRequest struct {
	PatientRequest
	TargetRisk float64 `json:"target_risk"`
}

// SensitivityRequest is the body of POST /sensitivity.
type SensitivityRequest struct {
	PatientRequest
	RangeFraction float64 `json:"range_fraction"`
}

// StabilityRequest is the body of POST /stability.
type StabilityRequest struct {
	PatientRequest
	SampleCount int    `json:"sample_count"`
	Seed        *int64 `json:"seed"`
}

// TrajectoryRequest is the body of POST /trajectory.
type TrajectoryRequest struct {
	PatientRequest
	HorizonDays *int `json:"horizon_days"`
}

// ContributionsResponse is the body returned by POST /contributions.
type ContributionsResponse struct {
	Variant       clinical.Variant           `json:"variant"`
	Contributions shap.ContributionSet       `json:"contributions"`
	Ranked        []shap.FeatureContribution `json:"ranked"`
	Total         float64                    `json:"total"`
}

// InsightsResponse is the body returned by POST /insights.
type InsightsResponse struct {
	Variant  clinical.Variant `json:"variant"`
	Insights []shap.Insight   `json:"insights"`
}

// ExplainHandler exposes the explanation service over HTTP.
type ExplainHandler struct {
	svc     explain.Service
	catalog *clinical.InMemoryCatalog
}

// NewExplainHandler creates an ExplainHandler.
func NewExplainHandler(svc explain.Service) *ExplainHandler {
	return &ExplainHandler{svc: svc, catalog: clinical.Standard()}
}

// vector resolves the preset and feature overrides into a Vector.
func (h *ExplainHandler) vector(req *PatientRequest) (clinical.Vector, error) {
	v := clinical.Vector{}
	if req.Preset != "" {
		p, err := clinical.Preset(req.Preset)
		if err != nil {
			return nil, err
		}
		v = p
	}
	overrides, err := h.catalog.ParseVector(req.Features)
	if err != nil {
		return nil, err
	}
	for id, x := range overrides {
		v[id] = x
	}
	return v, nil
}

// variantOf resolves the variant a successful request was evaluated with.
func (h *ExplainHandler) variantOf(name string) clinical.Variant {
	if name == "" {
		name = h.svc.Settings().DefaultVariant
	}
	v, _ := clinical.ParseVariant(name)
	return v
}

// bind decodes the body into req and resolves its patient vector.
func (h *ExplainHandler) bind(c *gin.Context, req interface{}, patient *PatientRequest) (clinical.Vector, bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return nil, false
	}
	v, err := h.vector(patient)
	if err != nil {
		writeAppError(c, err)
		return nil, false
	}
	return v, true
}

// ListFeatures handles GET /api/v1/features.
func (h *ExplainHandler) ListFeatures(c *gin.Context) {
	specs, err := h.svc.ListFeatureSpecs(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": specs})
}

// GetFeature handles GET /api/v1/features/:id.
func (h *ExplainHandler) GetFeature(c *gin.Context) {
	spec, err := h.svc.GetFeatureSpec(c.Request.Context(), clinical.FeatureID(c.Param("id")))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

// GetModel handles GET /api/v1/models/:variant.
func (h *ExplainHandler) GetModel(c *gin.Context) {
	card, err := h.svc.GetModelCard(c.Request.Context(), clinical.Variant(c.Param("variant")))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// Risk handles POST /api/v1/risk.
func (h *ExplainHandler) Risk(c *gin.Context) {
	var req PatientRequest
	v, ok := h.bind(c, &req, &req)
	if !ok {
		return
	}
	est, err := h.svc.GetRiskEstimate(c.Request.Context(), v, clinical.Variant(req.Variant))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// Contributions handles POST /api/v1/contributions.
func (h *ExplainHandler) Contributions(c *gin.Context) {
	var req PatientRequest
	v, ok := h.bind(c, &req, &req)
	if !ok {
		return
	}
	set, err := h.svc.GetContributions(c.Request.Context(), v, clinical.Variant(req.Variant))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ContributionsResponse{
		Variant:       h.variantOf(req.Variant),
		Contributions: set,
		Ranked:        set.Ranked(),
		Total:         set.Total(),
	})
}

// Insights handles POST /api/v1/insights.
func (h *ExplainHandler) Insights(c *gin.Context) {
	var req PatientRequest
	v, ok := h.bind(c, &req, &req)
	if !ok {
		return
	}
	insights, err := h.svc.GetInsights(c.Request.Context(), v, clinical.Variant(req.Variant))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, InsightsResponse{Variant: h.variantOf(req.Variant), Insights: insights})
}

// Counterfactual handles POST /api/v1/counterfactual.
func (h *ExplainHandler) Counterfactual(c *gin.Context) {
	var req CounterfactualRequest
	v, ok := h.bind(c, &req, &req.PatientRequest)
	if !ok {
		return
	}
	plan, err := h.svc.GetCounterfactualPlan(c.Request.Context(), v, req.TargetRisk, clinical.Variant(req.Variant))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Sensitivity handles POST /api/v1/sensitivity.
func (h *ExplainHandler) Sensitivity(c *gin.Context) {
	var req SensitivityRequest
	v, ok := h.bind(c, &req, &req.PatientRequest)
	if !ok {
		return
	}
	report, err := h.svc.GetSensitivityReport(c.Request.Context(), v, clinical.Variant(req.Variant), req.RangeFraction)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Stability handles POST /api/v1/stability.
func (h *ExplainHandler) Stability(c *gin.Context) {
	var req StabilityRequest
	v, ok := h.bind(c, &req, &req.PatientRequest)
	if !ok {
		return
	}
	seed := h.svc.Settings().StabilitySeed
	if req.Seed != nil {
		seed = *req.Seed
	}
	report, err := h.svc.GetStabilityReport(c.Request.Context(), v, clinical.Variant(req.Variant), req.SampleCount, seed)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Trajectory handles POST /api/v1/trajectory.
func (h *ExplainHandler) Trajectory(c *gin.Context) {
	var req TrajectoryRequest
	v, ok := h.bind(c, &req, &req.PatientRequest)
	if !ok {
		return
	}
	days := h.svc.Settings().TrajectoryDays
	if req.HorizonDays != nil {
		days = *req.HorizonDays
	}
	tr, err := h.svc.GetTrajectory(c.Request.Context(), v, clinical.Variant(req.Variant), days)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}

// Explain handles POST /api/v1/explain.
func (h *ExplainHandler) Explain(c *gin.Context) {
	var req PatientRequest
	v, ok := h.bind(c, &req, &req)
	if !ok {
		return
	}
	out, err := h.svc.Explain(c.Request.Context(), v, clinical.Variant(req.Variant))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

//Personal.AI order the ending
