package explain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
)

// Event types emitted by the service.
const (
	EventRiskEstimated        = kafka.EventRiskEstimated
	EventCounterfactualSolved = kafka.EventCounterfactualSolved
	EventExplanationGenerated = kafka.EventExplanationGenerated
)

// AssessmentEvent is the payload of risk and explanation events.
type AssessmentEvent struct {
	RequestID   string           `json:"request_id,omitempty"`
	Variant     clinical.Variant `json:"variant"`
	Features    clinical.Vector  `json:"features"`
	Probability float64          `json:"probability"`
	CILower     float64          `json:"ci_lower"`
	CIUpper     float64          `json:"ci_upper"`
	Category    shap.Category    `json:"category"`
	AssessedAt  time.Time        `json:"assessed_at"`
}

// CounterfactualEvent is the payload of counterfactual events.
type CounterfactualEvent struct {
	RequestID    string           `json:"request_id,omitempty"`
	Variant      clinical.Variant `json:"variant"`
	TargetRisk   float64          `json:"target_risk"`
	OriginalRisk float64          `json:"original_risk"`
	AchievedRisk float64          `json:"achieved_risk"`
	TotalChange  float64          `json:"total_change"`
	Converged    bool             `json:"converged"`
	Feasible     bool             `json:"feasible"`
	Iterations   int              `json:"iterations"`
	SolvedAt     time.Time        `json:"solved_at"`
}

func newAssessment(ctx context.Context, clamped clinical.Vector, est *shap.RiskEstimate, at time.Time) *AssessmentEvent {
	return &AssessmentEvent{
		RequestID:   logging.RequestIDFromContext(ctx),
		Variant:     est.Variant,
		Features:    clamped,
		Probability: est.Probability,
		CILower:     est.CILower,
		CIUpper:     est.CIUpper,
		Category:    est.Category,
		AssessedAt:  at.UTC(),
	}
}

func newCounterfactualEvent(ctx context.Context, plan *shap.CounterfactualPlan, at time.Time) *CounterfactualEvent {
	return &CounterfactualEvent{
		RequestID:    logging.RequestIDFromContext(ctx),
		Variant:      plan.Variant,
		TargetRisk:   plan.TargetRisk,
		OriginalRisk: plan.OriginalRisk,
		AchievedRisk: plan.AchievedRisk,
		TotalChange:  plan.TotalChange,
		Converged:    plan.Converged,
		Feasible:     plan.Feasible,
		Iterations:   plan.Iterations,
		SolvedAt:     at.UTC(),
	}
}

// publish emits an event when a publisher is configured. Failures are
// counted and logged but never fail the request.
func (s *service) publish(ctx context.Context, eventType string, variant clinical.Variant, payload interface{}) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishEvent(ctx, eventType, string(variant), payload)
	s.metrics.RecordEventPublished(err)
	if err != nil {
		s.logger.Warn("assessment event dropped",
			logging.String("event_type", eventType),
			logging.Err(err))
	}
}

// reportKey builds a cache key from the report name, the variant, the
// clamped vector in catalog order and any extra parameters.
func reportKey(report string, variant clinical.Variant, clamped clinical.Vector, params ...interface{}) string {
	parts := make([]string, 0, len(clinical.AllFeatures())+len(params)+2)
	parts = append(parts, report, string(variant))
	for _, id := range clinical.AllFeatures() {
		parts = append(parts, strconv.FormatFloat(clamped[id], 'g', -1, 64))
	}
	for _, p := range params {
		switch x := p.(type) {
		case float64:
			parts = append(parts, strconv.FormatFloat(x, 'g', -1, 64))
		case config.CounterfactualConfig:
			parts = append(parts, fmt.Sprintf("%g/%d/%g/%g/%g",
				x.LearningRate, x.MaxIterations, x.GradientEpsilon, x.Tolerance, x.FeasibilityBudget))
		default:
			parts = append(parts, fmt.Sprint(x))
		}
	}
	return strings.Join(parts, ":")
}

//Personal.AI order the ending
