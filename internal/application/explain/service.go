// Package explain provides the application-level query service of the
// hypocalcemia risk engine. It validates caller input, applies the configured
// analysis defaults and instruments every call with logs, metrics, an
// optional report cache and optional assessment events.
package explain

import (
	"context"
	"time"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// Upper bounds on per-request work.
const (
	MaxStabilitySamples = 10000
	MaxTrajectoryDays   = 365
)

// Service defines the query interface of the explanation engine.
//
// Zero targetRisk, rangeFraction and sampleCount select the configured
// defaults. An empty variant selects the configured default variant.
type Service interface {
	GetRiskEstimate(ctx context.Context, v clinical.Vector, variant clinical.Variant) (*shap.RiskEstimate, error)
	GetContributions(ctx context.Context, v clinical.Vector, variant clinical.Variant) (shap.ContributionSet, error)
	GetCounterfactualPlan(ctx context.Context, v clinical.Vector, targetRisk float64, variant clinical.Variant) (*shap.CounterfactualPlan, error)
	GetSensitivityReport(ctx context.Context, v clinical.Vector, variant clinical.Variant, rangeFraction float64) (*shap.SensitivityReport, error)
	GetStabilityReport(ctx context.Context, v clinical.Vector, variant clinical.Variant, sampleCount int, seed int64) (*shap.StabilityReport, error)
	GetTrajectory(ctx context.Context, v clinical.Vector, variant clinical.Variant, horizonDays int) (*shap.Trajectory, error)
	GetFeatureSpec(ctx context.Context, id clinical.FeatureID) (*clinical.FeatureSpec, error)
	ListFeatureSpecs(ctx context.Context) ([]*clinical.FeatureSpec, error)
	GetInsights(ctx context.Context, v clinical.Vector, variant clinical.Variant) ([]shap.Insight, error)
	GetModelCard(ctx context.Context, variant clinical.Variant) (*shap.ModelCard, error)
	Explain(ctx context.Context, v clinical.Vector, variant clinical.Variant) (*Explanation, error)
	Settings() config.EngineConfig
}

// Recorder receives per-operation telemetry. *prometheus.AppMetrics
// satisfies it.
type Recorder interface {
	RecordAnalysis(operation, variant string, duration time.Duration, err error)
	RecordRisk(variant, category string, probability float64)
	RecordCounterfactual(variant string, converged, feasible bool)
	RecordCacheAccess(report string, hit bool)
	RecordEventPublished(err error)
}

// ReportCache stores computed reports. The redis Cache satisfies it.
type ReportCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

// EventPublisher emits assessment events. The kafka EventPublisher satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, key string, payload interface{}) error
}

type noopRecorder struct{}

func (noopRecorder) RecordAnalysis(string, string, time.Duration, error) {}
func (noopRecorder) RecordRisk(string, string, float64)                  {}
func (noopRecorder) RecordCounterfactual(string, bool, bool)             {}
func (noopRecorder) RecordCacheAccess(string, bool)                      {}
func (noopRecorder) RecordEventPublished(error)                          {}

// Option configures the service.
type Option func(*service)

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(s *service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithCache enables caching of stability and counterfactual reports.
func WithCache(c ReportCache, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher enables assessment events.
func WithPublisher(p EventPublisher) Option {
	return func(s *service) {
		s.publisher = p
	}
}

type service struct {
	engine    *shap.Engine
	catalog   clinical.Catalog
	settings  config.EngineConfig
	logger    logging.Logger
	metrics   Recorder
	cache     ReportCache
	cacheTTL  time.Duration
	publisher EventPublisher
	now       func() time.Time
}

// NewService creates the explanation service. A nil engine selects one over
// the standard catalog. Zero settings fields take their defaults, except
// StabilitySeed, which is used as given.
func NewService(engine *shap.Engine, settings config.EngineConfig, opts ...Option) Service {
	if engine == nil {
		engine = shap.NewEngine(nil)
	}
	cfg := config.Config{Engine: settings}
	config.ApplyDefaults(&cfg)

	s := &service{
		engine:   engine,
		catalog:  engine.Catalog(),
		settings: cfg.Engine,
		logger:   logging.NewNopLogger(),
		metrics:  noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("explain")
	return s
}

func (s *service) Settings() config.EngineConfig {
	return s.settings
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) GetRiskEstimate(ctx context.Context, v clinical.Vector, variant clinical.Variant) (est *shap.RiskEstimate, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "risk", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}

	est = s.engine.Estimate(v, variant)
	s.metrics.RecordRisk(string(variant), est.Category.String(), est.Probability)
	s.publish(ctx, EventRiskEstimated, variant, newAssessment(ctx, s.catalog.Clamp(v), est, s.now()))
	return est, nil
}

func (s *service) GetContributions(ctx context.Context, v clinical.Vector, variant clinical.Variant) (_ shap.ContributionSet, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "contributions", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}
	return s.engine.Contributions(v, variant), nil
}

func (s *service) GetCounterfactualPlan(ctx context.Context, v clinical.Vector, targetRisk float64, variant clinical.Variant) (plan *shap.CounterfactualPlan, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "counterfactual", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}
	if targetRisk == 0 {
		targetRisk = s.settings.TargetRisk
	}
	if !(targetRisk > 0 && targetRisk < 1) {
		return nil, errors.Newf(errors.ErrCodeTargetRiskInvalid, "target risk %g must lie in (0, 1)", targetRisk)
	}

	plan = &shap.CounterfactualPlan{}
	key := reportKey("counterfactual", variant, s.catalog.Clamp(v), targetRisk, s.settings.Counterfactual)
	err = s.cached(ctx, "counterfactual", key, plan, func() interface{} {
		return s.solve(v, targetRisk, variant)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCounterfactual(string(variant), plan.Converged, plan.Feasible)
	s.publish(ctx, EventCounterfactualSolved, variant, newCounterfactualEvent(ctx, plan, s.now()))
	return plan, nil
}

func (s *service) solve(v clinical.Vector, targetRisk float64, variant clinical.Variant) *shap.CounterfactualPlan {
	cf := s.settings.Counterfactual
	return s.engine.SolveCounterfactual(v, targetRisk, variant,
		shap.WithLearningRate(cf.LearningRate),
		shap.WithMaxIterations(cf.MaxIterations),
		shap.WithGradientEpsilon(cf.GradientEpsilon),
		shap.WithTolerance(cf.Tolerance),
		shap.WithFeasibilityBudget(cf.FeasibilityBudget),
	)
}

func (s *service) GetSensitivityReport(ctx context.Context, v clinical.Vector, variant clinical.Variant, rangeFraction float64) (_ *shap.SensitivityReport, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "sensitivity", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}
	if rangeFraction == 0 {
		rangeFraction = s.settings.SensitivityRange
	}
	if !(rangeFraction > 0 && rangeFraction <= 1) {
		return nil, errors.Newf(errors.ErrCodeAnalysisParamInvalid, "range fraction %g must lie in (0, 1]", rangeFraction)
	}
	return s.engine.Tornado(v, variant, rangeFraction), nil
}

func (s *service) GetStabilityReport(ctx context.Context, v clinical.Vector, variant clinical.Variant, sampleCount int, seed int64) (report *shap.StabilityReport, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "stability", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}
	if sampleCount == 0 {
		sampleCount = s.settings.StabilitySamples
	}
	if sampleCount < 0 || sampleCount > MaxStabilitySamples {
		return nil, errors.Newf(errors.ErrCodeAnalysisParamInvalid, "sample count %d must lie in [1, %d]", sampleCount, MaxStabilitySamples)
	}

	report = &shap.StabilityReport{}
	key := reportKey("stability", variant, s.catalog.Clamp(v), sampleCount, seed)
	err = s.cached(ctx, "stability", key, report, func() interface{} {
		return s.engine.Stability(v, variant, sampleCount, seed)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *service) GetTrajectory(ctx context.Context, v clinical.Vector, variant clinical.Variant, horizonDays int) (_ *shap.Trajectory, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "trajectory", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}
	if horizonDays > MaxTrajectoryDays {
		return nil, errors.Newf(errors.ErrCodeAnalysisParamInvalid, "horizon %d exceeds %d days", horizonDays, MaxTrajectoryDays)
	}
	return s.engine.SimulateTrajectory(v, variant, horizonDays), nil
}

func (s *service) GetFeatureSpec(ctx context.Context, id clinical.FeatureID) (*clinical.FeatureSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	normalized, err := s.catalog.Normalize(string(id))
	if err != nil {
		return nil, err
	}
	return s.catalog.Get(normalized)
}

func (s *service) ListFeatureSpecs(ctx context.Context) ([]*clinical.FeatureSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	return s.catalog.List(), nil
}

func (s *service) GetInsights(ctx context.Context, v clinical.Vector, variant clinical.Variant) (_ []shap.Insight, err error) {
	variant, err = s.prepare(ctx, v, variant)
	defer s.observe(ctx, "insights", variant, s.now(), &err)
	if err != nil {
		return nil, err
	}
	return s.engine.Insights(v, variant), nil
}

func (s *service) GetModelCard(ctx context.Context, variant clinical.Variant) (*shap.ModelCard, error) {
	variant, err := s.prepare(ctx, nil, variant)
	if err != nil {
		return nil, err
	}
	m, err := shap.ModelFor(variant)
	if err != nil {
		return nil, err
	}
	return m.Card(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// prepare checks ctx, resolves the variant and rejects unknown features.
func (s *service) prepare(ctx context.Context, v clinical.Vector, variant clinical.Variant) (clinical.Variant, error) {
	if err := ctx.Err(); err != nil {
		return variant, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	resolved, err := s.resolveVariant(variant)
	if err != nil {
		return variant, err
	}
	for _, id := range v.Keys() {
		if _, err := s.catalog.Get(id); err != nil {
			return resolved, err
		}
	}
	return resolved, nil
}

func (s *service) resolveVariant(variant clinical.Variant) (clinical.Variant, error) {
	if variant == "" {
		variant = clinical.Variant(s.settings.DefaultVariant)
	}
	return clinical.ParseVariant(string(variant))
}

// observe records the outcome of an operation. It is deferred with the start
// time evaluated at the defer statement.
func (s *service) observe(ctx context.Context, op string, variant clinical.Variant, start time.Time, errp *error) {
	err := *errp
	s.metrics.RecordAnalysis(op, string(variant), time.Since(start), err)

	l := logging.FromContext(ctx, s.logger)
	if err != nil {
		l.Warn("analysis rejected",
			logging.String(logging.FieldOperation, op),
			logging.String("code", errors.GetCode(err).String()),
			logging.Err(err))
		return
	}
	logging.LogOperationDuration(l, op, start, logging.String(logging.FieldVariant, string(variant)))
}

// cached fills dest from the report cache, computing it with compute on a
// miss. Cache failures fall back to computing directly.
func (s *service) cached(ctx context.Context, report, key string, dest interface{}, compute func() interface{}) error {
	if s.cache == nil {
		return assign(dest, compute())
	}

	loaded := false
	err := s.cache.GetOrSet(ctx, key, dest, s.cacheTTL, func(context.Context) (interface{}, error) {
		loaded = true
		return compute(), nil
	})
	s.metrics.RecordCacheAccess(report, !loaded)
	if err == nil {
		return nil
	}

	s.logger.Warn("report cache unavailable",
		logging.String("report", report),
		logging.Err(err))
	return assign(dest, compute())
}

func assign(dest, value interface{}) error {
	switch d := dest.(type) {
	case *shap.CounterfactualPlan:
		*d = *value.(*shap.CounterfactualPlan)
	case *shap.StabilityReport:
		*d = *value.(*shap.StabilityReport)
	default:
		return errors.Newf(errors.ErrCodeInternal, "unsupported report type %T", dest)
	}
	return nil
}

//Personal.AI order the ending
