package explain

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	rediscache "github.com/turtacn/hypocal-explain/internal/infrastructure/database/redis"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
	"github.com/turtacn/hypocal-explain/internal/testutil"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// MockRecorder is a mock implementation of Recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAnalysis(operation, variant string, d time.Duration, err error) {
	m.Called(operation, variant, d, err)
}

func (m *MockRecorder) RecordRisk(variant, category string, p float64) {
	m.Called(variant, category, p)
}

func (m *MockRecorder) RecordCounterfactual(variant string, converged, feasible bool) {
	m.Called(variant, converged, feasible)
}

func (m *MockRecorder) RecordCacheAccess(report string, hit bool) {
	m.Called(report, hit)
}

func (m *MockRecorder) RecordEventPublished(err error) {
	m.Called(err)
}

func newMockRecorder() *MockRecorder {
	r := &MockRecorder{}
	r.On("RecordAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	r.On("RecordRisk", mock.Anything, mock.Anything, mock.Anything).Maybe()
	r.On("RecordCounterfactual", mock.Anything, mock.Anything, mock.Anything).Maybe()
	r.On("RecordCacheAccess", mock.Anything, mock.Anything).Maybe()
	r.On("RecordEventPublished", mock.Anything).Maybe()
	return r
}

// MockPublisher is a mock implementation of EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, eventType, key string, payload interface{}) error {
	args := m.Called(ctx, eventType, key, payload)
	return args.Error(0)
}

type failingCache struct{ calls int }

func (f *failingCache) GetOrSet(context.Context, string, interface{}, time.Duration, func(context.Context) (interface{}, error)) error {
	f.calls++
	return stderrors.New("connection refused")
}

func reference() clinical.Vector {
	return clinical.Standard().Reference()
}

func highRisk(t *testing.T) clinical.Vector {
	t.Helper()
	v, err := clinical.Preset(clinical.PresetHighRisk)
	require.NoError(t, err)
	return v
}

func newTestService(opts ...Option) Service {
	return NewService(nil, config.EngineConfig{}, opts...)
}

func TestNewService_AppliesDefaults(t *testing.T) {
	s := newTestService()
	got := s.Settings()
	assert.Equal(t, "baseline", got.DefaultVariant)
	assert.Equal(t, shap.DefaultTargetRisk, got.TargetRisk)
	assert.Equal(t, shap.DefaultStabilitySamples, got.StabilitySamples)
	assert.Equal(t, shap.DefaultMaxIterations, got.Counterfactual.MaxIterations)
	assert.Zero(t, got.StabilitySeed)
}

func TestExplain_ZeroSeedKept(t *testing.T) {
	out, err := newTestService().Explain(context.Background(), reference(), clinical.VariantBaseline)
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Stability.Seed)

	settings := config.NewDefaultConfig().Engine
	settings.StabilitySeed = 11
	out, err = NewService(nil, settings).Explain(context.Background(), reference(), clinical.VariantBaseline)
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Stability.Seed)
}

func TestGetRiskEstimate(t *testing.T) {
	rec := newMockRecorder()
	s := newTestService(WithRecorder(rec))

	est, err := s.GetRiskEstimate(context.Background(), reference(), clinical.VariantBaseline)
	require.NoError(t, err)
	assert.InDelta(t, 0.0211850762, est.Probability, 1e-8)
	assert.Equal(t, shap.CategoryLow, est.Category)

	rec.AssertCalled(t, "RecordAnalysis", "risk", "baseline", mock.Anything, nil)
	rec.AssertCalled(t, "RecordRisk", "baseline", "Low", mock.AnythingOfType("float64"))
}

func TestGetRiskEstimate_HighRiskPreset(t *testing.T) {
	s := newTestService()
	est, err := s.GetRiskEstimate(context.Background(), highRisk(t), clinical.VariantBaseline)
	require.NoError(t, err)
	assert.InDelta(t, 0.4002839216, est.Probability, 1e-8)
	assert.Equal(t, shap.CategoryHigh, est.Category)
}

func TestVariantResolution(t *testing.T) {
	s := NewService(nil, config.EngineConfig{DefaultVariant: "balanced"})
	ctx := context.Background()

	est, err := s.GetRiskEstimate(ctx, reference(), "")
	require.NoError(t, err)
	assert.Equal(t, clinical.VariantBalanced, est.Variant)

	est, err = s.GetRiskEstimate(ctx, reference(), "no-smote")
	require.NoError(t, err)
	assert.Equal(t, clinical.VariantBaseline, est.Variant)

	_, err = s.GetRiskEstimate(ctx, reference(), "ensemble")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownVariant))
}

func TestValidationErrorsAreRecorded(t *testing.T) {
	rec := newMockRecorder()
	log := testutil.NewMockLogger()
	s := newTestService(WithRecorder(rec), WithLogger(log))

	_, err := s.GetContributions(context.Background(), clinical.Vector{"potassium": 4.1}, clinical.VariantBaseline)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownFeature))

	rec.AssertCalled(t, "RecordAnalysis", "contributions", "baseline", mock.Anything, err)
	assert.True(t, log.HasMessage("warn", "analysis rejected"))
	assert.NotEmpty(t, log.ByLogger("explain"))
}

func TestGetContributions(t *testing.T) {
	s := newTestService()
	c, err := s.GetContributions(context.Background(), reference(), clinical.VariantBaseline)
	require.NoError(t, err)
	assert.Len(t, c, 5)
	assert.Equal(t, shap.Contributions(reference(), clinical.VariantBaseline), c)
}

func TestGetCounterfactualPlan(t *testing.T) {
	rec := newMockRecorder()
	s := newTestService(WithRecorder(rec))
	ctx := context.Background()

	plan, err := s.GetCounterfactualPlan(ctx, highRisk(t), 0, clinical.VariantBaseline)
	require.NoError(t, err)
	assert.Equal(t, shap.DefaultTargetRisk, plan.TargetRisk)
	assert.Equal(t, shap.NewEngine(nil).SolveCounterfactual(highRisk(t), shap.DefaultTargetRisk, clinical.VariantBaseline), plan)
	rec.AssertCalled(t, "RecordCounterfactual", "baseline", plan.Converged, plan.Feasible)

	for _, target := range []float64{-0.1, 1, 1.5} {
		_, err := s.GetCounterfactualPlan(ctx, highRisk(t), target, clinical.VariantBaseline)
		assert.True(t, errors.IsCode(err, errors.ErrCodeTargetRiskInvalid), "target=%g", target)
	}
}

func TestGetCounterfactualPlan_UsesConfiguredSolver(t *testing.T) {
	s := NewService(nil, config.EngineConfig{
		Counterfactual: config.CounterfactualConfig{MaxIterations: 3},
	})
	plan, err := s.GetCounterfactualPlan(context.Background(), highRisk(t), 0.05, clinical.VariantBaseline)
	require.NoError(t, err)
	assert.LessOrEqual(t, plan.Iterations, 3)
}

func TestGetSensitivityReport(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	report, err := s.GetSensitivityReport(ctx, reference(), clinical.VariantBaseline, 0)
	require.NoError(t, err)
	assert.Equal(t, shap.DefaultSensitivityRange, report.RangeFraction)
	assert.Len(t, report.Entries, 5)

	for _, r := range []float64{-0.5, 1.01} {
		_, err := s.GetSensitivityReport(ctx, reference(), clinical.VariantBaseline, r)
		assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisParamInvalid), "range=%g", r)
	}
}

func TestGetStabilityReport(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	a, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, 50, 7)
	require.NoError(t, err)
	b, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, 50, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 50, a.SampleCount)

	d, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, shap.DefaultStabilitySamples, d.SampleCount)

	for _, n := range []int{-1, MaxStabilitySamples + 1} {
		_, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, n, 7)
		assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisParamInvalid), "n=%d", n)
	}
}

func TestGetStabilityReport_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := rediscache.NewClient(&rediscache.Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := rediscache.NewRedisCache(client, logging.NewNopLogger())

	rec := newMockRecorder()
	s := newTestService(WithRecorder(rec), WithCache(cache, time.Minute))
	ctx := context.Background()

	first, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, 20, 3)
	require.NoError(t, err)
	second, err := s.GetStabilityReport(ctx, reference(), clinical.VariantBaseline, 20, 3)
	require.NoError(t, err)

	assert.Equal(t, first.SampleCount, second.SampleCount)
	for id, stat := range first.Features {
		assert.InDelta(t, stat.CV, second.Features[id].CV, 1e-12)
		assert.Equal(t, stat.Stable, second.Features[id].Stable)
	}
	rec.AssertCalled(t, "RecordCacheAccess", "stability", false)
	rec.AssertCalled(t, "RecordCacheAccess", "stability", true)
	assert.NotEmpty(t, mr.Keys())
}

func TestCacheFailureFallsBack(t *testing.T) {
	cache := &failingCache{}
	s := newTestService(WithCache(cache, time.Minute))

	plan, err := s.GetCounterfactualPlan(context.Background(), highRisk(t), 0.05, clinical.VariantBaseline)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.calls)
	assert.NotEmpty(t, plan.Changes)
}

func TestGetTrajectory(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	tr, err := s.GetTrajectory(ctx, reference(), clinical.VariantBaseline, 7)
	require.NoError(t, err)
	require.Len(t, tr.Points, 8)
	assert.InDelta(t, 2.4, tr.Points[7].Calcium, 1e-12)

	tr, err = s.GetTrajectory(ctx, reference(), clinical.VariantBaseline, -3)
	require.NoError(t, err)
	assert.Len(t, tr.Points, 1)

	_, err = s.GetTrajectory(ctx, reference(), clinical.VariantBaseline, MaxTrajectoryDays+1)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisParamInvalid))
}

func TestFeatureSpecs(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	spec, err := s.GetFeatureSpec(ctx, "ca")
	require.NoError(t, err)
	assert.Equal(t, clinical.FeatureCalcium, spec.ID)

	_, err = s.GetFeatureSpec(ctx, "potassium")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownFeature))

	specs, err := s.ListFeatureSpecs(ctx)
	require.NoError(t, err)
	assert.Len(t, specs, 5)
}

func TestGetInsights(t *testing.T) {
	s := newTestService()
	insights, err := s.GetInsights(context.Background(), highRisk(t), clinical.VariantBaseline)
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, shap.InsightSummary, insights[0].Kind)
}

func TestGetModelCard(t *testing.T) {
	s := newTestService()
	card, err := s.GetModelCard(context.Background(), "smote")
	require.NoError(t, err)
	assert.Equal(t, clinical.VariantBalanced, card.Variant)
	assert.InDelta(t, 0.704, card.Performance.ROCAUC, 1e-12)

	_, err = s.GetModelCard(context.Background(), "xgboost")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownVariant))
}

func TestCancelledContext(t *testing.T) {
	s := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetRiskEstimate(ctx, reference(), clinical.VariantBaseline)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.ListFeatureSpecs(ctx)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestExplain(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishEvent", mock.Anything, EventCounterfactualSolved, "baseline", mock.AnythingOfType("*explain.CounterfactualEvent")).Return(nil).Once()
	pub.On("PublishEvent", mock.Anything, EventExplanationGenerated, "baseline", mock.AnythingOfType("*explain.AssessmentEvent")).Return(nil).Once()

	s := NewService(nil, config.NewDefaultConfig().Engine, WithPublisher(pub))
	ctx := logging.WithRequestID(context.Background(), "req-42")

	out, err := s.Explain(ctx, highRisk(t), "")
	require.NoError(t, err)

	assert.Equal(t, "req-42", out.RequestID)
	assert.Equal(t, clinical.VariantBaseline, out.Variant)
	assert.Equal(t, shap.CategoryHigh, out.Risk.Category)
	assert.Len(t, out.Ranked, 5)
	assert.NotEmpty(t, out.Insights)
	assert.Len(t, out.Sensitivity.Entries, 5)
	assert.Equal(t, shap.DefaultStabilitySamples, out.Stability.SampleCount)
	assert.Equal(t, int64(config.DefaultStabilitySeed), out.Stability.Seed)
	assert.Len(t, out.Trajectory.Points, shap.DefaultTrajectoryDays+1)
	assert.NotNil(t, out.Counterfactual)
	assert.NotNil(t, out.Model)
	assert.False(t, out.GeneratedAt.IsZero())

	pub.AssertExpectations(t)
}

func TestExplain_InvalidInput(t *testing.T) {
	s := newTestService()
	_, err := s.Explain(context.Background(), clinical.Vector{"sodium": 140}, clinical.VariantBaseline)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownFeature))
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishEvent", mock.Anything, EventRiskEstimated, "balanced", mock.Anything).Return(stderrors.New("broker down"))
	rec := newMockRecorder()

	s := newTestService(WithPublisher(pub), WithRecorder(rec))
	_, err := s.GetRiskEstimate(context.Background(), reference(), clinical.VariantBalanced)
	require.NoError(t, err)

	rec.AssertCalled(t, "RecordEventPublished", mock.MatchedBy(func(err error) bool { return err != nil }))
}

func TestReportKey(t *testing.T) {
	a := reportKey("stability", clinical.VariantBaseline, reference(), 100, int64(42))
	b := reportKey("stability", clinical.VariantBaseline, reference(), 100, int64(43))
	c := reportKey("stability", clinical.VariantBalanced, reference(), 100, int64(42))

	assert.Equal(t, "stability:baseline:2.26:28:1.7:41:0.79:100:42", a)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

//Personal.AI order the ending
