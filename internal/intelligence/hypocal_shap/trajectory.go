package hypocal_shap

import (
	"math"

	"github.com/sajari/regression"

	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
)

const (
	// DefaultTrajectoryDays is the default projection horizon.
	DefaultTrajectoryDays = config.DefaultTrajectoryDays
	// CalciumRecoveryCap is the highest projected calcium value in mmol/L.
	CalciumRecoveryCap = 2.4
	// CalciumRecoveryGain is the calcium rise spread over the whole horizon.
	CalciumRecoveryGain = 0.2
)

// TrajectoryPoint is the projected risk on one day.
type TrajectoryPoint struct {
	Day         int      `json:"day" yaml:"day"`
	Calcium     float64  `json:"calcium" yaml:"calcium"`
	Probability float64  `json:"probability" yaml:"probability"`
	CILower     float64  `json:"ci_lower" yaml:"ci_lower"`
	CIUpper     float64  `json:"ci_upper" yaml:"ci_upper"`
	Category    Category `json:"category" yaml:"category"`
}

// Trend is a least-squares line of probability against day.
type Trend struct {
	Intercept   float64 `json:"intercept" yaml:"intercept"`
	SlopePerDay float64 `json:"slope_per_day" yaml:"slope_per_day"`
	R2          float64 `json:"r2" yaml:"r2"`
}

// Trajectory is the projected daily risk series.
type Trajectory struct {
	Variant     clinical.Variant  `json:"variant" yaml:"variant"`
	HorizonDays int               `json:"horizon_days" yaml:"horizon_days"`
	Points      []TrajectoryPoint `json:"points" yaml:"points"`
	Trend       *Trend            `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// SimulateTrajectory projects calcium rising linearly by CalciumRecoveryGain
// over horizonDays, capped at CalciumRecoveryCap, and evaluates the risk on
// each day 0..horizonDays. A non-positive horizon yields only day 0.
func (e *Engine) SimulateTrajectory(v clinical.Vector, variant clinical.Variant, horizonDays int) *Trajectory {
	m := modelOrDefault(variant)
	base := e.catalog.Clamp(v)
	start := base[clinical.FeatureCalcium]

	if horizonDays <= 0 {
		ca := math.Min(CalciumRecoveryCap, start)
		return &Trajectory{
			Variant:     m.Variant,
			HorizonDays: 0,
			Points:      []TrajectoryPoint{point(0, ca, estimate(base.With(clinical.FeatureCalcium, ca), m))},
		}
	}

	points := make([]TrajectoryPoint, 0, horizonDays+1)
	for day := 0; day <= horizonDays; day++ {
		ca := math.Min(CalciumRecoveryCap, start+float64(day)/float64(horizonDays)*CalciumRecoveryGain)
		points = append(points, point(day, ca, estimate(base.With(clinical.FeatureCalcium, ca), m)))
	}

	return &Trajectory{
		Variant:     m.Variant,
		HorizonDays: horizonDays,
		Points:      points,
		Trend:       fitTrend(points),
	}
}

func point(day int, ca float64, est *RiskEstimate) TrajectoryPoint {
	return TrajectoryPoint{
		Day:         day,
		Calcium:     ca,
		Probability: est.Probability,
		CILower:     est.CILower,
		CIUpper:     est.CIUpper,
		Category:    est.Category,
	}
}

// fitTrend returns nil when the series cannot be fitted.
func fitTrend(points []TrajectoryPoint) *Trend {
	if len(points) < 2 {
		return nil
	}
	var r regression.Regression
	r.SetObserved("probability")
	r.SetVar(0, "day")
	for _, p := range points {
		r.Train(regression.DataPoint(p.Probability, []float64{float64(p.Day)}))
	}
	if err := r.Run(); err != nil {
		return nil
	}
	coeffs := r.GetCoeffs()
	if len(coeffs) < 2 {
		return nil
	}
	r2 := r.R2
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return &Trend{Intercept: coeffs[0], SlopePerDay: coeffs[1], R2: r2}
}

//Personal.AI order the ending
