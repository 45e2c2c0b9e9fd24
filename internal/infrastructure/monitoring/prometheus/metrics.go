package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family of the explanation service.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Explanation layer
	AnalysisRequestsTotal  CounterVec
	AnalysisDuration       HistogramVec
	RiskProbability        HistogramVec
	RiskCategoryTotal      CounterVec
	CounterfactualOutcomes CounterVec

	// Infrastructure
	CacheHitsTotal    CounterVec
	CacheMissesTotal  CounterVec
	EventsPublished   CounterVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultAnalysisDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultProbabilityBuckets      = []float64{.01, .02, .05, .08, .1, .15, .2, .3, .5, .75, 1}
)

// NewAppMetrics registers all metric families on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// Explanation
	m.AnalysisRequestsTotal = collector.RegisterCounter("analysis_requests_total", "Explanation operations by outcome", "operation", "variant", "status")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Explanation operation duration", DefaultAnalysisDurationBuckets, "operation", "variant")
	m.RiskProbability = collector.RegisterHistogram("risk_probability", "Estimated hypocalcemia probability", DefaultProbabilityBuckets, "variant")
	m.RiskCategoryTotal = collector.RegisterCounter("risk_category_total", "Risk estimates by category", "variant", "category")
	m.CounterfactualOutcomes = collector.RegisterCounter("counterfactual_outcomes_total", "Counterfactual searches by outcome", "variant", "converged", "feasible")

	// Infrastructure
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Report cache hits", "report")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Report cache misses", "report")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Assessment events published", "status")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// RecordHTTPRequest records one completed HTTP request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAnalysis records one explanation operation.
func (m *AppMetrics) RecordAnalysis(operation, variant string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.AnalysisRequestsTotal.WithLabelValues(operation, variant, status).Inc()
	m.AnalysisDuration.WithLabelValues(operation, variant).Observe(duration.Seconds())
}

// RecordRisk records an estimated probability and its category.
func (m *AppMetrics) RecordRisk(variant, category string, probability float64) {
	m.RiskProbability.WithLabelValues(variant).Observe(probability)
	m.RiskCategoryTotal.WithLabelValues(variant, category).Inc()
}

// RecordCounterfactual records the outcome of a counterfactual search.
func (m *AppMetrics) RecordCounterfactual(variant string, converged, feasible bool) {
	m.CounterfactualOutcomes.WithLabelValues(variant, strconv.FormatBool(converged), strconv.FormatBool(feasible)).Inc()
}

// RecordCacheAccess records a report cache lookup.
func (m *AppMetrics) RecordCacheAccess(report string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(report).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(report).Inc()
}

// RecordEventPublished records an assessment event publish attempt.
func (m *AppMetrics) RecordEventPublished(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.EventsPublished.WithLabelValues(status).Inc()
}

// RecordError counts an error by component and code.
func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// SetHealth records a component's health check result.
func (m *AppMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
