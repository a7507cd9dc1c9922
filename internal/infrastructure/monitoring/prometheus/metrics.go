package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis pipeline
	AnalysisRequestsTotal CounterVec
	AnalysisDuration      HistogramVec
	AnalysisProductsFound HistogramVec

	// Upstream model service
	UpstreamRequestsTotal   CounterVec
	UpstreamRequestDuration HistogramVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Import
	ImportRecordsTotal CounterVec
	ImportDuration     HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultAnalysisDurationBuckets = []float64{.05, .25, 1, 2.5, 5, 10, 20, 30, 60, 120}
	DefaultUpstreamDurationBuckets = []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60}
	DefaultImportDurationBuckets   = []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600}
)

// Analysis outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeComputed = "computed"
	OutcomeShared   = "shared"
	OutcomeError    = "error"
)

// NewAppMetrics registers every metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")

	m.AnalysisRequestsTotal = collector.RegisterCounter("analysis_requests_total", "Infringement analyses by outcome", "outcome")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Infringement analysis duration", DefaultAnalysisDurationBuckets, "outcome")
	m.AnalysisProductsFound = collector.RegisterHistogram("analysis_candidate_products", "Candidate products returned by the vector search", []float64{0, 1, 2, 3, 5, 10})

	m.UpstreamRequestsTotal = collector.RegisterCounter("upstream_requests_total", "Calls to the hosted model service", "operation", "status")
	m.UpstreamRequestDuration = collector.RegisterHistogram("upstream_request_duration_seconds", "Hosted model call duration", DefaultUpstreamDurationBuckets, "operation")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.ImportRecordsTotal = collector.RegisterCounter("import_records_total", "Imported records", "kind", "status")
	m.ImportDuration = collector.RegisterHistogram("import_duration_seconds", "Duration of one import run", DefaultImportDurationBuckets, "kind")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// NewNopAppMetrics returns metrics that record nothing.  Used by the CLI and
// in tests.
func NewNopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:       noopCounterVec{},
		HTTPRequestDuration:     noopHistogramVec{},
		HTTPActiveRequests:      noopGaugeVec{},
		AnalysisRequestsTotal:   noopCounterVec{},
		AnalysisDuration:        noopHistogramVec{},
		AnalysisProductsFound:   noopHistogramVec{},
		UpstreamRequestsTotal:   noopCounterVec{},
		UpstreamRequestDuration: noopHistogramVec{},
		CacheHitsTotal:          noopCounterVec{},
		CacheMissesTotal:        noopCounterVec{},
		ImportRecordsTotal:      noopCounterVec{},
		ImportDuration:          noopHistogramVec{},
		HealthCheckStatus:       noopGaugeVec{},
		ErrorsTotal:             noopCounterVec{},
	}
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, route string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordAnalysis(metrics *AppMetrics, outcome string, duration time.Duration) {
	metrics.AnalysisRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.AnalysisDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordUpstreamCall(metrics *AppMetrics, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordImport(metrics *AppMetrics, kind string, err error) {
	status := "inserted"
	if err != nil {
		status = "failed"
	}
	metrics.ImportRecordsTotal.WithLabelValues(kind, status).Inc()
}

func RecordHealth(metrics *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}
