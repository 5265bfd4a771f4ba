package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cnp"

// Sources label where scored transactions came from.
const (
	SourceUpload = "upload"
	SourceManual = "manual"
	SourceAPI    = "api"
)

// Registry holds all domain-specific metrics for the application
type Registry struct {
	// Scoring
	TransactionsScored *prometheus.CounterVec
	ScoringDuration    *prometheus.HistogramVec
	FraudProbability   prometheus.Histogram
	ExplanationsServed *prometheus.CounterVec
	FeatureBuildErrors *prometheus.CounterVec
	ModelInfo          *prometheus.GaugeVec

	// Usage dashboard
	UsageReports *prometheus.CounterVec

	// HTTP
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry registers every metric with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	f := promauto.With(reg)
	return &Registry{
		TransactionsScored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fraud",
			Name:      "transactions_scored_total",
			Help:      "Transactions scored by the fraud model",
		}, []string{"source"}),
		ScoringDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fraud",
			Name:      "scoring_duration_seconds",
			Help:      "Feature build plus model scoring latency per request",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to ~3s
		}, []string{"source"}),
		FraudProbability: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fraud",
			Name:      "probability",
			Help:      "Distribution of predicted fraud probabilities",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		ExplanationsServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fraud",
			Name:      "explanations_total",
			Help:      "Feature attribution explanations computed",
		}, []string{"source"}),
		FeatureBuildErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fraud",
			Name:      "feature_build_errors_total",
			Help:      "Batches rejected before scoring, by error type",
		}, []string{"type"}),
		ModelInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fraud",
			Name:      "model_info",
			Help:      "Loaded model metadata; value is the tree count",
		}, []string{"version", "codebook"}),
		UsageReports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "reports_total",
			Help:      "Usage dashboard reports, by outcome",
		}, []string{"outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		}, []string{"method", "route"}),
	}
}

// ObserveScoring records one scored batch. Safe on a nil registry.
func (r *Registry) ObserveScoring(source string, probabilities []float64, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.TransactionsScored.WithLabelValues(source).Add(float64(len(probabilities)))
	r.ScoringDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	for _, p := range probabilities {
		r.FraudProbability.Observe(p)
	}
}

// ObserveExplanation counts one served explanation. Safe on a nil registry.
func (r *Registry) ObserveExplanation(source string) {
	if r == nil {
		return
	}
	r.ExplanationsServed.WithLabelValues(source).Inc()
}

// ObserveBuildError counts a rejected batch. Safe on a nil registry.
func (r *Registry) ObserveBuildError(errType string) {
	if r == nil {
		return
	}
	r.FeatureBuildErrors.WithLabelValues(errType).Inc()
}

// ObserveUsageReport counts a usage report by outcome. Safe on a nil registry.
func (r *Registry) ObserveUsageReport(outcome string) {
	if r == nil {
		return
	}
	r.UsageReports.WithLabelValues(outcome).Inc()
}

// SetModelInfo publishes the loaded model's metadata.
func (r *Registry) SetModelInfo(version, codebook string, trees int) {
	if r == nil {
		return
	}
	r.ModelInfo.Reset()
	r.ModelInfo.WithLabelValues(version, codebook).Set(float64(trees))
}
