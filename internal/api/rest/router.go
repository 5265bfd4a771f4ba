package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/telemetry"
	"github.com/davidleathers/cnp-fraud-console/internal/metrics"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	EnableCompression  bool
	CompressionMinSize int
	RateLimit          RateLimitConfig
	Metrics            *metrics.Registry
	// Gatherer backs GET /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// DefaultRouterConfig returns sensible defaults
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		EnableCompression:  true,
		CompressionMinSize: 1024,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logger: slog.Default(),
	}
}

// NewRouter wires the routes and the middleware chain
func NewRouter(config RouterConfig, h *Handler, health *HealthService) (http.Handler, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	route := func(pattern, name string, fn http.HandlerFunc) {
		mux.Handle(pattern, MetricsMiddleware(config.Metrics, name)(fn))
	}

	mux.Handle("GET /{$}", http.RedirectHandler("/fraud", http.StatusFound))

	route("GET /fraud", "/fraud", h.FraudPage)
	route("POST /fraud/upload", "/fraud/upload", h.UploadPage)
	route("POST /fraud/manual", "/fraud/manual", h.ManualPage)
	route("GET /admin/usage", "/admin/usage", h.UsagePage)

	route("POST /api/v1/fraud/score", "/api/v1/fraud/score", h.ScoreBatchAPI)
	route("POST /api/v1/fraud/manual", "/api/v1/fraud/manual", h.ScoreManualAPI)
	route("GET /api/v1/usage/months", "/api/v1/usage/months", h.UsageMonthsAPI)
	route("GET /api/v1/usage/summary", "/api/v1/usage/summary", h.UsageSummaryAPI)

	mux.Handle("GET /health/live", health.LivenessHandler())
	mux.Handle("GET /health/ready", health.ReadinessHandler())

	if config.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}

	rateLimit := config.RateLimit
	rateLimit.Exempt = append(rateLimit.Exempt, "/health", "/metrics")

	middlewares := []Middleware{
		RecoveryMiddleware(config.Logger),
		SecurityHeadersMiddleware(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(config.Logger),
		TracingMiddleware(telemetry.Tracer()),
		NewRateLimiter(rateLimit).Middleware(),
	}
	if config.EnableCompression {
		compress, err := CompressionMiddleware(config.CompressionMinSize)
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, compress)
	}

	return NewMiddlewareChain(middlewares...).Then(mux), nil
}
