package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/telemetry"
)

// HealthChecker checks the health of a dependency
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) HealthCheckResult
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       HealthStatus           `json:"status"`
	Message      string                 `json:"message,omitempty"`
	Error        string                 `json:"error,omitempty"`
	ResponseTime time.Duration          `json:"response_time"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	LastChecked  time.Time              `json:"last_checked"`
}

// HealthStatus represents the health status
type HealthStatus string

const (
	HealthStatusPass HealthStatus = "pass"
	HealthStatusWarn HealthStatus = "warn"
	HealthStatusFail HealthStatus = "fail"
)

// HealthConfig configures the health service
type HealthConfig struct {
	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration

	// Timeout is the maximum time for a health check
	Timeout time.Duration

	ServiceName    string
	ServiceVersion string
	Environment    string
}

// DefaultHealthConfig returns default configuration
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		CacheDuration:  5 * time.Second,
		Timeout:        2 * time.Second,
		ServiceName:    "cnp-fraud-console",
		ServiceVersion: "dev",
		Environment:    "development",
	}
}

// HealthService manages health checks
type HealthService struct {
	checkers  map[string]HealthChecker
	cache     sync.Map
	config    HealthConfig
	startTime time.Time
}

type cachedHealthResult struct {
	result    HealthCheckResult
	timestamp time.Time
}

// NewHealthService creates a new health service
func NewHealthService(config HealthConfig) *HealthService {
	return &HealthService{
		checkers:  make(map[string]HealthChecker),
		config:    config,
		startTime: time.Now(),
	}
}

// RegisterChecker registers a health checker under its name
func (h *HealthService) RegisterChecker(checker HealthChecker) {
	h.checkers[checker.Name()] = checker
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status      HealthStatus                 `json:"status"`
	Version     string                       `json:"version"`
	ServiceName string                       `json:"service_name"`
	Environment string                       `json:"environment,omitempty"`
	Checks      map[string]HealthCheckResult `json:"checks,omitempty"`
	Uptime      float64                      `json:"uptime_seconds"`
}

// LivenessHandler reports that the process is serving
func (h *HealthService) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{
			Status:      HealthStatusPass,
			Version:     h.config.ServiceVersion,
			ServiceName: h.config.ServiceName,
			Uptime:      time.Since(h.startTime).Seconds(),
		})
	}
}

// ReadinessHandler runs every registered check; any failure is a 503
func (h *HealthService) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := telemetry.Tracer().Start(r.Context(), "health.readiness")
		defer span.End()

		checks := h.runChecks(ctx)

		status := HealthStatusPass
		statusCode := http.StatusOK
		for _, result := range checks {
			if result.Status == HealthStatusFail {
				status = HealthStatusFail
				statusCode = http.StatusServiceUnavailable
				break
			} else if result.Status == HealthStatusWarn {
				status = HealthStatusWarn
			}
		}

		writeHealth(w, statusCode, HealthResponse{
			Status:      status,
			Version:     h.config.ServiceVersion,
			ServiceName: h.config.ServiceName,
			Environment: h.config.Environment,
			Checks:      checks,
			Uptime:      time.Since(h.startTime).Seconds(),
		})

		span.SetAttributes(
			attribute.String("health.status", string(status)),
			attribute.Int("health.checks_count", len(checks)),
		)
	}
}

func writeHealth(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/health+json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// runChecks runs all registered health checks concurrently
func (h *HealthService) runChecks(ctx context.Context) map[string]HealthCheckResult {
	results := make(map[string]HealthCheckResult, len(h.checkers))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range h.checkers {
		wg.Add(1)
		go func(n string, c HealthChecker) {
			defer wg.Done()

			result, ok := h.getCachedResult(n)
			if !ok {
				checkCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
				defer cancel()

				start := time.Now()
				result = c.Check(checkCtx)
				result.ResponseTime = time.Since(start)
				result.LastChecked = time.Now()
				h.cache.Store(n, cachedHealthResult{result: result, timestamp: time.Now()})
			}

			mu.Lock()
			results[n] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()
	return results
}

func (h *HealthService) getCachedResult(name string) (HealthCheckResult, bool) {
	if val, ok := h.cache.Load(name); ok {
		cached := val.(cachedHealthResult)
		if time.Since(cached.timestamp) < h.config.CacheDuration {
			return cached.result, true
		}
	}
	return HealthCheckResult{}, false
}

// ModelInfo is the view of the loaded model the readiness check needs
type ModelInfo interface {
	Version() string
	NumTrees() int
	NumFeatures() int
}

// ModelHealthChecker passes once a non-empty model is loaded
type ModelHealthChecker struct {
	model ModelInfo
}

// NewModelHealthChecker creates a checker for the loaded model
func NewModelHealthChecker(model ModelInfo) *ModelHealthChecker {
	return &ModelHealthChecker{model: model}
}

func (m *ModelHealthChecker) Name() string { return "model" }

func (m *ModelHealthChecker) Check(ctx context.Context) HealthCheckResult {
	if m.model == nil || m.model.NumTrees() == 0 {
		return HealthCheckResult{Status: HealthStatusFail, Error: "no model loaded"}
	}
	return HealthCheckResult{
		Status:  HealthStatusPass,
		Message: "model loaded",
		Metadata: map[string]interface{}{
			"version":  m.model.Version(),
			"trees":    m.model.NumTrees(),
			"features": m.model.NumFeatures(),
		},
	}
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// UsageLogHealthChecker checks that the usage log can be read. A log that
// does not exist yet is healthy.
type UsageLogHealthChecker struct {
	log Pinger
}

// NewUsageLogHealthChecker creates a checker for the usage log
func NewUsageLogHealthChecker(log Pinger) *UsageLogHealthChecker {
	return &UsageLogHealthChecker{log: log}
}

func (u *UsageLogHealthChecker) Name() string { return "usage_log" }

func (u *UsageLogHealthChecker) Check(ctx context.Context) HealthCheckResult {
	if err := u.log.Ping(ctx); err != nil {
		return HealthCheckResult{Status: HealthStatusFail, Error: err.Error()}
	}
	return HealthCheckResult{Status: HealthStatusPass, Message: "usage log readable"}
}
