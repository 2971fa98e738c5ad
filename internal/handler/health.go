package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/profile-api/internal/envelope"
	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/middleware"
	"github.com/deppfellow/profile-api/internal/server"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name string
	// Required checks make the service unhealthy when they fail.
	Required bool
	Probe    func(ctx context.Context) error
}

// HealthReport is the data of the /status envelope.
type HealthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthHandler struct {
	Handler
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler checks the database (required) and redis (reported only,
// since only background jobs depend on it). observability.health_checks
// picks which of them run and their timeout.
func NewHealthHandler(s *server.Server) *HealthHandler {
	enabled := map[string]bool{"database": true, "redis": true}
	timeout := healthCheckTimeout
	if obs := s.Config.Observability; obs != nil {
		hc := obs.HealthChecks
		if !hc.Enabled {
			enabled = map[string]bool{}
		} else if len(hc.Checks) > 0 {
			enabled = make(map[string]bool, len(hc.Checks))
			for _, name := range hc.Checks {
				enabled[name] = true
			}
		}
		if hc.Timeout > 0 {
			timeout = hc.Timeout
		}
	}

	var checks []HealthCheck
	if s.DB != nil && enabled["database"] {
		checks = append(checks, HealthCheck{Name: "database", Required: true, Probe: s.DB.Ping})
	}
	if s.Redis != nil && enabled["redis"] {
		checks = append(checks, HealthCheck{Name: "redis", Probe: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}

	h := NewHealthHandlerWithChecks(s, checks...)
	h.timeout = timeout
	return h
}

func NewHealthHandlerWithChecks(s *server.Server, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
		timeout: healthCheckTimeout,
	}
}

// CheckHealth answers 200 with the per-check report when every required
// check passes. Otherwise it answers 503 naming the failed checks.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	report := HealthReport{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]CheckResult, len(h.checks)),
	}

	var failed []string
	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.Probe(ctx)
		cancel()

		result := CheckResult{Status: "healthy", ResponseTime: time.Since(checkStart).String()}
		if err != nil {
			result.Status = "unhealthy"
			result.Error = err.Error()
			if check.Required {
				failed = append(failed, check.Name)
			}

			logger.Error().Err(err).Str("check", check.Name).Msg("health check failed")
			h.recordHealthEvent(check.Name, err, time.Since(checkStart))
		}
		report.Checks[check.Name] = result
	}

	if len(failed) > 0 {
		logger.Warn().
			Strs("failed_checks", failed).
			Dur("total_duration", time.Since(start)).
			Msg("service unhealthy")

		env, status := envelope.Build(envelope.Fail(&errs.HTTPError{
			Kind:    errs.KindUpstreamFailure,
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusServiceUnavailable)),
			Message: "Service unhealthy: " + strings.Join(failed, ", "),
			Status:  http.StatusServiceUnavailable,
		}), "", 0)
		return c.JSON(status, env)
	}

	env, status := envelope.Build(envelope.Ok(report), "Service healthy", http.StatusOK)
	return c.JSON(status, env)
}

func (h *HealthHandler) recordHealthEvent(check string, err error, took time.Duration) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "health_check",
		"response_time_ms": took.Milliseconds(),
		"error_message":    err.Error(),
	})
}
