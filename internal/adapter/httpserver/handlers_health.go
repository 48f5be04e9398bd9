package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency for the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "up",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleReadiness probes every registered dependency. Any failure answers
// 503 so the load balancer stops routing here until the dependency recovers.
func (s *Server) handleReadiness(c echo.Context) error {
	checks := make(map[string]string, len(s.healthChecks))
	healthy := true

	for _, hc := range s.healthChecks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		err := hc.Check(ctx)
		cancel()

		if err != nil {
			checks[hc.Name] = err.Error()
			healthy = false
		} else {
			checks[hc.Name] = "ok"
		}
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "not ready"
	}
	return c.JSON(status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
