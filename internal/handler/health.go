package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth reports the status of each configured dependency check
// (observability.health_checks.checks). It returns 200 when every check
// passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any)
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	observability := h.server.Config.Observability

	if observability.HealthCheckEnabled("database") {
		isHealthy = h.check(c.Request().Context(), logger, checks, "database", func(ctx context.Context) error {
			return h.server.DB.Pool.Ping(ctx)
		}) && isHealthy
	}

	if observability.HealthCheckEnabled("redis") && h.server.Redis != nil {
		isHealthy = h.check(c.Request().Context(), logger, checks, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}) && isHealthy
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthEvent(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// check runs ping with the configured timeout and records its outcome under name.
func (h *HealthHandler) check(
	ctx context.Context,
	logger zerolog.Logger,
	checks map[string]any,
	name string,
	ping func(ctx context.Context) error,
) bool {
	ctx, cancel := context.WithTimeout(ctx, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)
	responseTime := time.Since(checkStart)

	if err != nil {
		checks[name] = map[string]any{
			"status":        "unhealthy",
			"response_time": responseTime.String(),
			"error":         err.Error(),
		}

		logger.Error().
			Err(err).
			Dur("response_time", responseTime).
			Msgf("%s health check failed", name)

		h.recordHealthEvent(map[string]any{
			"check_type":       name,
			"error_type":       name + "_unhealthy",
			"response_time_ms": responseTime.Milliseconds(),
			"error_message":    err.Error(),
		})
		return false
	}

	checks[name] = map[string]any{
		"status":        "healthy",
		"response_time": responseTime.String(),
	}

	logger.Debug().
		Dur("response_time", responseTime).
		Msgf("%s health check passed", name)
	return true
}

func (h *HealthHandler) recordHealthEvent(params map[string]any) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	params["operation"] = "health_check"
	app.RecordCustomEvent("HealthCheckError", params)
}
