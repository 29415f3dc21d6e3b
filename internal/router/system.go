package router

import (
	"github.com/deppfellow/go-modelstate/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the API itself.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
}
