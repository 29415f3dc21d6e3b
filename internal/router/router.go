// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/go-modelstate/internal/handler"
	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance.
//
// Middleware order matters: the request ID must exist before the context
// enhancer builds the request logger, and tracing must start before the
// enhancer reads the transaction.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerV1Routes(v1, h)

	return router
}

func registerV1Routes(g *echo.Group, h *handler.Handlers) {
	g.POST("/accounts", h.Accounts.CreateAccount())
	g.GET("/accounts/:id", h.Accounts.GetAccount())
	g.POST("/contacts", h.Contacts.SubmitContact())
}
