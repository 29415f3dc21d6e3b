package middleware

import (
	"context"

	"github.com/deppfellow/go-modelstate/internal/logger"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerKey is the echo context key of the request-scoped logger.
const LoggerKey = "logger"

type loggerCtxKey struct{}

// ContextEnhancer enriches every request with:
//   - a logger carrying request_id, method, path, ip and trace ids
//   - the server's validation services, so request validation rules can
//     resolve repositories
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			c.Set(LoggerKey, &contextLogger)
			c.Set(validation.ServicesKey, validation.ServiceProvider(ce.server))

			// Non-echo code (repositories, rules) only sees context.Context.
			c.SetRequest(c.Request().WithContext(WithLogger(c.Request().Context(), &contextLogger)))

			return next(c)
		}
	}
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}

// WithLogger returns a copy of ctx carrying logger for LoggerFromContext.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// LoggerFromContext returns the request-scoped logger stored by
// EnhanceContext, or a no-op logger.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerCtxKey{}).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
