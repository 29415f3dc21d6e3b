package middleware

import (
	"net/http"

	"github.com/deppfellow/go-modelstate/internal/errs"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware applied to every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  global.server.Config.Server.CORSAllowedOrigins,
		ExposeHeaders: []string{RequestIDHeader},
	})
}

// RequestLogger writes one "API" log line per request, leveled by status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status

			// The error handler writes the response after this runs.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				status = toHTTPError(v.Error).Status
			}

			eventFor(GetLogger(c), status).
				Err(v.Error).
				Dur("latency", v.Latency).
				Int("status", status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler writes every error returned by a handler in the
// errs.HTTPError JSON shape. Validation failures carry their model state
// in "errors".
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	event := eventFor(GetLogger(c), httpErr.Status)
	if httpErr.Status >= http.StatusInternalServerError {
		event = event.Stack()
	}

	event.
		Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Int("field_errors", len(httpErr.Errors)).
		Msg(httpErr.Message)

	if !c.Response().Committed {
		_ = c.JSON(httpErr.Status, httpErr)
	}
}

// toHTTPError normalizes err:
//   - *errs.HTTPError is kept, validation failures included.
//   - echo's 404 becomes "Route not found", other echo errors keep their status.
//   - anything else goes through sqlerr.HandleError, which maps database
//     errors and falls back to a 500.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundError("Route not found", false, nil)
		}

		message, ok := echoErr.Message.(string)
		if !ok {
			message = http.StatusText(echoErr.Code)
		}

		return &errs.HTTPError{
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
			Message: message,
			Status:  echoErr.Code,
		}
	}

	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}

func eventFor(logger *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return logger.Error()
	case status >= http.StatusBadRequest:
		return logger.Warn()
	default:
		return logger.Info()
	}
}
