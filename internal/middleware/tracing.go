package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/go-modelstate/internal/server"
)

// TracingMiddleware owns New Relic related Echo middleware.
//
// It needs:
//   - server: for shared deps (logger/config)
//   - nrApp: the New Relic application instance (nil if New Relic disabled)
//
// This middleware has two layers:
//  1. NewRelicMiddleware()     -> installs New Relic transaction handling into Echo
//  2. EnhanceTracing()         -> adds custom attributes and notices errors
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the New Relic Echo middleware.
//
// What it does:
//   - If nrApp is nil, return a no-op middleware (passes request through unchanged).
//   - If nrApp exists, return nrecho.Middleware(tm.nrApp) which starts a
//     transaction for each request and stores it into the request context.
//
// This middleware is what makes newrelic.FromContext(...) work later, both in
// EnhanceTracing and in the request-scoped logger of EnhanceContext.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to New Relic transactions.
//
// This middleware assumes NewRelicMiddleware() already ran earlier
// so that a transaction exists in request context.
//
// What it adds:
//   - client IP and user agent
//   - request id (if available)
//   - the number of field errors of a rejected request
//   - response status code (after handler)
//
// Client errors, validation failures included, are recorded as attributes
// only. Everything else is noticed through nrpkgerrors.Wrap so the trace
// keeps the stack.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Nil when New Relic is disabled or the middleware order is wrong.
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			// NOTE: user agent can be huge and high-cardinality.
			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())

			// Correlates New Relic traces with log lines.
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// The error is still returned so the global error handler writes
			// the response.
			if err != nil {
				if fieldErrors, ok := clientFailure(err); ok {
					txn.AddAttribute("validation.field_errors", fieldErrors)
				} else {
					txn.NoticeError(nrpkgerrors.Wrap(err))
				}
			}

			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}

// clientFailure reports whether err reaches the client as a 4xx, and how
// many field errors it carries. Wrapped errors are normalized the same way
// GlobalErrorHandler does.
func clientFailure(err error) (int, bool) {
	httpErr := toHTTPError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		return 0, false
	}
	return len(httpErr.Errors), true
}
