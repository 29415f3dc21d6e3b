package handler

import (
	"reflect"
	"time"

	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint that receives a bound and validated
// request. Req is a pointer type so it can be bound into.
type HandlerFunc[Req any, Res any] func(c echo.Context, req Req) (Res, error)

// validateFunc binds and validates req; a returned error ends the request.
type validateFunc[Req any] func(c echo.Context, req Req) error

// requestSpan times the phases of one request. The New Relic transaction
// is nil when APM is disabled.
type requestSpan struct {
	txn    *newrelic.Transaction
	logger zerolog.Logger
	start  time.Time
}

func (s *requestSpan) attr(key string, value any) {
	if s.txn != nil {
		s.txn.AddAttribute(key, value)
	}
}

// end records the outcome of the phase started at since and returns its duration.
func (s *requestSpan) end(phase string, since time.Time, status string) time.Duration {
	elapsed := time.Since(since)
	s.attr(phase+".status", status)
	s.attr(phase+".duration_ms", elapsed.Milliseconds())
	return elapsed
}

// handleRequest is the pipeline shared by every typed endpoint: bind and
// validate into a fresh request, run the handler, write the JSON response.
func handleRequest[Req any, Res any](
	c echo.Context,
	validate validateFunc[Req],
	handler HandlerFunc[Req, Res],
	status int,
) error {
	route := c.Path()
	span := &requestSpan{
		txn: newrelic.FromContext(c.Request().Context()),
		logger: middleware.GetLogger(c).With().
			Str("operation", "handler").
			Str("method", c.Request().Method).
			Str("route", route).
			Logger(),
		start: time.Now(),
	}
	span.attr("handler.name", route)
	span.logger.Info().Msg("handling request")

	req := newRequest[Req]()

	validationStart := time.Now()
	if err := validate(c, req); err != nil {
		elapsed := span.end("validation", validationStart, "failed")

		// Invalid input is a client problem; only engine faults are errors.
		event := span.logger.Warn()
		if !isClientError(err) {
			event = span.logger.Error()
		}
		event.Err(err).Dur("validation_duration", elapsed).Msg("request validation failed")

		return err
	}
	validationDuration := span.end("validation", validationStart, "success")

	handlerStart := time.Now()
	result, err := handler(c, req)
	if err != nil {
		elapsed := span.end("handler", handlerStart, "error")
		span.attr("total.duration_ms", time.Since(span.start).Milliseconds())
		if span.txn != nil {
			span.txn.NoticeError(nrpkgerrors.Wrap(err))
		}

		span.logger.Error().
			Err(err).
			Dur("handler_duration", elapsed).
			Dur("total_duration", time.Since(span.start)).
			Msg("handler execution failed")

		return err
	}
	handlerDuration := span.end("handler", handlerStart, "success")
	span.attr("total.duration_ms", time.Since(span.start).Milliseconds())

	span.logger.Info().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(span.start)).
		Int("status", status).
		Msg("request completed successfully")

	return c.JSON(status, result)
}

// Handle wraps a handler whose request validates synchronously.
//
//	router.POST("/contacts", handler.Handle(h, contacts.Submit, http.StatusAccepted))
func Handle[Req validation.Validatable, Res any](h Handler, handler HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) error {
			return h.server.Validator.BindAndValidate(c, req)
		}, handler, status)
	}
}

// HandleAsync wraps a handler whose request validation does I/O. The
// request waits for validation to finish before the handler runs.
func HandleAsync[Req validation.AsyncValidatable, Res any](h Handler, handler HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) error {
			return h.server.Validator.BindAndValidateAsync(c, req)
		}, handler, status)
	}
}

// newRequest allocates a fresh request for every call, so concurrent
// requests never bind into the same value.
func newRequest[Req any]() Req {
	t := reflect.TypeOf((*Req)(nil)).Elem()

	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(Req)
	}
	return reflect.New(t).Elem().Interface().(Req)
}
