package validation

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/deppfellow/go-modelstate/internal/errs"
	"github.com/labstack/echo/v4"
)

// ServicesKey is the echo context key holding the request's ServiceProvider.
// The context enhancer middleware sets it.
const ServicesKey = "validation_services"

// ServicesFromContext returns the ServiceProvider stored under ServicesKey, or nil.
func ServicesFromContext(c echo.Context) ServiceProvider {
	if provider, ok := c.Get(ServicesKey).(ServiceProvider); ok {
		return provider
	}
	return nil
}

// BindAndValidate binds request data into payload and validates it with the
// default engine. See Engine.BindAndValidate.
func BindAndValidate(c echo.Context, payload Validatable) error {
	return defaultEngine.BindAndValidate(c, payload)
}

// BindAndValidateAsync binds request data into payload and validates it with
// the default engine. See Engine.BindAndValidateAsync.
func BindAndValidateAsync(c echo.Context, payload AsyncValidatable) error {
	return defaultEngine.BindAndValidateAsync(c, payload)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the struct from body/params (payload must be a pointer).
//  2. ValidateAndCollect fills a ModelState.
//  3. An invalid payload becomes *errs.HTTPError (400) carrying the ModelState entries.
//
// Engine faults are returned wrapped, and end up as a 500 in the global error handler.
func (e *Engine) BindAndValidate(c echo.Context, payload Validatable) error {
	if err := bind(c, payload); err != nil {
		return err
	}

	modelState := errs.NewModelState()
	vc := NewContext(payload, ServicesFromContext(c), nil)

	isValid, err := e.ValidateAndCollect(payload, vc, modelState)
	if err != nil {
		return fmt.Errorf("validating request: %w", err)
	}

	return invalidRequest(isValid, modelState)
}

// BindAndValidateAsync is BindAndValidate for AsyncValidatable payloads. The
// request context is passed to I/O-bound rules; the handler waits for the result.
func (e *Engine) BindAndValidateAsync(c echo.Context, payload AsyncValidatable) error {
	if err := bind(c, payload); err != nil {
		return err
	}

	modelState := errs.NewModelState()
	vc := NewContext(payload, ServicesFromContext(c), nil)

	isValid, err := e.ValidateAndCollectAsync(c.Request().Context(), payload, vc, modelState).Await()
	if err != nil {
		return fmt.Errorf("validating request: %w", err)
	}

	return invalidRequest(isValid, modelState)
}

func bind(c echo.Context, payload any) error {
	err := c.Bind(payload)
	if err == nil {
		return nil
	}

	// Echo reports malformed JSON and type mismatches as *echo.HTTPError.
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := http.StatusText(http.StatusBadRequest)
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
		return errs.NewBadRequestError(message, false, nil, nil, nil)
	}

	return errs.NewBadRequestError(err.Error(), false, nil, nil, nil)
}

func invalidRequest(isValid bool, modelState *errs.ModelState) error {
	// Decided by the engine flag: a composite without leaves is invalid with an empty sink.
	if isValid {
		return nil
	}
	return errs.NewValidationError(modelState)
}
