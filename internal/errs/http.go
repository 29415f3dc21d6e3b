package errs

import (
	"net/http"
)

// ValidationFailedMessage is the top level message of validation errors.
const ValidationFailedMessage = "Validation failed"

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code overrides the default "BAD_REQUEST" when not nil; errors carries
// field-level errors and action an optional client instruction.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	// A custom code is used as given.
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a 500 HTTPError with the generic status
// text; the real cause only goes to the logs.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// NewValidationError converts a populated ModelState into a 400 response
// listing every entry, unkeyed ones with an empty field.
//
//	return errs.NewValidationError(modelState)
func NewValidationError(ms *ModelState) *HTTPError {
	return NewBadRequestError(ValidationFailedMessage, true, nil, ms.FieldErrors(), nil)
}
