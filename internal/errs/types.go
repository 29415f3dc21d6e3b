package errs

import "strings"

// FieldError is one field-level error in an API response.
// An empty Field is a model-level error that applies to no single field.
//
//	{ "field": "email", "error": "email must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRedirect tells the client it should redirect somewhere.
	// Value holds the URL or route.
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional "what to do next" instruction for the client.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type handlers return for client-visible failures.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: lets the frontend show Message as-is.
//   - Errors: per-field errors, e.g. from a ModelState.
//   - Action: client instruction (optional).
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError, regardless of code or status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
// Used to derive stable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
