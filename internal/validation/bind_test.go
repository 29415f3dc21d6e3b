package validation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-modelstate/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactPayload struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (p *contactPayload) Validate(*Context) []ValidationResult {
	if p.Subject != "" && p.Subject == p.Message {
		return []ValidationResult{NewResult("subject and message must differ")}
	}
	return nil
}

type blockedPayload struct {
	Email string `json:"email" validate:"required"`
}

func (p *blockedPayload) ValidateAsync(ctx context.Context, vc *Context) ([]ValidationResult, error) {
	blocked, ok := GetService[map[string]bool](vc, "blocked")
	if !ok {
		return nil, errors.New("blocked list not available")
	}
	if blocked[p.Email] {
		return []ValidationResult{NewResult("email is blocked", "email")}, nil
	}
	return nil, ctx.Err()
}

func newJSONContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate_Valid(t *testing.T) {
	t.Parallel()

	c := newJSONContext(`{"name":"Ada","email":"ada@example.com","subject":"hi","message":"hello"}`)
	payload := &contactPayload{}

	require.NoError(t, NewEngine().BindAndValidate(c, payload))
	assert.Equal(t, "Ada", payload.Name)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	t.Parallel()

	c := newJSONContext(`{"name":"","email":"ada@example.com"}`)

	err := NewEngine().BindAndValidate(c, &contactPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, errs.ValidationFailedMessage, httpErr.Message)
	assert.Equal(t, []errs.FieldError{
		{Field: "name", Error: "name is required"},
		{Field: "", Error: "name is required"},
	}, httpErr.Errors)
}

func TestBindAndValidate_ModelLevelError(t *testing.T) {
	t.Parallel()

	c := newJSONContext(`{"name":"Ada","email":"ada@example.com","subject":"same","message":"same"}`)

	err := BindAndValidate(c, &contactPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []errs.FieldError{{Field: "", Error: "subject and message must differ"}}, httpErr.Errors)
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	t.Parallel()

	c := newJSONContext(`{"name":`)

	err := NewEngine().BindAndValidate(c, &contactPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidateAsync_UsesServicesFromContext(t *testing.T) {
	t.Parallel()

	services := NewServices()
	services.Provide("blocked", map[string]bool{"spam@example.com": true})

	c := newJSONContext(`{"email":"spam@example.com"}`)
	c.Set(ServicesKey, services)

	err := NewEngine().BindAndValidateAsync(c, &blockedPayload{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []errs.FieldError{
		{Field: "email", Error: "email is blocked"},
		{Field: "", Error: "email is blocked"},
	}, httpErr.Errors)

	c = newJSONContext(`{"email":"ada@example.com"}`)
	c.Set(ServicesKey, services)
	require.NoError(t, BindAndValidateAsync(c, &blockedPayload{}))
}

func TestBindAndValidateAsync_EngineFaultIsNotValidationError(t *testing.T) {
	t.Parallel()

	c := newJSONContext(`{"email":"ada@example.com"}`)

	err := NewEngine().BindAndValidateAsync(c, &blockedPayload{})

	require.Error(t, err)
	var httpErr *errs.HTTPError
	assert.False(t, errors.As(err, &httpErr))
	assert.Contains(t, err.Error(), "blocked list not available")
}
