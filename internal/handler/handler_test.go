package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/deppfellow/go-modelstate/internal/errs"
	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/repository"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/service"
	"github.com/deppfellow/go-modelstate/internal/validation"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *server.Server {
	t.Helper()

	logger := zerolog.Nop()
	engine := validation.NewEngine()
	require.NoError(t, model.RegisterRules(engine))

	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:    &logger,
		Validator: engine,
	}
}

func newContext(s *server.Server, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.Set(validation.ServicesKey, validation.ServiceProvider(s))
	return c, rec
}

func requireValidationError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

const validContactBody = `{
	"name": "Grace Hopper",
	"email": "grace@example.com",
	"preferredMethod": "email",
	"subject": "Compilers",
	"message": "Let's talk."
}`

func TestSubmitContact_Accepted(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	h := NewContactHandler(s, service.NewContactService(s, nil))
	c, rec := newContext(s, validContactBody)

	require.NoError(t, h.SubmitContact()(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var contact model.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contact))
	assert.True(t, strings.HasPrefix(contact.Reference, "CT-"))
	assert.Equal(t, "Grace Hopper", contact.Request.Name)
}

func TestSubmitContact_Invalid(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	h := NewContactHandler(s, service.NewContactService(s, nil))
	c, rec := newContext(s, `{"name": "Grace", "email": "grace@example.com", "preferredMethod": "phone", "subject": "Hi", "message": "hi"}`)

	httpErr := requireValidationError(t, h.SubmitContact()(c))
	assert.Equal(t, errs.ValidationFailedMessage, httpErr.Message)
	assert.Equal(t, []errs.FieldError{
		{Field: "phone", Error: "phone is required when preferredMethod is phone"},
		{Field: "", Error: "phone is required when preferredMethod is phone"},
		{Field: "", Error: "subject and message must not be identical"},
	}, httpErr.Errors)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestSubmitContact_FreshRequestPerCall(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	h := NewContactHandler(s, service.NewContactService(s, nil)).SubmitContact()

	c, _ := newContext(s, `{"name": "Grace", "email": "grace@example.com", "phone": "+15555550100", "preferredMethod": "phone", "subject": "a", "message": "b"}`)
	require.NoError(t, h(c))

	// Phone from the first body must not leak into the second request.
	c, _ = newContext(s, `{"name": "Grace", "email": "grace@example.com", "preferredMethod": "phone", "subject": "a", "message": "b"}`)
	httpErr := requireValidationError(t, h(c))
	assert.Equal(t, "phone", httpErr.Errors[0].Field)
}

type memoryAccounts struct {
	emails  map[string]bool
	created []*model.Account
}

func (m *memoryAccounts) EmailExists(_ context.Context, email string) (bool, error) {
	return m.emails[email], nil
}

func (m *memoryAccounts) Create(_ context.Context, account *model.Account) error {
	m.created = append(m.created, account)
	return nil
}

func (m *memoryAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	for _, account := range m.created {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, fmt.Errorf("table:accounts: %w", pgx.ErrNoRows)
}

type memoryReserved map[string]bool

func (m memoryReserved) IsReserved(_ context.Context, handle string) (bool, error) {
	return m[handle], nil
}

func newAccountHandler(t *testing.T, accounts *memoryAccounts) (*server.Server, *AccountHandler) {
	t.Helper()

	s := testServer(t)
	s.Provide(model.AccountsServiceName, accounts)
	s.Provide(model.ReservedHandlesServiceName, memoryReserved{"admin": true})

	return s, NewAccountHandler(s, service.NewAccountService(s, accounts))
}

func TestCreateAccount_Created(t *testing.T) {
	t.Parallel()

	accounts := &memoryAccounts{}
	s, h := newAccountHandler(t, accounts)
	c, rec := newContext(s, `{"email": "ada@example.com", "handle": "ada", "displayName": "Ada"}`)

	require.NoError(t, h.CreateAccount()(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, accounts.created, 1)
	assert.Equal(t, "ada", accounts.created[0].Handle)
}

func TestCreateAccount_ValidationFailures(t *testing.T) {
	t.Parallel()

	accounts := &memoryAccounts{emails: map[string]bool{"ada@example.com": true}}
	s, h := newAccountHandler(t, accounts)

	c, _ := newContext(s, `{"email": "ada@example.com", "handle": "ada", "displayName": "Ada"}`)
	httpErr := requireValidationError(t, h.CreateAccount()(c))
	assert.Equal(t, "email", httpErr.Errors[0].Field)
	assert.Equal(t, "email is already registered", httpErr.Errors[0].Error)

	c, _ = newContext(s, `{"email": "grace@example.com", "handle": "admin", "displayName": "Grace"}`)
	httpErr = requireValidationError(t, h.CreateAccount()(c))
	assert.Equal(t, []errs.FieldError{
		{Field: "handle", Error: "handle is reserved"},
		{Field: "", Error: "handle is reserved"},
	}, httpErr.Errors)

	assert.Empty(t, accounts.created)
}

func TestCreateAccount_MalformedBody(t *testing.T) {
	t.Parallel()

	s, h := newAccountHandler(t, &memoryAccounts{})
	c, _ := newContext(s, `{"email": `)

	httpErr := requireValidationError(t, h.CreateAccount()(c))
	assert.Empty(t, httpErr.Errors)
}

func TestCreateAccount_MissingServiceIsFault(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	h := NewAccountHandler(s, service.NewAccountService(s, &memoryAccounts{}))
	c, _ := newContext(s, `{"email": "ada@example.com", "handle": "ada", "displayName": "Ada"}`)

	err := h.CreateAccount()(c)
	require.Error(t, err)

	var httpErr *errs.HTTPError
	assert.False(t, errors.As(err, &httpErr))
	assert.ErrorIs(t, err, model.ErrHandleReserverMissing)
}

// noRows is a database where every lookup comes back empty.
type noRows struct{}

func (noRows) QueryRow(context.Context, string, ...any) pgx.Row { return noRowsRow{} }

type noRowsRow struct{}

func (noRowsRow) Scan(...any) error { return pgx.ErrNoRows }

// serveAccount runs GET /api/v1/accounts/:id through the router's error handler.
func serveAccount(t *testing.T, h *AccountHandler, s *server.Server, id string) (*httptest.ResponseRecorder, errs.HTTPError) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	e.GET("/api/v1/accounts/:id", h.GetAccount())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id, nil))

	var body errs.HTTPError
	if rec.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestGetAccount_Found(t *testing.T) {
	t.Parallel()

	account := &model.Account{ID: uuid.New(), Email: "ada@example.com", Handle: "ada", DisplayName: "Ada"}
	s, h := newAccountHandler(t, &memoryAccounts{created: []*model.Account{account}})

	rec, _ := serveAccount(t, h, s, account.ID.String())

	assert.Equal(t, http.StatusOK, rec.Code)
	var got model.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, "ada", got.Handle)
}

func TestGetAccount_NotFound(t *testing.T) {
	t.Parallel()

	s := testServer(t)
	h := NewAccountHandler(s, service.NewAccountService(s, repository.NewAccountRepository(noRows{})))

	rec, body := serveAccount(t, h, s, uuid.NewString())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "Account not found", body.Message)
	assert.True(t, body.Override)
	assert.Empty(t, body.Errors)
}

func TestGetAccount_InvalidID(t *testing.T) {
	t.Parallel()

	s, h := newAccountHandler(t, &memoryAccounts{})

	rec, body := serveAccount(t, h, s, "42")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []errs.FieldError{
		{Field: "id", Error: "id must be a valid UUID"},
		{Field: "", Error: "id must be a valid UUID"},
	}, body.Errors)
}

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := testServer(t)
	s.Redis = client
	s.Config.Observability.HealthChecks.Checks = []string{"redis"}
	h := NewHealthHandler(s)

	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, h.CheckHealth(e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":{"response_time"`)

	mr.Close()

	rec = httptest.NewRecorder()
	require.NoError(t, h.CheckHealth(e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	first := newRequest[*model.ContactRequest]()
	second := newRequest[*model.ContactRequest]()

	require.NotNil(t, first)
	assert.NotSame(t, first, second)
	assert.Equal(t, model.ContactRequest{}, newRequest[model.ContactRequest]())
}
