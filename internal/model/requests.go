package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Names under which the repositories are provided to validation rules.
const (
	AccountsServiceName        = "accounts"
	ReservedHandlesServiceName = "reserved_handles"
)

const (
	// UnreservedHandleTag is the tag of the rule rejecting reserved handles.
	UnreservedHandleTag = "unreserved_handle"

	// AccountHandleTag bundles every rule an account handle must pass.
	AccountHandleTag = "account_handle"
)

// EmailChecker looks up whether an email is already registered.
type EmailChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// HandleReserver reports whether a handle is reserved.
type HandleReserver interface {
	IsReserved(ctx context.Context, handle string) (bool, error)
}

var (
	ErrEmailCheckerMissing   = errors.New("accounts service not provided")
	ErrHandleReserverMissing = errors.New("reserved handles service not provided")
)

// RegisterRules registers the rules and aliases the request types rely on.
func RegisterRules(engine *validation.Engine) error {
	if err := engine.RegisterRule(UnreservedHandleTag, "is reserved", unreservedHandle); err != nil {
		return err
	}

	engine.Validator().RegisterAlias(AccountHandleTag, "required,min=3,max=32,alphanum,"+UnreservedHandleTag)
	return nil
}

func unreservedHandle(ctx context.Context, vc *validation.Context, fl validator.FieldLevel) (bool, error) {
	handle := fl.Field().String()
	if handle == "" {
		return true, nil
	}

	reserver, ok := validation.GetService[HandleReserver](vc, ReservedHandlesServiceName)
	if !ok {
		return false, ErrHandleReserverMissing
	}

	reserved, err := reserver.IsReserved(ctx, handle)
	if err != nil {
		middleware.LoggerFromContext(ctx).Error().
			Err(err).
			Str("rule", UnreservedHandleTag).
			Str("handle", handle).
			Msg("reserved handle lookup failed")
		return false, err
	}
	return !reserved, nil
}

// CreateAccountRequest is the payload of POST /api/v1/accounts.
type CreateAccountRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Handle      string `json:"handle" validate:"account_handle"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
}

// ValidateAsync checks that the email is not registered yet. It only runs
// once the tag rules passed, so Email is well formed.
func (r *CreateAccountRequest) ValidateAsync(ctx context.Context, vc *validation.Context) ([]validation.ValidationResult, error) {
	checker, ok := validation.GetService[EmailChecker](vc, AccountsServiceName)
	if !ok {
		return nil, ErrEmailCheckerMissing
	}

	exists, err := checker.EmailExists(ctx, r.Email)
	if err != nil {
		return nil, err
	}

	var results []validation.ValidationResult

	if exists {
		results = append(results, validation.NewResult("email is already registered", "email"))
	}

	if strings.EqualFold(r.DisplayName, r.Email) {
		results = append(results, validation.NewResult("displayName must not be your email address", "displayName"))
	}

	return results, nil
}

// ToAccount builds the account to store.
func (r *CreateAccountRequest) ToAccount() *Account {
	return &Account{
		Email:       strings.TrimSpace(r.Email),
		Handle:      r.Handle,
		DisplayName: strings.TrimSpace(r.DisplayName),
	}
}

// GetAccountRequest is the path of GET /api/v1/accounts/:id.
type GetAccountRequest struct {
	ID string `param:"id" json:"id" validate:"required,uuid"`
}

// Validate has nothing to add to the tag rules.
func (r *GetAccountRequest) Validate(*validation.Context) []validation.ValidationResult {
	return nil
}

// AccountID returns the validated ID.
func (r *GetAccountRequest) AccountID() (uuid.UUID, error) {
	return uuid.Parse(r.ID)
}

// ContactMethod is how a contact prefers to be reached.
type ContactMethod string

const (
	ContactMethodEmail ContactMethod = "email"
	ContactMethodPhone ContactMethod = "phone"
)

// Address is a postal address nested in ContactRequest.
type Address struct {
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
}

// ContactRequest is the payload of POST /api/v1/contacts.
type ContactRequest struct {
	Name            string        `json:"name" validate:"required,max=100"`
	Email           string        `json:"email" validate:"required,email"`
	Phone           string        `json:"phone" validate:"omitempty,e164"`
	PreferredMethod ContactMethod `json:"preferredMethod" validate:"required,oneof=email phone"`
	Subject         string        `json:"subject" validate:"required,max=150"`
	Message         string        `json:"message" validate:"required,max=5000"`
	Address         *Address      `json:"address" validate:"omitempty"`
}

// Validate holds the cross-field rules:
//   - a phone number is required when phone is the preferred method
//   - subject and message must differ; this one applies to the whole
//     request and is reported without a field
func (r *ContactRequest) Validate(*validation.Context) []validation.ValidationResult {
	var results []validation.ValidationResult

	if r.PreferredMethod == ContactMethodPhone && r.Phone == "" {
		results = append(results, validation.NewResult(
			"phone is required when preferredMethod is phone", "phone", "preferredMethod"))
	}

	if strings.EqualFold(strings.TrimSpace(r.Subject), strings.TrimSpace(r.Message)) {
		results = append(results, validation.NewResult("subject and message must not be identical"))
	}

	return results
}

// Contact is the accepted contact request returned to the client.
type Contact struct {
	Reference string         `json:"reference"`
	Request   ContactRequest `json:"request"`
}

// NewContact assigns reference to an accepted request.
func NewContact(reference string, r *ContactRequest) *Contact {
	return &Contact{Reference: fmt.Sprintf("CT-%s", reference), Request: *r}
}
