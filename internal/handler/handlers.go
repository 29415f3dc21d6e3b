// Package handler is the first layer after the router.
//
// It binds requests, validates them through the validation package and
// calls the appropriate service. It acts as the interface between the
// HTTP request and the core business logic.
package handler

import (
	"errors"
	"net/http"

	"github.com/deppfellow/go-modelstate/internal/errs"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/service"
)

// Handlers groups all HTTP handlers.
type Handlers struct {
	Health   *HealthHandler
	Accounts *AccountHandler
	Contacts *ContactHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		Accounts: NewAccountHandler(s, services.Accounts),
		Contacts: NewContactHandler(s, services.Contacts),
	}
}

func isClientError(err error) bool {
	var httpErr *errs.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status < http.StatusInternalServerError
}
