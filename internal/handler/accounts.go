package handler

import (
	"net/http"

	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/service"
	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	Handler
	accounts *service.AccountService
}

func NewAccountHandler(s *server.Server, accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{
		Handler:  NewHandler(s),
		accounts: accounts,
	}
}

// CreateAccount handles POST /api/v1/accounts. The email uniqueness and
// reserved handle checks run during validation.
func (h *AccountHandler) CreateAccount() echo.HandlerFunc {
	return HandleAsync(h.Handler, func(c echo.Context, req *model.CreateAccountRequest) (*model.Account, error) {
		return h.accounts.Create(c.Request().Context(), req)
	}, http.StatusCreated)
}

// GetAccount handles GET /api/v1/accounts/:id.
func (h *AccountHandler) GetAccount() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.GetAccountRequest) (*model.Account, error) {
		id, err := req.AccountID()
		if err != nil {
			return nil, err
		}
		return h.accounts.Get(c.Request().Context(), id)
	}, http.StatusOK)
}
