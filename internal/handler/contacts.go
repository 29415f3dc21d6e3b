package handler

import (
	"net/http"

	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/service"
	"github.com/labstack/echo/v4"
)

type ContactHandler struct {
	Handler
	contacts *service.ContactService
}

func NewContactHandler(s *server.Server, contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{
		Handler:  NewHandler(s),
		contacts: contacts,
	}
}

// SubmitContact handles POST /api/v1/contacts.
func (h *ContactHandler) SubmitContact() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ContactRequest) (*model.Contact, error) {
		return h.contacts.Submit(c.Request().Context(), req), nil
	}, http.StatusAccepted)
}
