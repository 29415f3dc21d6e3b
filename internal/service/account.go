package service

import (
	"context"

	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/google/uuid"
)

// AccountStore persists accounts.
type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

type AccountService struct {
	server *server.Server
	store  AccountStore
}

func NewAccountService(s *server.Server, store AccountStore) *AccountService {
	return &AccountService{server: s, store: store}
}

// Create stores a validated request. Store errors are returned as is; the
// global error handler maps database errors.
func (s *AccountService) Create(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	account := req.ToAccount()

	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.server.Logger.Info().
		Str("account_id", account.ID.String()).
		Str("handle", account.Handle).
		Msg("account created")

	return account, nil
}

// Get returns the account with id. A missing account is returned as the
// store reports it; the global error handler turns it into a 404.
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return s.store.GetByID(ctx, id)
}
