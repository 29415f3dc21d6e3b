package service

import (
	"github.com/deppfellow/go-modelstate/internal/repository"
	"github.com/deppfellow/go-modelstate/internal/server"
)

type Services struct {
	Accounts *AccountService
	Contacts *ContactService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	var enqueuer TaskEnqueuer
	if s.Job != nil {
		enqueuer = s.Job
	}

	return &Services{
		Accounts: NewAccountService(s, repos.Accounts),
		Contacts: NewContactService(s, enqueuer),
	}
}
