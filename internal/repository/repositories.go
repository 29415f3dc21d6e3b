// Package repository handles all interactions with the data stores.
//
// It contains the raw SQL and Redis commands used to fetch and persist
// data, abstracting them away from the service and validation layers.
package repository

import (
	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Accounts        *AccountRepository
	ReservedHandles *ReservedHandleRepository
}

// NewRepositories builds the repositories on the server's stores and
// registers them as validation services, so request rules can query them.
func NewRepositories(s *server.Server) *Repositories {
	repos := &Repositories{
		Accounts:        NewAccountRepository(s.DB.Pool),
		ReservedHandles: NewReservedHandleRepository(s.Redis, s.Config.Validation.ReservedHandlesKey),
	}

	s.Provide(model.AccountsServiceName, repos.Accounts)
	s.Provide(model.ReservedHandlesServiceName, repos.ReservedHandles)

	return repos
}
