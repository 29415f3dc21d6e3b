// Package model holds the domain types and the request payloads the API
// accepts, together with their validation rules.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered account as stored in the accounts table.
type Account struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}
