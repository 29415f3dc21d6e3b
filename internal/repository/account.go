package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of *pgxpool.Pool (and pgx.Tx) the repositories use.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const emailExistsQuery = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`

// EmailExists reports whether an account already uses email. Emails are
// stored lowercased, so the lookup is case-insensitive.
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := r.db.QueryRow(ctx, emailExistsQuery, strings.ToLower(email)).Scan(&exists)
	if err != nil {
		middleware.LoggerFromContext(ctx).Error().
			Err(err).
			Str("operation", "accounts.email_exists").
			Msg("account lookup failed")
		return false, fmt.Errorf("checking email: %w", err)
	}
	return exists, nil
}

const createAccountQuery = `
INSERT INTO accounts (id, email, handle, display_name)
VALUES ($1, $2, $3, $4)
RETURNING created_at`

// Create inserts account. A missing ID is generated. Email and handle are
// lowercased before storing.
//
// A concurrent insert with the same email surfaces as a unique violation,
// which sqlerr turns into a validation error on "email".
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = strings.ToLower(account.Email)
	account.Handle = strings.ToLower(account.Handle)

	err := r.db.QueryRow(ctx, createAccountQuery,
		account.ID,
		account.Email,
		account.Handle,
		account.DisplayName,
	).Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

const getAccountQuery = `
SELECT id, email, handle, display_name, created_at
FROM accounts
WHERE id = $1`

// GetByID returns the account with id. A missing row is reported as
// pgx.ErrNoRows wrapped with the table name, which sqlerr turns into a 404.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account

	err := r.db.QueryRow(ctx, getAccountQuery, id).Scan(
		&account.ID,
		&account.Email,
		&account.Handle,
		&account.DisplayName,
		&account.CreatedAt,
	)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			middleware.LoggerFromContext(ctx).Error().
				Err(err).
				Str("operation", "accounts.get_by_id").
				Str("account_id", id.String()).
				Msg("account lookup failed")
		}
		return nil, fmt.Errorf("table:accounts: %w", err)
	}
	return &account, nil
}
