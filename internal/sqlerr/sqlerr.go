// Package sqlerr handles database driver errors.
//
// It classifies Postgres errors reported by pgx and converts them into
// errs.HTTPError values with user-friendly messages (e.g. a unique
// violation on accounts.email becomes a validation error on "email").
package sqlerr
