// Package store provides database access for all newsroom entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
// Mutations validate their input up front and report failures through
// the sentinel errors below so callers can tell a business-rule
// violation apart from a storage outage without ever seeing a panic.
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrValidation marks input that failed a required-field, length or
	// value check before any mutation happened.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks uniqueness violations (duplicate email, duplicate
	// tag name) and referential conflicts (deleting an entity that is
	// still referenced, linking to an entity that does not exist).
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks mutations that targeted a missing record.
	// Lookups return nil instead.
	ErrNotFound = errors.New("not found")
)

// Postgres error codes, per the SQLSTATE standard.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// invalid wraps a validation message in ErrValidation.
func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// conflict wraps a conflict message in ErrConflict.
func conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// wrapPg converts constraint violations reported by Postgres into
// ErrConflict and leaves every other error as an internal storage error.
func wrapPg(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrConflict, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
