package postgres

import (
	"errors"
	"fmt"

	"github.com/ihorkly/bookix/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// translateDBErr maps driver errors to repository-level errors. Serialization
// failures (40001) and deadlocks (40P01) get their own sentinel so callers can
// classify them as seat contention rather than infrastructure failure.
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case "23505": // unique_violation
			return repository.ErrConflict
		case "23503": // foreign_key_violation, e.g. seat upsert for an unknown showing
			return repository.ErrNotFound
		case "40001", "40P01":
			return repository.ErrSerialization
		}
	}

	return err
}

// wrapDBErr translates err and wraps it with the operation name.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s:%w", op, translateDBErr(err))
}
