package repo

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
)

const uniqueViolation = "23505"

// mapError converts driver errors into domain errors. Anything unexpected is
// wrapped in a StorageError tagged with op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrConflict
	}
	return &domain.StorageError{Op: op, Err: err}
}
