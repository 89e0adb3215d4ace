package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/assetledger/internal/domain"
)

// PostgreSQL error codes mapped to domain errors.
const (
	pgErrUniqueViolation  = "23505"
	pgErrNotNullViolation = "23502"
	pgErrCheckViolation   = "23514"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// storageError maps a database error to the domain error vocabulary.
// Constraint violations are input errors; everything else is transient.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrNotNullViolation, pgErrCheckViolation:
			return fmt.Errorf("%w: %s: %s", domain.ErrValidationFailed, op, pgErr.Message)
		}
	}

	return domain.StorageError(op, err)
}
