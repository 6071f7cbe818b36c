package database

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"libraryapi/internal/apperr"
)

// integrityClass is the SQLSTATE class of constraint violations.
const integrityClass = "23"

// PostgresError maps pgx errors onto the application taxonomy: no rows is
// ErrNotFound, a constraint violation is a persistence error, anything else
// is wrapped with the message.
func PostgresError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == integrityClass {
		return apperr.PersistenceErr(err, "%s: %s", fmt.Sprintf(format, args...), pgErr.ConstraintName)
	}
	return errors.Wrapf(err, format, args...)
}
