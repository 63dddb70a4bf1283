package pgsink

import (
	"errors"
	"slices"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsSQLStateError reports whether err carries one of the given SQLSTATE codes.
func IsSQLStateError(err error, sqlStates ...string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && slices.Contains(sqlStates, pgErr.Code)
}

// IsMissingTarget reports whether the target table or one of its columns
// does not exist.
func IsMissingTarget(err error) bool {
	return IsSQLStateError(err, pgerrcode.UndefinedTable, pgerrcode.UndefinedColumn, pgerrcode.InvalidSchemaName)
}

// IsRejectedData reports whether Postgres refused the copied values, for
// example a NULL in a NOT NULL column or a value too long for its type.
func IsRejectedData(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsDataException(pgErr.Code) || pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
}
