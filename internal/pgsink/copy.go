// Package pgsink copies converted rows into Postgres with the COPY protocol.
package pgsink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidTable is returned for table names that are not plain
// identifiers, optionally schema-qualified.
var ErrInvalidTable = errors.New("invalid table name")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Copier is the part of *pgxpool.Pool and *pgx.Conn the sink needs.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Sink writes rows to Postgres.
type Sink struct {
	db Copier
}

// New returns a Sink that copies through db.
func New(db Copier) *Sink {
	return &Sink{db: db}
}

// ParseTable splits "schema.table" or "table" into an identifier.
func ParseTable(name string) (pgx.Identifier, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	for _, p := range parts {
		if !identPattern.MatchString(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTable, name)
		}
	}
	return pgx.Identifier(parts), nil
}

// Copy streams rows into table. Columns are named after the schema's
// columns, lowercased. Failed cells are written as NULL; callers that want
// to drop invalid rows filter them first.
func (s *Sink) Copy(ctx context.Context, table string, schema *core.Schema, rows []core.Row) (int64, error) {
	ident, err := ParseTable(table)
	if err != nil {
		return 0, err
	}

	cols := schema.Columns()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = strings.ToLower(col.Name)
	}

	logger := logging.WithFields(ctx, "table", ident.Sanitize(), "columns", len(names))
	logger.Debug("copy started", "rows", len(rows))

	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		row := rows[i]
		if len(row.Cells) != len(names) {
			return nil, fmt.Errorf("line %d: %d cells for %d columns", row.Line, len(row.Cells), len(names))
		}
		values := make([]any, len(row.Cells))
		for j, cell := range row.Cells {
			values[j] = ToPg(cell)
		}
		return values, nil
	})

	n, err := s.db.CopyFrom(ctx, ident, names, src)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			logger.Error("copy failed", "sqlstate", pgErr.Code, "detail", pgErr.Detail, "error", pgErr.Message)
		}
		return n, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
	}

	logger.Info("copy completed", "rows", n)
	return n, nil
}
