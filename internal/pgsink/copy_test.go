package pgsink

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCopier drains the copy source the way pgx does.
type fakeCopier struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
	err     error
}

func (f *fakeCopier) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	f.table = table
	f.columns = columns
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return int64(len(f.rows)), err
		}
		f.rows = append(f.rows, values)
	}
	if err := src.Err(); err != nil {
		return int64(len(f.rows)), err
	}
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.rows)), nil
}

func convertRows(t *testing.T, decl string, records ...[]string) (*core.Schema, []core.Row) {
	t.Helper()
	schema, err := core.ParseSchema(decl)
	require.NoError(t, err)
	rc, err := core.NewRowConverter(schema, schema.Positional(), core.StyleNumber, core.Invariant())
	require.NoError(t, err)

	rows := make([]core.Row, len(records))
	for i, rec := range records {
		rows[i] = rc.Convert(i+2, rec)
	}
	return schema, rows
}

func TestSink_Copy(t *testing.T) {
	schema, rows := convertRows(t, "ID:int64, Note",
		[]string{"1", "first"},
		[]string{"oops", ""},
	)

	db := &fakeCopier{}
	n, err := New(db).Copy(context.Background(), "staging.payments", schema, rows)
	require.NoError(t, err)

	assert.Equal(t, int64(2), n)
	assert.Equal(t, pgx.Identifier{"staging", "payments"}, db.table)
	assert.Equal(t, []string{"id", "note"}, db.columns)
	assert.Equal(t, []any{pgtype.Int8{Int64: 1, Valid: true}, pgtype.Text{String: "first", Valid: true}}, db.rows[0])
	assert.Equal(t, []any{pgtype.Int8{}, pgtype.Text{}}, db.rows[1])
}

func TestSink_Copy_InvalidTable(t *testing.T) {
	schema, rows := convertRows(t, "a", []string{"x"})

	for _, name := range []string{"", "a.b.c", "drop table;", "1abc", "a-b"} {
		_, err := New(&fakeCopier{}).Copy(context.Background(), name, schema, rows)
		assert.ErrorIs(t, err, ErrInvalidTable, name)
	}
}

func TestSink_Copy_DatabaseError(t *testing.T) {
	schema, rows := convertRows(t, "a:int32", []string{"1"})
	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "missing" does not exist`}

	_, err := New(&fakeCopier{err: pgErr}).Copy(context.Background(), "missing", schema, rows)
	require.Error(t, err)

	var got *pgconn.PgError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "42P01", got.Code)
	assert.Contains(t, err.Error(), `copy into "missing"`)
}

func TestParseTable(t *testing.T) {
	ident, err := ParseTable("payments")
	require.NoError(t, err)
	assert.Equal(t, pgx.Identifier{"payments"}, ident)

	ident, err = ParseTable("public.Payments_2024")
	require.NoError(t, err)
	assert.Equal(t, pgx.Identifier{"public", "Payments_2024"}, ident)
}
