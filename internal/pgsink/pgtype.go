package pgsink

import (
	"strings"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPg maps a converted cell to the value pgx encodes for COPY.
//
// Failed cells become SQL NULL. Text cells are kept as-is and are NULL only
// when blank, since the converter never reports success for text.
func ToPg(cell core.Cell) any {
	if cell.Kind == core.KindText || !cell.Kind.Supported() {
		raw := cell.Raw
		if v, ok := cell.Value.(core.ValueText); ok {
			raw = v.Val
		}
		return pgtype.Text{String: raw, Valid: strings.TrimSpace(raw) != ""}
	}

	switch v := cell.Value.(type) {
	case core.ValueUUID:
		return pgtype.UUID{Bytes: v.Val, Valid: cell.OK}
	case core.ValueBytes:
		if !cell.OK {
			return []byte(nil)
		}
		return v.Val
	case core.ValueInt32:
		return pgtype.Int4{Int32: v.Val, Valid: cell.OK}
	case core.ValueInt64:
		return pgtype.Int8{Int64: v.Val, Valid: cell.OK}
	case core.ValueFloat32:
		return pgtype.Float4{Float32: v.Val, Valid: cell.OK}
	case core.ValueFloat64:
		return pgtype.Float8{Float64: v.Val, Valid: cell.OK}
	case core.ValueDecimal:
		var n pgtype.Numeric
		if !cell.OK {
			return n
		}
		if err := n.Scan(v.Val.String()); err != nil {
			return pgtype.Numeric{}
		}
		return n
	case core.ValueDateTime:
		return pgtype.Timestamptz{Time: v.Val, Valid: cell.OK}
	default:
		return nil
	}
}

// PgType returns the Postgres column type that holds a kind's values.
func PgType(kind core.Kind) string {
	switch kind {
	case core.KindUUID:
		return "uuid"
	case core.KindBytes:
		return "bytea"
	case core.KindInt32:
		return "integer"
	case core.KindInt64:
		return "bigint"
	case core.KindFloat32:
		return "real"
	case core.KindFloat64:
		return "double precision"
	case core.KindDecimal:
		return "numeric"
	case core.KindDateTime:
		return "timestamptz"
	default:
		return "text"
	}
}
