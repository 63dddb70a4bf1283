// Package core converts raw CSV cell text into typed values.
//
// The package has no I/O and no UI dependencies. It is used by the HTTP
// server, the CLI and the Postgres sink without modification.
//
// # Columns and kinds
//
// A [Column] binds a name to a [Kind]. The set of kinds is closed:
//
//   - KindText: identity (the default)
//   - KindUUID: fixed-format identifiers
//   - KindBytes: base64 blobs
//   - KindInt32, KindInt64: style-aware integers
//   - KindFloat32, KindFloat64: style-aware floats
//   - KindDecimal: style-aware decimals
//   - KindDateTime: locale-aware date-times
//
// # Conversion
//
// [Column.TryConvert] is the canonical operation:
//
//	col := core.NewColumn("amount", core.KindInt64)
//	v, ok, err := col.TryConvert("1,234", core.StyleNumber, core.Invariant())
//	// v == core.ValueInt64{Val: 1234}, ok == true, err == nil
//
// A cell that does not parse yields the kind's zero value and ok=false. The
// error result is only set for caller mistakes, such as converting a numeric
// kind without a [FormatContext]; those wrap [ErrContract].
//
// Text columns always report ok=false even though the value is the raw text
// unchanged. Callers must read the value, not the flag, for text columns.
//
// # Rows
//
// [Schema] groups columns and binds them to a CSV header, and [RowConverter]
// converts whole records, collecting a [CellError] for each failed cell.
// Schemas, format contexts and row converters are read-only once built and
// can be shared between goroutines; [RowConverter.ConvertAll] fans records
// out over a bounded set of workers.
package core
