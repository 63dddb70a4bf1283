package core

// row.go assembles converted cells into rows.
//
// The column converter works one cell at a time; RowConverter applies it to
// whole records using a Schema and a Binding, and collects a CellError for
// every non-text cell that failed to parse. What to do with a failed row
// (skip it, keep the defaults, report it) is left to the caller.

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Cell is the outcome of converting one field of a record.
type Cell struct {
	Column string
	Kind   Kind
	Raw    string
	Value  Value
	OK     bool
}

// Row is a converted record.
type Row struct {
	Line   int
	Cells  []Cell
	Errors []*CellError
}

// Valid reports whether every non-text cell parsed.
func (r Row) Valid() bool {
	return len(r.Errors) == 0
}

// Record pairs a raw record with its line number.
type Record struct {
	Line   int
	Fields []string
}

// RowConverter converts records of one CSV source.
// It holds no mutable state and is safe for concurrent use.
type RowConverter struct {
	schema  *Schema
	binding Binding
	styles  NumberStyles
	format  *FormatContext
}

// NewRowConverter checks every column's contract once so that per-record
// conversion cannot fail on a caller error.
func NewRowConverter(schema *Schema, binding Binding, styles NumberStyles, fc *FormatContext) (*RowConverter, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrSchema)
	}
	if len(binding) != schema.Len() {
		return nil, fmt.Errorf("%w: binding has %d positions for %d columns", ErrSchema, len(binding), schema.Len())
	}
	for _, col := range schema.columns {
		if err := col.checkContract(styles, fc); err != nil {
			return nil, err
		}
	}
	return &RowConverter{
		schema:  schema,
		binding: binding,
		styles:  styles,
		format:  fc,
	}, nil
}

// Schema returns the schema the converter was built with.
func (rc *RowConverter) Schema() *Schema {
	return rc.schema
}

// Convert converts one record. Fields missing from a short record are
// converted as empty text.
func (rc *RowConverter) Convert(line int, fields []string) Row {
	row := Row{
		Line:  line,
		Cells: make([]Cell, len(rc.schema.columns)),
	}
	for i, col := range rc.schema.columns {
		raw := ""
		if pos := rc.binding[i]; pos >= 0 && pos < len(fields) {
			raw = fields[pos]
		}
		// The contract was checked in NewRowConverter.
		v, ok, _ := col.TryConvert(raw, rc.styles, rc.format)
		row.Cells[i] = Cell{
			Column: col.Name,
			Kind:   col.Kind,
			Raw:    raw,
			Value:  v,
			OK:     ok,
		}
		if !ok && col.Kind != KindText && col.Kind.Supported() {
			row.Errors = append(row.Errors, &CellError{
				Line:   line,
				Column: col.Name,
				Kind:   col.Kind,
				Raw:    raw,
			})
		}
	}
	return row
}

// ConvertAll converts records using up to workers goroutines and returns the
// rows in input order. It stops early if ctx is cancelled.
func (rc *RowConverter) ConvertAll(ctx context.Context, records []Record, workers int) ([]Row, error) {
	if workers < 1 {
		workers = 1
	}
	rows := make([]Row, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = rc.Convert(records[i].Line, records[i].Fields)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("convert rows: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("convert rows: %w", err)
	}
	return rows, nil
}
