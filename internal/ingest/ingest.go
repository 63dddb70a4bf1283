// Package ingest runs the read, bind and convert steps for one CSV input.
//
// Both the HTTP server and the CLI go through Run, so a file converts the
// same way regardless of how it arrives.
package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/JonMunkholm/csvcell/internal/reader"
	"github.com/google/uuid"
)

// Options describe one conversion.
type Options struct {
	Schema  *core.Schema
	Format  *core.FormatContext
	Styles  core.NumberStyles
	Workers int
	Reader  reader.Options

	// NoHeader reads the first line as data and binds columns by position.
	NoHeader bool
}

// Summary counts what a conversion produced.
type Summary struct {
	Rows        int   `json:"rows"`
	ValidRows   int   `json:"valid_rows"`
	Cells       int   `json:"cells"`
	FailedCells int   `json:"failed_cells"`
	BytesRead   int64 `json:"bytes_read"`
	DurationMS  int64 `json:"duration_ms"`
}

// Result is a finished conversion.
type Result struct {
	ID       uuid.UUID
	Rows     []core.Row
	Summary  Summary
	Warnings []string
}

// ValidRows returns the rows without cell errors.
func (r *Result) ValidRows() []core.Row {
	valid := make([]core.Row, 0, r.Summary.ValidRows)
	for _, row := range r.Rows {
		if row.Valid() {
			valid = append(valid, row)
		}
	}
	return valid
}

// CellErrors returns up to limit cell errors in row order. A limit of zero
// or less returns all of them.
func (r *Result) CellErrors(limit int) []*core.CellError {
	var errs []*core.CellError
	for _, row := range r.Rows {
		for _, e := range row.Errors {
			if limit > 0 && len(errs) == limit {
				return errs
			}
			errs = append(errs, e)
		}
	}
	return errs
}

// Run reads CSV from src and converts every record.
func Run(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	start := time.Now()
	res := &Result{ID: uuid.New()}
	logger := logging.WithFields(ctx, "job_id", res.ID, "schema", opts.Schema.String())

	for _, name := range opts.Schema.UnknownKinds() {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unknown kind %q converted as text", name))
	}

	rd, err := reader.New(src, opts.Reader)
	if err != nil {
		return nil, err
	}

	binding := opts.Schema.Positional()
	if !opts.NoHeader {
		header, err := rd.Header()
		if err != nil {
			return nil, err
		}
		binding, err = opts.Schema.Bind(header)
		if err != nil {
			return nil, err
		}
		if extra := len(header) - opts.Schema.Len(); extra > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%d header columns not in schema were ignored", extra))
		}
	}

	rc, err := core.NewRowConverter(opts.Schema, binding, opts.Styles, opts.Format)
	if err != nil {
		return nil, err
	}

	records, err := rd.ReadAll()
	if err != nil {
		return nil, err
	}

	res.Rows, err = rc.ConvertAll(ctx, records, opts.Workers)
	if err != nil {
		return nil, err
	}

	res.Summary.Rows = len(res.Rows)
	res.Summary.BytesRead = rd.BytesRead()
	for _, row := range res.Rows {
		res.Summary.Cells += len(row.Cells)
		res.Summary.FailedCells += len(row.Errors)
		if row.Valid() {
			res.Summary.ValidRows++
		}
	}
	res.Summary.DurationMS = time.Since(start).Milliseconds()

	logger.Info("conversion finished",
		"rows", res.Summary.Rows,
		"valid_rows", res.Summary.ValidRows,
		"failed_cells", res.Summary.FailedCells,
		"bytes", res.Summary.BytesRead,
	)
	return res, nil
}
