package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedField marks a cell whose text does not parse as its column's kind.
	// TryConvert never returns it; row assembly reports it through CellError.
	ErrMalformedField = errors.New("malformed field")

	// ErrContract marks a caller error, such as a missing format context.
	ErrContract = errors.New("conversion contract violated")
)

// ContractError reports a precondition the caller failed to meet.
// It is never caused by the content of a cell.
type ContractError struct {
	Column string
	Kind   Kind
	Reason string
}

func (e *ContractError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("column %q (%s): %s", e.Column, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ContractError) Unwrap() error {
	return ErrContract
}

// CellError describes one cell that failed to convert.
type CellError struct {
	Line   int    // 1-based line of the record, 0 if unknown
	Column string // Column name
	Kind   Kind   // Declared kind
	Raw    string // The text that did not parse
}

func (e *CellError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: column %q: invalid %s value %q", e.Line, e.Column, e.Kind, e.Raw)
	}
	return fmt.Sprintf("column %q: invalid %s value %q", e.Column, e.Kind, e.Raw)
}

func (e *CellError) Unwrap() error {
	return ErrMalformedField
}
