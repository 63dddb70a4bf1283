package core

// schema.go groups columns into a Schema and binds it to a CSV header.
//
// The core never reads files; a Schema is built by the caller, either from
// Column values or from a compact declaration such as
//
//	id:uuid, amount:decimal, booked_at:datetime, note
//
// where a column without a kind is text.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema marks an invalid schema declaration or header binding.
var ErrSchema = errors.New("invalid schema")

// Schema is an ordered, immutable list of columns with unique names.
type Schema struct {
	columns []Column
	index   map[string]int // lowercased name -> position
	unknown []string       // declared kind names that resolved to text
}

// HeaderIndex maps normalized header names to their position in a record.
type HeaderIndex map[string]int

// Binding maps each schema column to a record position (-1 when absent).
type Binding []int

// NewSchema builds a schema. Column names must be non-empty and unique,
// ignoring case.
func NewSchema(cols ...Column) (*Schema, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrSchema)
	}
	s := &Schema{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, col := range cols {
		key := normalizeHeader(col.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrSchema, i+1)
		}
		if _, dup := s.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchema, col.Name)
		}
		s.index[key] = i
		s.columns[i] = col
	}
	return s, nil
}

// ParseSchema parses a comma-separated list of "name[:kind]" declarations.
// Unknown kind names resolve to text and are reported by UnknownKinds.
func ParseSchema(decl string) (*Schema, error) {
	var cols []Column
	var unknown []string
	for _, part := range strings.Split(decl, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, kindName, hasKind := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		kind := KindText
		if hasKind {
			var ok bool
			kind, ok = ParseKind(kindName)
			if !ok {
				unknown = append(unknown, strings.TrimSpace(kindName))
			}
		}
		cols = append(cols, NewColumn(name, kind))
	}
	s, err := NewSchema(cols...)
	if err != nil {
		return nil, err
	}
	s.unknown = unknown
	return s, nil
}

// Columns returns a copy of the schema's columns in order.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Column returns the column at position i.
func (s *Schema) Column(i int) Column {
	return s.columns[i]
}

// Lookup finds a column by name, ignoring case.
func (s *Schema) Lookup(name string) (Column, int, bool) {
	i, ok := s.index[normalizeHeader(name)]
	if !ok {
		return Column{}, -1, false
	}
	return s.columns[i], i, true
}

// UnknownKinds returns the kind names ParseSchema could not resolve.
func (s *Schema) UnknownKinds() []string {
	return append([]string(nil), s.unknown...)
}

// String renders the schema in ParseSchema syntax.
func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, col := range s.columns {
		parts[i] = col.Name + ":" + col.Kind.String()
	}
	return strings.Join(parts, ", ")
}

// MakeHeaderIndex indexes a CSV header row by normalized name.
// The first occurrence of a repeated name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Bind maps the schema's columns onto header positions.
// It fails listing every schema column the header does not contain.
func (s *Schema) Bind(header []string) (Binding, error) {
	idx := MakeHeaderIndex(header)
	binding := make(Binding, len(s.columns))
	var missing []string
	for i, col := range s.columns {
		pos, ok := idx[normalizeHeader(col.Name)]
		if !ok {
			missing = append(missing, col.Name)
			pos = -1
		}
		binding[i] = pos
	}
	if len(missing) > 0 {
		return binding, fmt.Errorf("%w: missing columns: %s", ErrSchema, strings.Join(missing, ", "))
	}
	return binding, nil
}

// Positional returns the binding used for headerless input: column i reads
// record field i.
func (s *Schema) Positional() Binding {
	binding := make(Binding, len(s.columns))
	for i := range binding {
		binding[i] = i
	}
	return binding
}

// normalizeHeader lowercases a header name and strips a BOM, surrounding
// whitespace and quotes.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"'`)
	return strings.ToLower(strings.TrimSpace(h))
}
