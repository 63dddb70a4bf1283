// Package reader tokenizes CSV input for the converter.
//
// It wraps encoding/csv with the clean-up real exports need: a leading BOM is
// dropped, invalid UTF-8 is replaced, records may have varying field counts
// and cells can be stripped of spreadsheet formula wrappers.
package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/csvcell/internal/core"
)

// ErrNoHeader is returned by Header when the input has no records.
var ErrNoHeader = errors.New("csv has no header row")

// Options configure a Reader. The zero value reads comma-separated input.
type Options struct {
	Comma            rune // field delimiter, ',' when zero
	Comment          rune // lines starting with this rune are skipped, none when zero
	TrimLeadingSpace bool
	LazyQuotes       bool
	CleanCells       bool // apply CleanCell to every field
}

// Reader reads CSV records along with their line numbers.
type Reader struct {
	csv     *csv.Reader
	counter *CountingReader
	clean   bool
	header  []string
}

// New returns a Reader for r.
func New(r io.Reader, opts Options) (*Reader, error) {
	counter := NewCountingReader(r)
	cr := csv.NewReader(Normalize(counter))
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.Comment = opts.Comment
	cr.TrimLeadingSpace = opts.TrimLeadingSpace
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1

	// Validate the delimiter settings up front rather than on the first read.
	if !validDelim(cr.Comma) {
		return nil, fmt.Errorf("invalid delimiter %q", cr.Comma)
	}
	if cr.Comment != 0 && (!validDelim(cr.Comment) || cr.Comment == cr.Comma) {
		return nil, fmt.Errorf("invalid comment character %q", cr.Comment)
	}

	return &Reader{csv: cr, counter: counter, clean: opts.CleanCells}, nil
}

func validDelim(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != 0xFFFD
}

// Header reads the first record and returns it. Later calls return the same
// header without reading.
func (r *Reader) Header() ([]string, error) {
	if r.header != nil {
		return r.header, nil
	}
	fields, _, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	r.header = fields
	return fields, nil
}

// Next returns the next record and the 1-based line it starts on.
// It returns io.EOF when the input is exhausted.
func (r *Reader) Next() ([]string, int, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("read csv: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	if r.clean {
		for i, f := range fields {
			fields[i] = CleanCell(f)
		}
	}
	return fields, line, nil
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]core.Record, error) {
	var records []core.Record
	for {
		fields, line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, core.Record{Line: line, Fields: fields})
	}
}

// BytesRead reports how many input bytes have been consumed.
func (r *Reader) BytesRead() int64 {
	return r.counter.BytesRead()
}

// CleanCell strips the wrappers spreadsheet exports put around values:
// surrounding whitespace, a ="..." or leading = formula prefix and
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
