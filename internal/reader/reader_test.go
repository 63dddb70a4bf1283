package reader

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestReader_HeaderAndRecords(t *testing.T) {
	input := "\ufeffid,amount\n1,\"1,234.50\"\n\n2,7\n"
	r, err := New(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	header, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if want := []string{"id", "amount"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %q, want %q", header, want)
	}

	again, _ := r.Header()
	if !reflect.DeepEqual(again, header) {
		t.Errorf("second Header call = %q, want %q", again, header)
	}

	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Line != 2 || records[1].Line != 4 {
		t.Errorf("lines = %d,%d, want 2,4", records[0].Line, records[1].Line)
	}
	if records[0].Fields[1] != "1,234.50" {
		t.Errorf("quoted field = %q", records[0].Fields[1])
	}
	if r.BytesRead() != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", r.BytesRead(), len(input))
	}
}

func TestReader_VariableFieldCounts(t *testing.T) {
	r, err := New(strings.NewReader("a,b,c\n1\n1,2,3,4\n"), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}

	fields, line, err := r.Next()
	if err != nil || line != 2 || len(fields) != 1 {
		t.Errorf("short record: fields=%q line=%d err=%v", fields, line, err)
	}
	fields, line, err = r.Next()
	if err != nil || line != 3 || len(fields) != 4 {
		t.Errorf("long record: fields=%q line=%d err=%v", fields, line, err)
	}
	if _, _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_Options(t *testing.T) {
	input := "# exported 2024-01-01\nid;note\n1; =\"007\"\n"
	r, err := New(strings.NewReader(input), Options{
		Comma:            ';',
		Comment:          '#',
		TrimLeadingSpace: true,
		LazyQuotes:       true,
		CleanCells:       true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	header, err := r.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if want := []string{"id", "note"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %q, want %q", header, want)
	}

	fields, line, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if line != 3 {
		t.Errorf("line = %d, want 3", line)
	}
	if want := []string{"1", "007"}; !reflect.DeepEqual(fields, want) {
		t.Errorf("fields = %q, want %q", fields, want)
	}
}

func TestReader_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"quote delimiter", Options{Comma: '"'}},
		{"newline delimiter", Options{Comma: '\n'}},
		{"comment equals delimiter", Options{Comma: ';', Comment: ';'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(strings.NewReader(""), tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReader_EmptyInput(t *testing.T) {
	r, err := New(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Header(); !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
}

func TestReader_MalformedQuotes(t *testing.T) {
	r, err := New(strings.NewReader("a\n\"unterminated\n"), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Header(); err != nil {
		t.Fatalf("Header: %v", err)
	}
	_, _, err = r.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "read csv:") {
		t.Errorf("error %q not wrapped", err)
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  hello  ", "hello"},
		{`="007"`, "007"},
		{"=42", "42"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{`="`, ""},
		{"", ""},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.expected {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
