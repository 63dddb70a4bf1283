package core

// column.go is the column converter: a Column binds a name to a Kind, and
// TryConvert dispatches raw cell text to the parse rule for that kind.
//
// A malformed cell is an expected outcome in bulk ingestion, so it is
// reported through the boolean result together with the kind's zero value
// and never as an error. The error result is reserved for caller mistakes
// (see ContractError).

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Column is the schema binding of one CSV field.
// It is a small value type; share it freely between goroutines.
type Column struct {
	Name string
	Kind Kind
}

// NewColumn returns a Column of the given kind.
func NewColumn(name string, kind Kind) Column {
	return Column{Name: name, Kind: kind}
}

// Convert converts raw using StyleNumber and returns only the value.
// On a malformed cell it returns the kind's zero value (the raw text for text
// columns).
func (c Column) Convert(raw string, fc *FormatContext) (Value, error) {
	return c.ConvertStyle(raw, StyleNumber, fc)
}

// ConvertStyle is Convert with explicit number styles.
func (c Column) ConvertStyle(raw string, styles NumberStyles, fc *FormatContext) (Value, error) {
	v, _, err := c.TryConvert(raw, styles, fc)
	return v, err
}

// TryConvert parses raw as the column's kind.
//
// ok reports whether raw parsed. When it did not, v is the kind's zero value.
// Text and unsupported kinds return the raw text unchanged with ok=false:
// callers must look at the value, not the flag, for those columns.
//
// err is non-nil only when the call itself is invalid: a numeric or date
// kind without a format context, or number styles the kind cannot use.
func (c Column) TryConvert(raw string, styles NumberStyles, fc *FormatContext) (Value, bool, error) {
	if err := c.checkContract(styles, fc); err != nil {
		return ZeroValue(c.Kind), false, err
	}

	switch c.Kind {
	case KindUUID:
		id, ok := tryParse(func() (uuid.UUID, error) { return parseUUID(raw) }, uuid.Nil)
		return ValueUUID{Val: id}, ok, nil

	case KindBytes:
		b, ok := tryParse(func() ([]byte, error) { return base64.StdEncoding.DecodeString(stripWhite(raw)) }, []byte{})
		return ValueBytes{Val: b}, ok, nil

	case KindInt32:
		n, ok := parseInteger(raw, styles, fc, 32)
		return ValueInt32{Val: int32(n)}, ok, nil

	case KindInt64:
		n, ok := parseInteger(raw, styles, fc, 64)
		return ValueInt64{Val: n}, ok, nil

	case KindFloat32:
		f, ok := parseFloat(raw, styles, fc, 32)
		return ValueFloat32{Val: float32(f)}, ok, nil

	case KindFloat64:
		f, ok := parseFloat(raw, styles, fc, 64)
		return ValueFloat64{Val: f}, ok, nil

	case KindDecimal:
		d, ok := parseDecimal(raw, styles, fc)
		return ValueDecimal{Val: d}, ok, nil

	case KindDateTime:
		t, ok := parseDateTime(raw, fc)
		return ValueDateTime{Val: t}, ok, nil

	default:
		return ValueText{Val: raw}, false, nil
	}
}

// checkContract validates the parameters a kind depends on.
func (c Column) checkContract(styles NumberStyles, fc *FormatContext) error {
	switch c.Kind {
	case KindInt32, KindInt64, KindFloat32, KindFloat64, KindDecimal:
		if fc == nil {
			return &ContractError{Column: c.Name, Kind: c.Kind, Reason: "format context is required"}
		}
		if err := styles.Validate(); err != nil {
			return &ContractError{Column: c.Name, Kind: c.Kind, Reason: err.Error()}
		}
		if styles.Has(AllowHexSpecifier) && c.Kind != KindInt32 && c.Kind != KindInt64 {
			return &ContractError{Column: c.Name, Kind: c.Kind, Reason: "hex number styles apply to integer kinds only"}
		}
	case KindDateTime:
		if fc == nil {
			return &ContractError{Column: c.Name, Kind: c.Kind, Reason: "format context is required"}
		}
	}
	return nil
}

// tryParse runs parse and turns an error or a panic into (zero, false).
func tryParse[T any](parse func() (T, error), zero T) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = zero, false
		}
	}()
	v, err := parse()
	if err != nil {
		return zero, false
	}
	return v, true
}

// parseUUID accepts the forms uuid.Parse knows plus a parenthesized form,
// ignoring surrounding whitespace.
func parseUUID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 38 && s[0] == '(' && s[37] == ')' {
		s = s[1:37]
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse uuid: %w", err)
	}
	return id, nil
}

// stripWhite removes ASCII whitespace anywhere in s. Base64 exports often
// wrap or pad the encoded text.
func stripWhite(s string) string {
	if strings.IndexFunc(s, isWhiteRune) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isWhiteRune(r) {
			return -1
		}
		return r
	}, s)
}

func isWhiteRune(r rune) bool {
	return r < utf8.RuneSelf && isWhite(byte(r))
}
