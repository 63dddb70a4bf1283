package core

import (
	"encoding/base64"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------------------------------------------------------------------
// Well-formed input
// ----------------------------------------------------------------------------

func TestTryConvert_WellFormed(t *testing.T) {
	fc := Invariant()
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name  string
		kind  Kind
		input string
		want  Value
	}{
		{"int32", KindInt32, "123", ValueInt32{Val: 123}},
		{"int32 negative", KindInt32, "-45", ValueInt32{Val: -45}},
		{"int32 max", KindInt32, "2147483647", ValueInt32{Val: math.MaxInt32}},
		{"int32 min", KindInt32, "-2147483648", ValueInt32{Val: math.MinInt32}},
		{"int64", KindInt64, "9223372036854775807", ValueInt64{Val: math.MaxInt64}},
		{"int64 thousands", KindInt64, "1,234", ValueInt64{Val: 1234}},
		{"int64 trailing sign", KindInt64, "42-", ValueInt64{Val: -42}},
		{"int32 zero fraction", KindInt32, "12.000", ValueInt32{Val: 12}},
		{"float32", KindFloat32, "1.5", ValueFloat32{Val: 1.5}},
		{"float64", KindFloat64, "2.5", ValueFloat64{Val: 2.5}},
		{"float64 thousands", KindFloat64, "1,000.25", ValueFloat64{Val: 1000.25}},
		{"decimal", KindDecimal, "123.45", ValueDecimal{Val: decimal.RequireFromString("123.45")}},
		{"decimal negative", KindDecimal, "-0.001", ValueDecimal{Val: decimal.RequireFromString("-0.001")}},
		{"uuid", KindUUID, id.String(), ValueUUID{Val: id}},
		{"uuid braces", KindUUID, "{" + id.String() + "}", ValueUUID{Val: id}},
		{"uuid parens", KindUUID, "(" + id.String() + ")", ValueUUID{Val: id}},
		{"uuid no hyphens", KindUUID, "6ba7b8109dad11d180b400c04fd430c8", ValueUUID{Val: id}},
		{"bytes", KindBytes, "aGVsbG8=", ValueBytes{Val: []byte("hello")}},
		{"bytes empty", KindBytes, "", ValueBytes{Val: []byte{}}},
		{"bytes inner space", KindBytes, "aGVs bG8=", ValueBytes{Val: []byte("hello")}},
		{"bytes surrounding space", KindBytes, " aGVsbG8= ", ValueBytes{Val: []byte("hello")}},
		{"bytes tab and newline", KindBytes, "aGVs\tbG8=\r\n", ValueBytes{Val: []byte("hello")}},
		{"bytes only whitespace", KindBytes, " \t ", ValueBytes{Val: []byte{}}},
		{"datetime iso", KindDateTime, "2024-03-15", ValueDateTime{Val: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}},
		{"datetime invariant", KindDateTime, "03/15/2024 13:45:00", ValueDateTime{Val: time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := NewColumn(tt.name, tt.kind)
			v, ok, err := col.TryConvert(tt.input, StyleNumber, fc)
			require.NoError(t, err)
			assert.True(t, ok)
			assertValueEqual(t, tt.want, v)
		})
	}
}

// ----------------------------------------------------------------------------
// Malformed input
// ----------------------------------------------------------------------------

func TestTryConvert_Malformed(t *testing.T) {
	fc := Invariant()

	tests := []struct {
		name  string
		kind  Kind
		input string
	}{
		{"int32 letters", KindInt32, "abc"},
		{"int32 overflow", KindInt32, "2147483648"},
		{"int32 fraction", KindInt32, "1.5"},
		{"int32 empty", KindInt32, ""},
		{"int64 overflow", KindInt64, "9223372036854775808"},
		{"int64 double sign", KindInt64, "--1"},
		{"float32 overflow", KindFloat32, "999,999,999,999,999,999,999,999,999,999,999,999,999"},
		{"float64 letters", KindFloat64, "two"},
		{"float64 exponent not allowed", KindFloat64, "1e5"},
		{"decimal too large", KindDecimal, "79228162514264337593543950336"},
		{"decimal junk", KindDecimal, "12.3.4"},
		{"uuid short", KindUUID, "6ba7b810-9dad-11d1-80b4"},
		{"uuid junk", KindUUID, "not-a-uuid"},
		{"bytes invalid", KindBytes, "!!!not base64"},
		{"bytes bad padding", KindBytes, "aGVsbG8"},
		{"datetime junk", KindDateTime, "yesterday"},
		{"datetime empty", KindDateTime, ""},
		{"datetime impossible", KindDateTime, "2024-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := NewColumn(tt.name, tt.kind)
			v, ok, err := col.TryConvert(tt.input, StyleNumber, fc)
			require.NoError(t, err)
			assert.False(t, ok)
			assertValueEqual(t, ZeroValue(tt.kind), v)
		})
	}
}

func TestTryConvert_DefaultValues(t *testing.T) {
	fc := Invariant()

	v, ok, err := NewColumn("id", KindUUID).TryConvert("zzz", StyleNumber, fc)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, v.(ValueUUID).Val)

	v, ok, err = NewColumn("blob", KindBytes).TryConvert("@@@", StyleNumber, fc)
	require.NoError(t, err)
	assert.False(t, ok)
	b := v.(ValueBytes).Val
	assert.NotNil(t, b)
	assert.Empty(t, b)

	v, ok, err = NewColumn("when", KindDateTime).TryConvert("nope", StyleNumber, fc)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v.(ValueDateTime).Val.IsZero())
}

// ----------------------------------------------------------------------------
// Text and unsupported kinds
// ----------------------------------------------------------------------------

func TestTryConvert_TextAlwaysReportsFalse(t *testing.T) {
	inputs := []string{"", "hello", "123", "  padded  ", "ünïcödé", "a,b"}
	for _, kind := range []Kind{KindText, Kind(99), Kind(-1)} {
		col := NewColumn("note", kind)
		for _, in := range inputs {
			v, ok, err := col.TryConvert(in, StyleNumber, nil)
			require.NoError(t, err)
			assert.False(t, ok, "kind %v input %q", kind, in)
			assert.Equal(t, ValueText{Val: in}, v)
		}
	}
}

func TestColumn_ZeroKindIsText(t *testing.T) {
	var col Column
	assert.Equal(t, KindText, col.Kind)

	v, ok, err := col.TryConvert("x", StyleNone, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ValueText{Val: "x"}, v)
}

// ----------------------------------------------------------------------------
// Convert (convenience form)
// ----------------------------------------------------------------------------

func TestConvert_MatchesTryConvert(t *testing.T) {
	fc := Invariant()
	inputs := []string{"", "0", "1,234", "-1.5", "abc", "2024-01-02", "aGk=", "\x00\xff", "(5)", "1e10"}

	for _, kind := range Kinds() {
		col := NewColumn("c", kind)
		for _, in := range inputs {
			got, err := col.Convert(in, fc)
			require.NoError(t, err)
			want, _, err := col.TryConvert(in, StyleNumber, fc)
			require.NoError(t, err)
			assertValueEqual(t, want, got)
		}
	}
}

func TestConvert_NeverPanics(t *testing.T) {
	fc := Invariant()
	inputs := []string{
		"", " ", "-", "+", "(", ")", ".", ",", "e", "1e", "1e+", "--", "0x1F",
		"\xff\xfe", "💥", "1,,,,", ",1", "NaN", "-Infinity", "{}", "()",
		"99999999999999999999999999999999999999999999",
		"1e999999999999", "0.0000000000000000000000000000000000001",
	}
	for _, kind := range append(Kinds(), Kind(42)) {
		col := NewColumn("c", kind)
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				_, _ = col.Convert(in, fc)
				_, _ = col.ConvertStyle(in, StyleAny, fc)
			}, "kind %v input %q", kind, in)
		}
	}
}

// ----------------------------------------------------------------------------
// Contract violations
// ----------------------------------------------------------------------------

func TestTryConvert_ContractErrors(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		styles NumberStyles
		fc     *FormatContext
	}{
		{"int32 nil context", KindInt32, StyleNumber, nil},
		{"decimal nil context", KindDecimal, StyleNumber, nil},
		{"datetime nil context", KindDateTime, StyleNumber, nil},
		{"unknown style bits", KindInt64, NumberStyles(1 << 14), Invariant()},
		{"hex mixed with sign", KindInt32, AllowHexSpecifier | AllowLeadingSign, Invariant()},
		{"hex on float", KindFloat64, StyleHexNumber, Invariant()},
		{"hex on decimal", KindDecimal, StyleHexNumber, Invariant()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := NewColumn("c", tt.kind).TryConvert("1", tt.styles, tt.fc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrContract))
			assert.False(t, errors.Is(err, ErrMalformedField))

			var ce *ContractError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.kind, ce.Kind)
			assert.False(t, ok)
			assertValueEqual(t, ZeroValue(tt.kind), v)
		})
	}
}

func TestTryConvert_NoContextNeeded(t *testing.T) {
	for _, kind := range []Kind{KindText, KindUUID, KindBytes} {
		_, _, err := NewColumn("c", kind).TryConvert("x", StyleNumber, nil)
		assert.NoError(t, err, "kind %v", kind)
	}
}

// ----------------------------------------------------------------------------
// Round trips and purity
// ----------------------------------------------------------------------------

func TestUUIDRoundTrip(t *testing.T) {
	col := NewColumn("id", KindUUID)
	for range 20 {
		id := uuid.New()
		v, ok, err := col.TryConvert(id.String(), StyleNone, nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, v.(ValueUUID).Val)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	col := NewColumn("blob", KindBytes)
	payloads := [][]byte{
		{},
		{0},
		[]byte("hello, world"),
		{0xde, 0xad, 0xbe, 0xef, 0x00, 0xff},
	}
	for _, p := range payloads {
		enc := base64.StdEncoding.EncodeToString(p)
		v, ok, err := col.TryConvert(enc, StyleNone, nil)
		require.NoError(t, err)
		require.True(t, ok)
		got := v.(ValueBytes).Val
		assert.Equal(t, enc, base64.StdEncoding.EncodeToString(got))
	}
}

func TestTryConvert_Idempotent(t *testing.T) {
	fc := ForLocale(mustTag(t, "de-DE"))
	inputs := []string{"1.234,5", "abc", "15.03.2024", "", "-7"}
	for _, kind := range Kinds() {
		col := NewColumn("c", kind)
		for _, in := range inputs {
			v1, ok1, err1 := col.TryConvert(in, StyleNumber, fc)
			v2, ok2, err2 := col.TryConvert(in, StyleNumber, fc)
			assert.Equal(t, err1, err2)
			assert.Equal(t, ok1, ok2)
			assertValueEqual(t, v1, v2)
		}
	}
}

// ----------------------------------------------------------------------------
// End-to-end: thousands separators depend on the style
// ----------------------------------------------------------------------------

func TestInt64Thousands_DependsOnStyle(t *testing.T) {
	col := NewColumn("amount", KindInt64)
	fc := Invariant()

	v, ok, err := col.TryConvert("1,234", StyleNumber, fc)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ValueInt64{Val: 1234}, v)

	v, ok, err = col.TryConvert("1,234", StyleInteger, fc)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ValueInt64{Val: 0}, v)
}

// assertValueEqual compares values, treating NaN as equal to NaN and
// decimals by numeric value.
func assertValueEqual(t *testing.T, want, got Value) {
	t.Helper()
	require.NotNil(t, got)
	require.Equal(t, want.Kind(), got.Kind())
	switch w := want.(type) {
	case ValueDecimal:
		assert.True(t, w.Val.Equal(got.(ValueDecimal).Val), "want %s, got %s", w.Val, got.(ValueDecimal).Val)
	case ValueFloat64:
		g := got.(ValueFloat64).Val
		if math.IsNaN(w.Val) {
			assert.True(t, math.IsNaN(g))
			return
		}
		assert.Equal(t, w.Val, g)
	case ValueFloat32:
		g := got.(ValueFloat32).Val
		if math.IsNaN(float64(w.Val)) {
			assert.True(t, math.IsNaN(float64(g)))
			return
		}
		assert.Equal(t, w.Val, g)
	case ValueDateTime:
		assert.True(t, w.Val.Equal(got.(ValueDateTime).Val), "want %s, got %s", w.Val, got.(ValueDateTime).Val)
	default:
		assert.Equal(t, want, got)
	}
}
