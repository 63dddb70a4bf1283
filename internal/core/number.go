package core

// number.go implements the style- and locale-aware numeric parsing rules.
//
// Parsing happens in two steps. scanNumber walks the text once, applying the
// NumberStyles flags and the FormatContext symbols, and reduces it to a sign,
// integral digits, fractional digits and an exponent. The kind-specific
// functions then hand a canonical ASCII form to strconv or decimal, which
// only ever see text they are guaranteed to understand.

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxDecimal is the largest magnitude a decimal cell may hold (2^96 - 1).
var maxDecimal = decimal.RequireFromString("79228162514264337593543950335")

// maxExponent bounds exponents so a hostile "1e999999999" stays cheap.
const maxExponent = 100_000

// parsedNumber is the canonical form of a numeric cell.
type parsedNumber struct {
	neg      bool
	intPart  []byte
	fracPart []byte
	exp      int
}

// canonical renders n in a form accepted by strconv.ParseFloat and
// decimal.NewFromString.
func (n parsedNumber) canonical() string {
	var b strings.Builder
	b.Grow(len(n.intPart) + len(n.fracPart) + 8)
	if n.neg {
		b.WriteByte('-')
	}
	if len(n.intPart) == 0 {
		b.WriteByte('0')
	}
	b.Write(n.intPart)
	if len(n.fracPart) > 0 {
		b.WriteByte('.')
		b.Write(n.fracPart)
	}
	if n.exp != 0 {
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(n.exp))
	}
	return b.String()
}

// integerDigits applies the exponent and returns the signed integral digits.
// It fails if any non-zero digit would end up after the decimal point.
func (n parsedNumber) integerDigits() (string, bool) {
	mantissa := make([]byte, 0, len(n.intPart)+len(n.fracPart))
	mantissa = append(mantissa, n.intPart...)
	mantissa = append(mantissa, n.fracPart...)

	scale := n.exp - len(n.fracPart)
	switch {
	case scale > 0:
		if allZero(mantissa) {
			mantissa = mantissa[:0]
			break
		}
		// Anything shifted this far overflows int64 anyway.
		if scale > 20 {
			return "", false
		}
		for range scale {
			mantissa = append(mantissa, '0')
		}
	case scale < 0:
		cut := len(mantissa) + scale
		if cut < 0 {
			cut = 0
		}
		if !allZero(mantissa[cut:]) {
			return "", false
		}
		mantissa = mantissa[:cut]
	}

	if len(mantissa) == 0 {
		return "0", true
	}
	if n.neg {
		return "-" + string(mantissa), true
	}
	return string(mantissa), true
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != '0' {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isWhite(c byte) bool {
	return c == ' ' || (c >= '\t' && c <= '\r')
}

func hasPrefixAt(s string, i int, prefix string) bool {
	return prefix != "" && strings.HasPrefix(s[i:], prefix)
}

// spaceSeparators are interchangeable when a locale groups with any of them.
var spaceSeparators = []string{" ", "\u00a0", "\u202f"}

// groupSeparatorAt returns the length of the group separator at s[i], or 0.
// Locales that group with a space accept a plain space, a no-break space and
// a narrow no-break space alike.
func groupSeparatorAt(s string, i int, fc *FormatContext) int {
	if hasPrefixAt(s, i, fc.GroupSeparator) {
		return len(fc.GroupSeparator)
	}
	if !slices.Contains(spaceSeparators, fc.GroupSeparator) {
		return 0
	}
	for _, sep := range spaceSeparators {
		if hasPrefixAt(s, i, sep) {
			return len(sep)
		}
	}
	return 0
}

// trimWhite removes whitespace from the ends the styles allow.
func trimWhite(s string, styles NumberStyles) string {
	if styles.Has(AllowLeadingWhite) {
		s = strings.TrimLeftFunc(s, func(r rune) bool { return r < 0x80 && isWhite(byte(r)) })
	}
	if styles.Has(AllowTrailingWhite) {
		s = strings.TrimRightFunc(s, func(r rune) bool { return r < 0x80 && isWhite(byte(r)) })
	}
	return s
}

// scanNumber reduces s to a parsedNumber according to styles and fc.
func scanNumber(s string, styles NumberStyles, fc *FormatContext) (parsedNumber, bool) {
	var n parsedNumber
	var signSeen, paren, currencySeen bool
	i := 0

	if styles.Has(AllowLeadingWhite) {
		for i < len(s) && isWhite(s[i]) {
			i++
		}
	}

leading:
	for i < len(s) {
		switch {
		case !signSeen && !paren && styles.Has(AllowLeadingSign) && hasPrefixAt(s, i, fc.NegativeSign):
			n.neg, signSeen = true, true
			i += len(fc.NegativeSign)
		case !signSeen && !paren && styles.Has(AllowLeadingSign) && hasPrefixAt(s, i, fc.PositiveSign):
			signSeen = true
			i += len(fc.PositiveSign)
		case !signSeen && !paren && styles.Has(AllowParentheses) && s[i] == '(':
			n.neg, paren = true, true
			i++
		case !currencySeen && styles.Has(AllowCurrencySymbol) && hasPrefixAt(s, i, fc.CurrencySymbol):
			currencySeen = true
			i += len(fc.CurrencySymbol)
		case (signSeen || paren || currencySeen) && styles.Has(AllowLeadingWhite) && isWhite(s[i]):
			i++
		default:
			break leading
		}
	}

	digits := make([]byte, 0, len(s)-i)
	for i < len(s) {
		if isDigit(s[i]) {
			digits = append(digits, s[i])
			i++
			continue
		}
		if styles.Has(AllowThousands) && len(digits) > 0 {
			if l := groupSeparatorAt(s, i, fc); l > 0 {
				i += l
				continue
			}
		}
		break
	}
	n.intPart = digits

	if styles.Has(AllowDecimalPoint) && i < len(s) && hasPrefixAt(s, i, fc.DecimalSeparator) {
		i += len(fc.DecimalSeparator)
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		n.fracPart = []byte(s[start:i])
	}

	if len(n.intPart)+len(n.fracPart) == 0 {
		return parsedNumber{}, false
	}

	if styles.Has(AllowExponent) && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		expNeg := false
		if j < len(s) && hasPrefixAt(s, j, fc.NegativeSign) {
			expNeg = true
			j += len(fc.NegativeSign)
		} else if j < len(s) && hasPrefixAt(s, j, fc.PositiveSign) {
			j += len(fc.PositiveSign)
		}
		k := j
		exp := 0
		for k < len(s) && isDigit(s[k]) {
			if exp < maxExponent {
				exp = exp*10 + int(s[k]-'0')
			}
			k++
		}
		// An 'e' with no digits is left for the trailing loop to reject.
		if k > j {
			if exp > maxExponent {
				exp = maxExponent
			}
			if expNeg {
				exp = -exp
			}
			n.exp = exp
			i = k
		}
	}

	parenClosed := false
	for i < len(s) {
		switch {
		case !signSeen && !paren && styles.Has(AllowTrailingSign) && hasPrefixAt(s, i, fc.NegativeSign):
			n.neg, signSeen = true, true
			i += len(fc.NegativeSign)
		case !signSeen && !paren && styles.Has(AllowTrailingSign) && hasPrefixAt(s, i, fc.PositiveSign):
			signSeen = true
			i += len(fc.PositiveSign)
		case paren && !parenClosed && s[i] == ')':
			parenClosed = true
			i++
		case !currencySeen && styles.Has(AllowCurrencySymbol) && hasPrefixAt(s, i, fc.CurrencySymbol):
			currencySeen = true
			i += len(fc.CurrencySymbol)
		case styles.Has(AllowTrailingWhite) && isWhite(s[i]):
			i++
		default:
			return parsedNumber{}, false
		}
	}
	if paren && !parenClosed {
		return parsedNumber{}, false
	}

	return n, true
}

// parseHex parses s as an unsigned bit pattern of the given width and
// reinterprets it as a two's complement signed value.
func parseHex(s string, styles NumberStyles, bits int) (int64, bool) {
	s = trimWhite(s, styles)
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return 0, false
		}
	}
	u, err := strconv.ParseUint(s, 16, bits)
	if err != nil {
		return 0, false
	}
	if bits == 32 {
		return int64(int32(uint32(u))), true
	}
	return int64(u), true
}

// parseInteger parses s into a signed integer of the given bit size.
func parseInteger(s string, styles NumberStyles, fc *FormatContext, bits int) (int64, bool) {
	if styles.Has(AllowHexSpecifier) {
		return parseHex(s, styles, bits)
	}
	n, ok := scanNumber(s, styles, fc)
	if !ok {
		return 0, false
	}
	digits, ok := n.integerDigits()
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, bits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseSpecialFloat recognizes the context's NaN and infinity symbols.
func parseSpecialFloat(s string, styles NumberStyles, fc *FormatContext) (float64, bool) {
	s = trimWhite(s, styles)
	switch {
	case s == "":
		return 0, false
	case fc.NaNSymbol != "" && strings.EqualFold(s, fc.NaNSymbol):
		return math.NaN(), true
	case fc.NegativeInfinity != "" && strings.EqualFold(s, fc.NegativeInfinity):
		return math.Inf(-1), true
	case fc.PositiveInfinity != "" && strings.EqualFold(s, fc.PositiveInfinity):
		return math.Inf(1), true
	case fc.PositiveInfinity != "" && strings.EqualFold(s, fc.PositiveSign+fc.PositiveInfinity):
		return math.Inf(1), true
	case fc.PositiveInfinity != "" && strings.EqualFold(s, fc.NegativeSign+fc.PositiveInfinity):
		return math.Inf(-1), true
	}
	return 0, false
}

// parseFloat parses s into a float of the given bit size. Values outside the
// range of the target size fail rather than becoming infinities.
func parseFloat(s string, styles NumberStyles, fc *FormatContext, bits int) (float64, bool) {
	if v, ok := parseSpecialFloat(s, styles, fc); ok {
		return v, true
	}
	n, ok := scanNumber(s, styles, fc)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(n.canonical(), bits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDecimal parses s into a decimal bounded by maxDecimal.
func parseDecimal(s string, styles NumberStyles, fc *FormatContext) (decimal.Decimal, bool) {
	n, ok := scanNumber(s, styles, fc)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n.canonical())
	if err != nil {
		return decimal.Zero, false
	}
	if d.Abs().GreaterThan(maxDecimal) {
		return decimal.Zero, false
	}
	return d, true
}
