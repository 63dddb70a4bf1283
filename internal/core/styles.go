package core

import (
	"fmt"
	"strings"
)

// NumberStyles controls which textual forms numeric parsing accepts.
type NumberStyles uint16

const (
	AllowLeadingWhite NumberStyles = 1 << iota
	AllowTrailingWhite
	AllowLeadingSign
	AllowTrailingSign
	AllowParentheses
	AllowDecimalPoint
	AllowThousands
	AllowExponent
	AllowCurrencySymbol
	AllowHexSpecifier
)

const (
	StyleNone      NumberStyles = 0
	StyleInteger                = AllowLeadingWhite | AllowTrailingWhite | AllowLeadingSign
	StyleHexNumber              = AllowLeadingWhite | AllowTrailingWhite | AllowHexSpecifier
	StyleNumber                 = StyleInteger | AllowTrailingSign | AllowDecimalPoint | AllowThousands
	StyleFloat                  = StyleInteger | AllowDecimalPoint | AllowExponent
	StyleCurrency               = StyleNumber | AllowParentheses | AllowCurrencySymbol
	StyleAny                    = StyleCurrency | AllowExponent

	allStyles = StyleAny | AllowHexSpecifier
)

// styleNames lists named styles. Composites come first so String prefers them.
var styleNames = []struct {
	name  string
	style NumberStyles
}{
	{"Any", StyleAny},
	{"Currency", StyleCurrency},
	{"Number", StyleNumber},
	{"Float", StyleFloat},
	{"HexNumber", StyleHexNumber},
	{"Integer", StyleInteger},
	{"AllowLeadingWhite", AllowLeadingWhite},
	{"AllowTrailingWhite", AllowTrailingWhite},
	{"AllowLeadingSign", AllowLeadingSign},
	{"AllowTrailingSign", AllowTrailingSign},
	{"AllowParentheses", AllowParentheses},
	{"AllowDecimalPoint", AllowDecimalPoint},
	{"AllowThousands", AllowThousands},
	{"AllowExponent", AllowExponent},
	{"AllowCurrencySymbol", AllowCurrencySymbol},
	{"AllowHexSpecifier", AllowHexSpecifier},
}

// Has reports whether every flag in f is set.
func (s NumberStyles) Has(f NumberStyles) bool {
	return s&f == f
}

// Validate checks that s is a combination the numeric parsers understand.
// Hex may only be combined with the whitespace flags.
func (s NumberStyles) Validate() error {
	if s&^allStyles != 0 {
		return fmt.Errorf("unknown number style bits %#x", uint16(s&^allStyles))
	}
	if s.Has(AllowHexSpecifier) && s&^StyleHexNumber != 0 {
		return fmt.Errorf("number style %s mixes hex with non-whitespace flags", s)
	}
	return nil
}

func (s NumberStyles) String() string {
	if s == StyleNone {
		return "None"
	}
	var parts []string
	rest := s
	for _, n := range styleNames {
		if rest == 0 {
			break
		}
		if n.style != 0 && rest.Has(n.style) {
			parts = append(parts, n.name)
			rest &^= n.style
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint16(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseNumberStyles parses a "|" or "," separated list of style names,
// for example "Number|AllowExponent". Names are case-insensitive.
func ParseNumberStyles(text string) (NumberStyles, error) {
	var s NumberStyles
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '|' || r == ',' })
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty number style")
	}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if strings.EqualFold(f, "None") {
			continue
		}
		found := false
		for _, n := range styleNames {
			if strings.EqualFold(f, n.name) {
				s |= n.style
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown number style %q", f)
		}
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *NumberStyles) UnmarshalText(text []byte) error {
	parsed, err := ParseNumberStyles(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s NumberStyles) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
