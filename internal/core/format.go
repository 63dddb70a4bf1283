package core

// format.go defines the locale context consumed by numeric and date parsing.
//
// A FormatContext carries the symbols a locale uses when writing numbers and
// dates. The converter never guesses a locale: callers pick one with
// Invariant, ForLocale or ParseLocale (or build their own) and pass it in.

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DefaultTwoDigitYearPivot is how many years into the future a two-digit year
// may land before it is moved back a century.
const DefaultTwoDigitYearPivot = 20

// FormatContext holds locale-specific formatting rules.
// Treat it as read-only once it is shared between goroutines.
type FormatContext struct {
	Tag language.Tag

	DecimalSeparator string
	GroupSeparator   string
	PositiveSign     string
	NegativeSign     string
	CurrencySymbol   string

	NaNSymbol        string
	PositiveInfinity string
	NegativeInfinity string

	// DateLayouts are Go time layouts tried before the ISO layouts.
	DateLayouts []string

	// ShortYearLayouts use a two-digit year ("06") and follow the locale's
	// field order. The century is chosen with TwoDigitYearPivot.
	ShortYearLayouts []string

	// MonthNames and AbbrevMonthNames, when set, are translated to the
	// English names Go layouts understand.
	MonthNames       [12]string
	AbbrevMonthNames [12]string

	// Location is used for date-times without an explicit offset. Nil means UTC.
	Location *time.Location

	// TwoDigitYearPivot, when zero, defaults to DefaultTwoDigitYearPivot.
	TwoDigitYearPivot int
}

func (fc *FormatContext) location() *time.Location {
	if fc.Location == nil {
		return time.UTC
	}
	return fc.Location
}

func (fc *FormatContext) pivot() int {
	if fc.TwoDigitYearPivot <= 0 {
		return DefaultTwoDigitYearPivot
	}
	return fc.TwoDigitYearPivot
}

// Invariant returns the culture-neutral context: "." decimals, "," groups,
// month-first dates.
func Invariant() *FormatContext {
	return newContext(language.Und)
}

// ForLocale returns the built-in context that best matches tag.
// Tags with no reasonable match fall back to Invariant.
func ForLocale(tag language.Tag) *FormatContext {
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return Invariant()
	}
	return newContext(localeTags[idx])
}

// ParseLocale parses a BCP 47 tag such as "de-DE" and returns its context.
// An empty string or "und" selects Invariant.
func ParseLocale(s string) (*FormatContext, error) {
	if s == "" {
		return Invariant(), nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", s, err)
	}
	return ForLocale(tag), nil
}

// Locales returns the tags that have a built-in table.
func Locales() []language.Tag {
	return append([]language.Tag(nil), localeTags...)
}

var englishMonths = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var englishAbbrevMonths = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// localeTags lists the built-in tables. Und must stay first: the matcher
// falls back to the first entry.
var localeTags = []language.Tag{
	language.Und,
	language.AmericanEnglish,
	language.BritishEnglish,
	language.MustParse("de-DE"),
	language.MustParse("fr-FR"),
	language.MustParse("es-ES"),
	language.MustParse("ja-JP"),
}

var localeMatcher = language.NewMatcher(localeTags)

// newContext builds a fresh context for one of localeTags so callers can
// modify the result without affecting other callers.
func newContext(tag language.Tag) *FormatContext {
	fc := &FormatContext{
		Tag:              tag,
		DecimalSeparator: ".",
		GroupSeparator:   ",",
		PositiveSign:     "+",
		NegativeSign:     "-",
		CurrencySymbol:   "¤",
		NaNSymbol:        "NaN",
		PositiveInfinity: "Infinity",
		NegativeInfinity: "-Infinity",
		DateLayouts: []string{
			"1/2/2006 15:04:05.999999999",
			"1/2/2006 15:04:05",
			"1/2/2006 15:04",
			"1/2/2006 3:04:05 PM",
			"1/2/2006 3:04 PM",
			"1/2/2006",
			"January 2, 2006 15:04:05",
			"January 2, 2006",
			"Jan 2, 2006",
			"Monday, January 2, 2006",
			"Monday, 02 January 2006 15:04:05",
			"2 January 2006 15:04:05",
			"2 January 2006",
			"2 Jan 2006",
			"January 2006",
		},
		ShortYearLayouts: []string{
			"1/2/06 15:04:05",
			"1/2/06 15:04",
			"1/2/06 3:04:05 PM",
			"1/2/06 3:04 PM",
			"1/2/06",
			"1-2-06",
		},
	}

	switch tag.String() {
	case "en-US":
		fc.CurrencySymbol = "$"
		fc.DateLayouts = []string{
			"1/2/2006 3:04:05 PM",
			"1/2/2006 3:04 PM",
			"1/2/2006 15:04:05",
			"1/2/2006 15:04",
			"1/2/2006",
			"Jan 2, 2006",
			"January 2, 2006",
			"Monday, January 2, 2006",
		}
	case "en-GB":
		fc.CurrencySymbol = "£"
		fc.DateLayouts = []string{
			"02/01/2006 15:04:05",
			"02/01/2006 15:04",
			"2/1/2006",
			"02/01/2006",
			"2 Jan 2006",
			"2 January 2006",
		}
		fc.ShortYearLayouts = []string{
			"2/1/06 15:04:05",
			"2/1/06 15:04",
			"2/1/06",
			"2-1-06",
		}
	case "de-DE":
		fc.DecimalSeparator = ","
		fc.GroupSeparator = "."
		fc.CurrencySymbol = "€"
		fc.NaNSymbol = "NaN"
		fc.PositiveInfinity = "∞"
		fc.NegativeInfinity = "-∞"
		fc.DateLayouts = []string{
			"02.01.2006 15:04:05",
			"02.01.2006 15:04",
			"2.1.2006",
			"02.01.2006",
			"2. January 2006",
			"2. Jan 2006",
		}
		fc.ShortYearLayouts = []string{
			"2.1.06 15:04:05",
			"2.1.06 15:04",
			"2.1.06",
		}
		fc.MonthNames = [12]string{
			"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember",
		}
		fc.AbbrevMonthNames = [12]string{
			"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni",
			"Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez.",
		}
	case "fr-FR":
		fc.DecimalSeparator = ","
		fc.GroupSeparator = "\u202f"
		fc.CurrencySymbol = "€"
		fc.PositiveInfinity = "∞"
		fc.NegativeInfinity = "-∞"
		fc.DateLayouts = []string{
			"02/01/2006 15:04:05",
			"02/01/2006 15:04",
			"2/1/2006",
			"02/01/2006",
			"2 January 2006",
		}
		fc.ShortYearLayouts = []string{
			"2/1/06 15:04:05",
			"2/1/06 15:04",
			"2/1/06",
			"2-1-06",
		}
		fc.MonthNames = [12]string{
			"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre",
		}
	case "es-ES":
		fc.DecimalSeparator = ","
		fc.GroupSeparator = "."
		fc.CurrencySymbol = "€"
		fc.PositiveInfinity = "∞"
		fc.NegativeInfinity = "-∞"
		fc.DateLayouts = []string{
			"02/01/2006 15:04:05",
			"02/01/2006 15:04",
			"2/1/2006",
			"02/01/2006",
			"2 January 2006",
			"2 de January de 2006",
		}
		fc.ShortYearLayouts = []string{
			"2/1/06 15:04:05",
			"2/1/06 15:04",
			"2/1/06",
			"2-1-06",
		}
		fc.MonthNames = [12]string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		}
	case "ja-JP":
		fc.CurrencySymbol = "\uffe5"
		fc.DateLayouts = []string{
			"2006/01/02 15:04:05",
			"2006/01/02 15:04",
			"2006/1/2",
			"2006/01/02",
		}
		fc.ShortYearLayouts = []string{
			"06/1/2 15:04:05",
			"06/1/2 15:04",
			"06/1/2",
		}
	}
	return fc
}
