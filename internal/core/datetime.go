package core

import (
	"strings"
	"time"
)

// Layouts tried after the context's own layouts. They are culture-neutral.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	time.RFC1123Z,
	time.RFC1123,
	"20060102",
}

// nowFunc is replaced in tests so the pivot rule is deterministic.
var nowFunc = time.Now

// parseDateTime parses s using fc's layouts, then the ISO layouts, then fc's
// two-digit-year layouts. Text carrying an explicit offset is converted into
// the context location; text without one is read in it.
func parseDateTime(s string, fc *FormatContext) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = translateMonths(s, fc)
	loc := fc.location()

	for _, layout := range fc.DateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}

	pivotYear := nowFunc().Year() + fc.pivot()
	for _, layout := range fc.ShortYearLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if t, ok := withCentury(t, pivotYear); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

// withCentury moves a two-digit-year time into the latest century that keeps
// it at or before pivotYear. It reports false when the date does not exist in
// that century, as with 29 February 1900.
func withCentury(t time.Time, pivotYear int) (time.Time, bool) {
	year := pivotYear/100*100 + t.Year()%100
	if year > pivotYear {
		year -= 100
	}
	adj := time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if adj.Day() != t.Day() {
		return time.Time{}, false
	}
	return adj, true
}

// translateMonths replaces locale month names with their English equivalents.
// Full names are replaced before abbreviations so "Januar" never turns into
// "Janr".
func translateMonths(s string, fc *FormatContext) string {
	if fc.MonthNames[0] == "" && fc.AbbrevMonthNames[0] == "" {
		return s
	}
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		return s
	}
	for i, name := range fc.MonthNames {
		if name == "" {
			continue
		}
		if idx := strings.Index(lower, strings.ToLower(name)); idx >= 0 {
			return s[:idx] + englishMonths[i] + s[idx+len(name):]
		}
	}
	for i, name := range fc.AbbrevMonthNames {
		if name == "" {
			continue
		}
		if idx := strings.Index(lower, strings.ToLower(name)); idx >= 0 {
			return s[:idx] + englishAbbrevMonths[i] + s[idx+len(name):]
		}
	}
	return s
}
