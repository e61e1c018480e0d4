package store

import (
	"regexp"
	"strings"
	"time"
)

const isoDateTime = "2006-01-02T15:04:05"

var embeddedYear = regexp.MustCompile(`\b(20\d{2})\b`)

var dateLayouts = []string{
	time.RFC3339,
	isoDateTime,
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
}

// NormalizeDate coerces the free-form dates models emit into ISO-8601.
// A bare 4-digit year, or a year embedded in surrounding text ("Q3 2023
// estimate"), becomes January 1st of that year. Anything unparseable
// falls back to the current time.
func NormalizeDate(raw string, now func() time.Time) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return now().Format(isoDateTime)
	}
	if isYear(trimmed) {
		return trimmed + "-01-01T00:00:00"
	}
	if m := embeddedYear.FindStringSubmatch(trimmed); m != nil {
		return m[1] + "-01-01T00:00:00"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(isoDateTime)
		}
	}
	return now().Format(isoDateTime)
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
