package store

import (
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 10, 12, 30, 45, 0, time.UTC)
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty falls back to now", raw: "", want: "2024-05-10T12:30:45"},
		{name: "whitespace falls back to now", raw: "   ", want: "2024-05-10T12:30:45"},
		{name: "bare year", raw: "2023", want: "2023-01-01T00:00:00"},
		{name: "bare pre-2000 year", raw: "1999", want: "1999-01-01T00:00:00"},
		{name: "year inside fuzzy text", raw: "Q3 2023 estimate", want: "2023-01-01T00:00:00"},
		{name: "year inside full date wins", raw: "2023-05-14", want: "2023-01-01T00:00:00"},
		{name: "parseable non-20xx date", raw: "March 15, 1999", want: "1999-03-15T00:00:00"},
		{name: "unparseable falls back to now", raw: "sometime soon", want: "2024-05-10T12:30:45"},
		{name: "surrounding whitespace trimmed", raw: " 2025 ", want: "2025-01-01T00:00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeDate(tc.raw, fixedClock)
			if got != tc.want {
				t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
