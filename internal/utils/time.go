package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/architect/internal/constants"
)

// ErrUnparseableDate is returned when a date string matches none of the accepted layouts.
var ErrUnparseableDate = errors.New("unparseable date")

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// CivilDate returns t's calendar day in loc as midnight UTC. Civil dates step
// by exactly one day with AddDate even where DST skips local midnight.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatLocaleDate renders the calendar day of t in loc using layout.
// An empty layout falls back to the en-US short date form.
func FormatLocaleDate(t time.Time, loc *time.Location, layout string) string {
	if layout == "" {
		layout = constants.LocaleDateFormat
	}
	return t.In(loc).Format(layout)
}

// DateLayouts returns the layouts accepted when reading stored dates: the
// configured one first, then ISO and zero-padded en-US forms.
func DateLayouts(configured string) []string {
	layouts := make([]string, 0, 3)
	seen := map[string]bool{}
	for _, l := range []string{configured, constants.LocaleDateFormat, constants.DateFormat, "01/02/2006"} {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		layouts = append(layouts, l)
	}
	return layouts
}

// ParseDateInLocation parses a calendar date string using the first matching
// layout and returns midnight of that day in loc.
func ParseDateInLocation(dateStr string, loc *time.Location, layouts ...string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = DateLayouts("")
	}
	s := strings.TrimSpace(dateStr)
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, dateStr)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// ValidateDateLayout checks that layout round-trips a calendar date.
func ValidateDateLayout(layout string) bool {
	if layout == "" {
		return false
	}
	ref := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	t, err := time.Parse(layout, ref.Format(layout))
	if err != nil {
		return false
	}
	return t.Year() == ref.Year() && t.Month() == ref.Month() && t.Day() == ref.Day()
}
