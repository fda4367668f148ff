// Package streak derives consecutive-day activity from journal entries.
package streak

import (
	"sort"
	"time"

	"github.com/julianstephens/architect/internal/models"
	"github.com/julianstephens/architect/internal/utils"
)

// Calculator computes streaks relative to a clock and a calendar location.
// The zero value uses time.Now, time.Local and the default date layouts.
type Calculator struct {
	Now      func() time.Time
	Location *time.Location
	Layouts  []string
}

// New returns a calculator reading dates in loc with the configured layout
// accepted first.
func New(loc *time.Location, layout string) *Calculator {
	return &Calculator{Now: time.Now, Location: loc, Layouts: utils.DateLayouts(layout)}
}

func (c *Calculator) loc() *time.Location {
	if c == nil || c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Calculator) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Calculator) layouts() []string {
	if c == nil || len(c.Layouts) == 0 {
		return utils.DateLayouts("")
	}
	return c.Layouts
}

// days returns the distinct calendar days of entries as civil dates, newest
// first. Dates that match no layout are skipped.
func (c *Calculator) days(entries []models.Entry) []time.Time {
	seen := make(map[string]struct{}, len(entries))
	days := make([]time.Time, 0, len(entries))
	// Parsed in UTC so they compare with utils.CivilDate.
	for _, e := range entries {
		if _, ok := seen[e.Date]; ok {
			continue
		}
		seen[e.Date] = struct{}{}
		d, err := utils.ParseDateInLocation(e.Date, time.UTC, c.layouts()...)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	// Different spellings of one day ("6/5/2024", "2024-06-05") count once.
	out := days[:0]
	for i, d := range days {
		if i > 0 && d.Equal(out[len(out)-1]) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Compute returns the number of consecutive calendar days, ending today or
// yesterday, that have at least one entry. It is pure for a fixed clock.
func (c *Calculator) Compute(entries []models.Entry) int {
	if len(entries) == 0 {
		return 0
	}
	days := c.days(entries)
	if len(days) == 0 {
		return 0
	}

	today := utils.CivilDate(c.now(), c.loc())
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	current := days[0]
	for _, d := range days[1:] {
		if !d.Equal(current.AddDate(0, 0, -1)) {
			break
		}
		streak++
		current = d
	}
	return streak
}

// DaysActive is the number of distinct entry dates.
func (c *Calculator) DaysActive(entries []models.Entry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Date] = struct{}{}
	}
	return len(seen)
}
