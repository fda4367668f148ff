package streak

import (
	"testing"
	"time"

	"github.com/julianstephens/architect/internal/models"
)

func fixedCalc(year int, month time.Month, day int) *Calculator {
	now := time.Date(year, month, day, 15, 30, 0, 0, time.UTC)
	return &Calculator{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

func entriesOn(dates ...string) []models.Entry {
	entries := make([]models.Entry, 0, len(dates))
	for i, d := range dates {
		entries = append(entries, models.Entry{ID: int64(i + 1), Text: "x", Category: models.CategoryMindset, Date: d})
	}
	return entries
}

func TestCompute(t *testing.T) {
	calc := fixedCalc(2024, time.June, 10)

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{name: "no entries", dates: nil, want: 0},
		{name: "today only", dates: []string{"6/10/2024"}, want: 1},
		{name: "yesterday only", dates: []string{"6/9/2024"}, want: 1},
		{name: "today and yesterday", dates: []string{"6/10/2024", "6/9/2024"}, want: 2},
		{name: "gap after yesterday", dates: []string{"6/10/2024", "6/9/2024", "6/7/2024"}, want: 2},
		{name: "most recent two days ago", dates: []string{"6/8/2024", "6/7/2024"}, want: 0},
		{name: "today and three days ago", dates: []string{"6/10/2024", "6/7/2024"}, want: 1},
		{name: "duplicate dates collapse", dates: []string{"6/10/2024", "6/10/2024", "6/9/2024", "6/9/2024"}, want: 2},
		{name: "unsorted input", dates: []string{"6/8/2024", "6/10/2024", "6/9/2024"}, want: 3},
		{name: "calendar not lexical order", dates: []string{"6/9/2024", "6/10/2024", "6/8/2024", "5/31/2024"}, want: 3},
		{name: "month boundary", dates: []string{"6/1/2024", "5/31/2024", "5/30/2024"}, want: 0},
		{name: "mixed layouts same day", dates: []string{"2024-06-10", "6/10/2024", "06/09/2024"}, want: 2},
		{name: "unparseable skipped", dates: []string{"garbage", "6/10/2024"}, want: 1},
		{name: "only unparseable", dates: []string{"garbage"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Compute(entriesOn(tt.dates...)); got != tt.want {
				t.Errorf("Compute(%v) = %d, want %d", tt.dates, got, tt.want)
			}
		})
	}
}

func TestComputeAcrossMonthBoundary(t *testing.T) {
	calc := fixedCalc(2024, time.March, 1)
	got := calc.Compute(entriesOn("3/1/2024", "2/29/2024", "2/28/2024"))
	if got != 3 {
		t.Errorf("Compute() = %d, want 3 across leap day", got)
	}
}

func TestComputeIdempotent(t *testing.T) {
	calc := fixedCalc(2024, time.June, 10)
	entries := entriesOn("6/10/2024", "6/9/2024", "6/8/2024", "6/1/2024")

	first := calc.Compute(entries)
	second := calc.Compute(entries)
	if first != second {
		t.Errorf("Compute() not idempotent: %d then %d", first, second)
	}
	if entries[0].Date != "6/10/2024" || entries[3].Date != "6/1/2024" {
		t.Error("Compute() reordered its input")
	}
}

func TestComputeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 20:00 UTC on June 9 is already June 10 at UTC+10.
	now := time.Date(2024, time.June, 9, 20, 0, 0, 0, time.UTC)
	calc := &Calculator{Now: func() time.Time { return now }, Location: loc}

	if got := calc.Compute(entriesOn("6/8/2024")); got != 0 {
		t.Errorf("Compute() = %d, want 0 when last entry is two local days ago", got)
	}
	if got := calc.Compute(entriesOn("6/10/2024", "6/9/2024")); got != 2 {
		t.Errorf("Compute() = %d, want 2", got)
	}
}

func TestComputeMidnightDSTTransition(t *testing.T) {
	// Santiago springs forward at 00:00 on 2024-09-08, so local midnight
	// does not exist that day.
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name  string
		now   time.Time
		dates []string
		want  int
	}{
		{
			name:  "run crosses the switch day",
			now:   time.Date(2024, time.September, 9, 12, 0, 0, 0, loc),
			dates: []string{"9/9/2024", "9/8/2024", "9/7/2024", "9/6/2024"},
			want:  4,
		},
		{
			name:  "today is the switch day",
			now:   time.Date(2024, time.September, 8, 12, 0, 0, 0, loc),
			dates: []string{"9/8/2024", "9/7/2024"},
			want:  2,
		},
		{
			name:  "switch day is yesterday",
			now:   time.Date(2024, time.September, 9, 0, 30, 0, 0, loc),
			dates: []string{"9/8/2024", "9/7/2024"},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			calc := &Calculator{Now: func() time.Time { return now }, Location: loc}
			if got := calc.Compute(entriesOn(tt.dates...)); got != tt.want {
				t.Errorf("Compute(%v) = %d, want %d", tt.dates, got, tt.want)
			}
		})
	}
}

func TestNewAcceptsConfiguredLayout(t *testing.T) {
	calc := New(time.UTC, "02.01.2006")
	calc.Now = func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) }

	if got := calc.Compute(entriesOn("10.06.2024", "09.06.2024")); got != 2 {
		t.Errorf("Compute() = %d, want 2", got)
	}
}

func TestZeroValueCalculator(t *testing.T) {
	var calc Calculator
	today := time.Now().Format("1/2/2006")
	if got := calc.Compute(entriesOn(today)); got != 1 {
		t.Errorf("Compute() = %d, want 1", got)
	}
}

func TestDaysActive(t *testing.T) {
	calc := fixedCalc(2024, time.June, 10)

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{name: "empty", want: 0},
		{name: "distinct", dates: []string{"6/10/2024", "6/9/2024", "5/1/2024"}, want: 3},
		{name: "duplicates", dates: []string{"6/10/2024", "6/10/2024", "6/9/2024"}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.DaysActive(entriesOn(tt.dates...)); got != tt.want {
				t.Errorf("DaysActive() = %d, want %d", got, tt.want)
			}
		})
	}
}
