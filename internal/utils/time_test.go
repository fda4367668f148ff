package utils

import (
	"errors"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{name: "empty is local", tz: ""},
		{name: "Local", tz: "Local"},
		{name: "UTC", tz: "UTC"},
		{name: "IANA", tz: "America/New_York"},
		{name: "invalid", tz: "Not/AZone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Error("LoadLocation() returned nil location")
			}
		})
	}
}

func TestCivilDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:30 UTC on June 10 is still June 9 in New York.
	in := time.Date(2024, time.June, 10, 2, 30, 0, 0, time.UTC)
	got := CivilDate(in, loc)
	want := time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CivilDate() = %v, want %v", got, want)
	}
}

func TestFormatLocaleDate(t *testing.T) {
	ts := time.Date(2024, time.June, 5, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{layout: "", want: "6/5/2024"},
		{layout: "2006-01-02", want: "2024-06-05"},
		{layout: "01/02/2006", want: "06/05/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatLocaleDate(ts, time.UTC, tt.layout); got != tt.want {
				t.Errorf("FormatLocaleDate(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestParseDateInLocation(t *testing.T) {
	want := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"6/5/2024", "2024-06-05", "06/05/2024", " 6/5/2024 "} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDateInLocation(in, time.UTC)
			if err != nil {
				t.Fatalf("ParseDateInLocation(%q) error = %v", in, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDateInLocation(%q) = %v, want %v", in, got, want)
			}
		})
	}

	if _, err := ParseDateInLocation("yesterday", time.UTC); !errors.Is(err, ErrUnparseableDate) {
		t.Errorf("expected ErrUnparseableDate, got %v", err)
	}
}

func TestDateLayouts(t *testing.T) {
	got := DateLayouts("2006-01-02")
	if len(got) != 3 || got[0] != "2006-01-02" {
		t.Errorf("DateLayouts() = %v, want configured layout first without duplicates", got)
	}
}

func TestValidateDateLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   bool
	}{
		{layout: "1/2/2006", want: true},
		{layout: "2006-01-02", want: true},
		{layout: "Jan 2", want: false},
		{layout: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := ValidateDateLayout(tt.layout); got != tt.want {
				t.Errorf("ValidateDateLayout(%q) = %v, want %v", tt.layout, got, tt.want)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("Local") || !ValidateTimezone("UTC") {
		t.Error("expected Local and UTC to be valid")
	}
	if ValidateTimezone("Mars/Olympus") {
		t.Error("expected invalid timezone to be rejected")
	}
}
