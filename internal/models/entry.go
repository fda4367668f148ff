package models

import "time"

// Entry is one journaled thought. Entries are immutable once created.
type Entry struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"` // UTC instant
	Date      string    `json:"date"`      // local calendar day, fixed at creation
}

// NewEntry builds an entry whose timestamp and date both derive from now.
// The date is the calendar day of now in loc rendered with layout.
func NewEntry(id int64, text string, category Category, now time.Time, loc *time.Location, layout string) Entry {
	return Entry{
		ID:        id,
		Text:      text,
		Category:  category,
		Timestamp: now.UTC(),
		Date:      now.In(loc).Format(layout),
	}
}

// NextEntryID returns a millisecond id that is strictly greater than every
// id in entries.
func NextEntryID(now time.Time, entries []Entry) int64 {
	id := now.UnixMilli()
	for _, e := range entries {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	return id
}

// Excerpt returns at most n runes of the entry text.
func (e Entry) Excerpt(n int) string {
	r := []rune(e.Text)
	if len(r) <= n {
		return e.Text
	}
	return string(r[:n])
}
