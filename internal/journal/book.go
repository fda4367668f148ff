package journal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/models"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/streak"
)

// Stats are the figures shown on the home screen.
type Stats struct {
	TotalEntries  int
	CurrentStreak int
	DaysActive    int
}

// Book is the in-memory copy of the user's entries and profile. Every
// mutation is applied in memory first and then written through to storage.
// A failed write is logged and leaves the book dirty until a later save
// succeeds; the in-memory state is never rolled back.
type Book struct {
	mu      sync.RWMutex
	repo    *storage.Repository
	calc    *streak.Calculator
	layout  string
	entries []models.Entry
	profile models.Profile
	dirty   bool
}

// NewBook returns an empty book. calc supplies the clock, the calendar
// location and the accepted date layouts; layout is used for new entries.
func NewBook(repo *storage.Repository, calc *streak.Calculator, layout string) *Book {
	if layout == "" {
		layout = constants.LocaleDateFormat
	}
	if calc == nil {
		calc = streak.New(time.Local, layout)
	}
	return &Book{
		repo:    repo,
		calc:    calc,
		layout:  layout,
		entries: []models.Entry{},
		profile: models.NewProfile(),
	}
}

// Load reads both records. A missing entries record is an empty journal; a
// missing profile marks a new user and yields default values. The stored
// streak is discarded and recomputed.
func (b *Book) Load(ctx context.Context) (newUser bool, err error) {
	entries, err := b.repo.LoadEntries(ctx)
	if err != nil {
		return false, err
	}

	profile, err := b.repo.LoadProfile(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		newUser = true
		profile = models.NewProfile()
	case err != nil:
		return false, err
	}
	profile.CurrentStreak = b.calc.Compute(entries)

	b.mu.Lock()
	b.entries = entries
	b.profile = profile
	b.dirty = false
	b.mu.Unlock()

	logger.Debug("Journal loaded", "entries", len(entries), "new_user", newUser)
	return newUser, nil
}

func (b *Book) now() time.Time {
	if b.calc.Now != nil {
		return b.calc.Now()
	}
	return time.Now()
}

func (b *Book) location() *time.Location {
	if b.calc.Location != nil {
		return b.calc.Location
	}
	return time.Local
}

// NewEntry stamps an entry at the current instant. Its date is the local
// calendar day of that same instant.
func (b *Book) NewEntry(text string, category models.Category) models.Entry {
	now := b.now()
	b.mu.RLock()
	id := models.NextEntryID(now, b.entries)
	b.mu.RUnlock()
	return models.NewEntry(id, text, category, now, b.location(), b.layout)
}

// AddEntry inserts e by timestamp so entries stay most-recent-first even
// when an older submission resolves late. It bumps the entry count,
// recomputes the streak and persists entries then profile. The stored entry
// (with its id bumped on collision) and the profile reflect the update even
// when the write fails.
func (b *Book) AddEntry(ctx context.Context, e models.Entry) (models.Entry, models.Profile, error) {
	b.mu.Lock()
	if slices.ContainsFunc(b.entries, func(x models.Entry) bool { return x.ID == e.ID }) {
		e.ID = models.NextEntryID(time.UnixMilli(e.ID), b.entries)
	}
	at := slices.IndexFunc(b.entries, func(x models.Entry) bool { return !x.Timestamp.After(e.Timestamp) })
	if at < 0 {
		at = len(b.entries)
	}
	b.entries = slices.Insert(b.entries, at, e)
	b.profile.TotalEntries++
	b.profile.CurrentStreak = b.calc.Compute(b.entries)
	entries := append([]models.Entry(nil), b.entries...)
	profile := b.profile.Clone()
	b.mu.Unlock()

	return e, profile, b.persist(ctx, entries, &profile)
}

// UpdateProfile applies fn to the profile and persists it.
func (b *Book) UpdateProfile(ctx context.Context, fn func(p *models.Profile)) (models.Profile, error) {
	b.mu.Lock()
	fn(&b.profile)
	b.profile.Normalize()
	profile := b.profile.Clone()
	b.mu.Unlock()

	return profile, b.persist(ctx, nil, &profile)
}

// Clear deletes both records and resets the book to a new user's state. If
// either delete fails the in-memory state is left alone and the book is
// marked dirty so a later Flush restores whatever was removed.
func (b *Book) Clear(ctx context.Context) error {
	err := errors.Join(b.repo.DeleteProfile(ctx), b.repo.DeleteEntries(ctx))

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.dirty = true
		logger.Error("Failed to delete journal records", "error", err)
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	b.entries = []models.Entry{}
	b.profile = models.NewProfile()
	b.dirty = false
	return nil
}

// persist writes entries (when non-nil) and then profile. On failure the
// book is marked dirty.
func (b *Book) persist(ctx context.Context, entries []models.Entry, profile *models.Profile) error {
	var err error
	if entries != nil {
		err = b.repo.SaveEntries(ctx, entries)
	}
	if err == nil && profile != nil {
		err = b.repo.SaveProfile(ctx, *profile)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.dirty = true
		logger.Error("Failed to persist journal", "error", err)
		return err
	}
	if entries != nil {
		b.dirty = false
	}
	return nil
}

// Flush rewrites both records whole. It clears the dirty flag on success.
func (b *Book) Flush(ctx context.Context) error {
	b.mu.RLock()
	entries := append([]models.Entry{}, b.entries...)
	profile := b.profile.Clone()
	b.mu.RUnlock()
	return b.persist(ctx, entries, &profile)
}

// Dirty reports whether the last write failed, so the stored records may lag
// the in-memory state.
func (b *Book) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// Entries returns a copy of all entries, most recent first.
func (b *Book) Entries() []models.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Entry{}, b.entries...)
}

// Recent returns at most n entries, most recent first.
func (b *Book) Recent(n int) []models.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n = min(n, len(b.entries))
	return append([]models.Entry{}, b.entries[:n]...)
}

func (b *Book) Profile() models.Profile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.profile.Clone()
}

// Stats recomputes the streak against the current clock.
func (b *Book) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		TotalEntries:  b.profile.TotalEntries,
		CurrentStreak: b.calc.Compute(b.entries),
		DaysActive:    b.calc.DaysActive(b.entries),
	}
}
