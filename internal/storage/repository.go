package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/models"
)

// Repository reads and writes the two journal records as JSON blobs.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// LoadEntries returns the stored entries, most recent first. A missing
// record is an empty collection.
func (r *Repository) LoadEntries(ctx context.Context) ([]models.Entry, error) {
	raw, err := r.kv.Get(ctx, constants.EntriesKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	var entries []models.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (r *Repository) SaveEntries(ctx context.Context, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := r.kv.Set(ctx, constants.EntriesKey, string(data)); err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	return nil
}

// LoadProfile returns ErrNotFound when no profile has been saved, which marks
// a new user.
func (r *Repository) LoadProfile(ctx context.Context) (models.Profile, error) {
	raw, err := r.kv.Get(ctx, constants.ProfileKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.NewProfile(), ErrNotFound
		}
		return models.NewProfile(), fmt.Errorf("failed to read profile: %w", err)
	}

	p := models.NewProfile()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.NewProfile(), fmt.Errorf("failed to decode profile: %w", err)
	}
	p.Normalize()
	return p, nil
}

func (r *Repository) SaveProfile(ctx context.Context, p models.Profile) error {
	p.Normalize()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := r.kv.Set(ctx, constants.ProfileKey, string(data)); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func (r *Repository) DeleteProfile(ctx context.Context) error {
	if err := r.kv.Delete(ctx, constants.ProfileKey); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func (r *Repository) DeleteEntries(ctx context.Context) error {
	if err := r.kv.Delete(ctx, constants.EntriesKey); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}
