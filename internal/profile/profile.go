// Package profile edits the user's profile on top of the shared journal book.
package profile

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/models"
)

// Manager implements onboarding.ProfileSink and the profile screen actions.
type Manager struct {
	book *journal.Book
}

func NewManager(book *journal.Book) *Manager {
	return &Manager{book: book}
}

// CompleteOnboarding stores the answers and marks onboarding done. Answers
// replace any earlier onboarding data wholesale.
func (m *Manager) CompleteOnboarding(ctx context.Context, answers map[models.QuestionID]string) error {
	_, err := m.book.UpdateProfile(ctx, func(p *models.Profile) {
		p.OnboardingData = maps.Clone(answers)
		p.OnboardingComplete = true
	})
	if err != nil {
		return fmt.Errorf("failed to save onboarding answers: %w", err)
	}
	logger.Info("Onboarding complete", "answers", len(answers))
	return nil
}

// Rename sets the preferred name. A blank name changes nothing and reports false.
func (m *Manager) Rename(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	if _, err := m.book.UpdateProfile(ctx, func(p *models.Profile) {
		p.OnboardingData[models.QuestionName] = name
	}); err != nil {
		return true, fmt.Errorf("failed to save name: %w", err)
	}
	return true, nil
}

// Reset clears the onboarding answers so the user onboards again. Entries
// and the entry count are kept.
func (m *Manager) Reset(ctx context.Context) error {
	if _, err := m.book.UpdateProfile(ctx, func(p *models.Profile) {
		p.OnboardingData = map[models.QuestionID]string{}
		p.OnboardingComplete = false
	}); err != nil {
		return fmt.Errorf("failed to reset profile: %w", err)
	}
	logger.Info("Profile reset")
	return nil
}

// Delete removes every stored record and leaves a new user's empty state.
func (m *Manager) Delete(ctx context.Context) error {
	if err := m.book.Clear(ctx); err != nil {
		return err
	}
	logger.Info("Account deleted")
	return nil
}

func (m *Manager) Profile() models.Profile { return m.book.Profile() }

func (m *Manager) Stats() journal.Stats { return m.book.Stats() }
