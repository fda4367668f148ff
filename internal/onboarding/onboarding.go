// Package onboarding walks a new user through the fixed interview that seeds
// their profile.
package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/architect/internal/models"
)

// ProfileSink receives the completed answer set.
type ProfileSink interface {
	CompleteOnboarding(ctx context.Context, answers map[models.QuestionID]string) error
}

// Machine is a linear state machine over models.OnboardingQuestions. There is
// no skipping and no going back.
type Machine struct {
	questions []models.OnboardingQuestion
	sink      ProfileSink
	step      int
	answers   map[models.QuestionID]string
	complete  bool
}

// New returns a machine positioned at the first question.
func New(sink ProfileSink) *Machine {
	return &Machine{
		questions: models.OnboardingQuestions,
		sink:      sink,
		answers:   map[models.QuestionID]string{},
	}
}

// Current returns the question awaiting an answer. ok is false once complete.
func (m *Machine) Current() (q models.OnboardingQuestion, ok bool) {
	if m.complete {
		return models.OnboardingQuestion{}, false
	}
	return m.questions[m.step], true
}

// Submit records answer for the current question and advances. Blank answers
// are ignored and report false. After the last answer the mapping is handed
// to the sink; if the sink fails the machine stays on the last question so
// the answer can be resubmitted.
func (m *Machine) Submit(ctx context.Context, answer string) (bool, error) {
	if m.complete || strings.TrimSpace(answer) == "" {
		return false, nil
	}

	q := m.questions[m.step]
	m.answers[q.ID] = answer

	if m.step < len(m.questions)-1 {
		m.step++
		return true, nil
	}

	if m.sink != nil {
		if err := m.sink.CompleteOnboarding(ctx, m.Answers()); err != nil {
			return false, fmt.Errorf("failed to complete onboarding: %w", err)
		}
	}
	m.complete = true
	return true, nil
}

// Complete reports whether every question has been answered and handed off.
func (m *Machine) Complete() bool { return m.complete }

// Progress returns the 1-based question number and the question count.
func (m *Machine) Progress() (step, total int) {
	total = len(m.questions)
	if m.complete {
		return total, total
	}
	return m.step + 1, total
}

// Percent is the progress bar fill in [0,1].
func (m *Machine) Percent() float64 {
	step, total := m.Progress()
	return float64(step) / float64(total)
}

// Answers returns a copy of the answers recorded so far.
func (m *Machine) Answers() map[models.QuestionID]string {
	out := make(map[models.QuestionID]string, len(m.answers))
	for k, v := range m.answers {
		out[k] = v
	}
	return out
}

// Reset returns to the first question with no answers.
func (m *Machine) Reset() {
	m.step = 0
	m.complete = false
	m.answers = map[models.QuestionID]string{}
}
