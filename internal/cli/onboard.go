package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	apperrors "github.com/julianstephens/architect/internal/errors"
	"github.com/julianstephens/architect/internal/models"
)

type OnboardCmd struct {
	From  string `help:"Read answers from a YAML file keyed by question id (name, dissatisfaction, complaint, five_years, ideal_life, identity, biggest_goal)." type:"existingfile"`
	Force bool   `help:"Run again even if onboarding is complete."`
}

func (c *OnboardCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, err := ctx.App(bg)
	if err != nil {
		return err
	}
	if a.Book().Profile().OnboardingComplete && !c.Force {
		ctx.println("Onboarding is already complete. Use --force to answer again.")
		return nil
	}

	var answers []string
	if c.From != "" {
		answers, err = answersFromFile(c.From)
	} else {
		answers, err = answersFromForm()
	}
	if err != nil {
		return err
	}

	machine := a.Onboarding()
	machine.Reset()
	for i, answer := range answers {
		ok, err := machine.Submit(bg, answer)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("question %d needs an answer", i+1)
		}
	}
	if !machine.Complete() {
		return errors.New("onboarding did not complete")
	}

	ctx.printf("✓ Welcome, %s. Run 'architect' to start journaling.\n", a.Book().Profile().Name())
	return nil
}

func answersFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	var byID map[models.QuestionID]string
	if err := yaml.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	answers := make([]string, len(models.OnboardingQuestions))
	for i, q := range models.OnboardingQuestions {
		answers[i] = byID[q.ID]
		if strings.TrimSpace(answers[i]) == "" {
			return nil, fmt.Errorf("missing answer for %q", q.ID)
		}
	}
	return answers, nil
}

func answersFromForm() ([]string, error) {
	answers := make([]string, len(models.OnboardingQuestions))
	groups := make([]*huh.Group, len(models.OnboardingQuestions))
	total := len(models.OnboardingQuestions)
	for i, q := range models.OnboardingQuestions {
		groups[i] = huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%d/%d  %s", i+1, total, q.Question)).
				Description(q.Context).
				Placeholder(q.Placeholder).
				Value(&answers[i]).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("an answer is required")
					}
					return nil
				}),
		)
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, apperrors.ErrInterrupted
		}
		return nil, err
	}
	return answers, nil
}
