package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"github.com/julianstephens/architect/internal/models"
)

type ProfileCmd struct {
	Show   ProfileShowCmd   `cmd:"" default:"1" help:"Show your profile."`
	Rename ProfileRenameCmd `cmd:"" help:"Change the name The Architect uses."`
	Reset  ProfileResetCmd  `cmd:"" help:"Clear your onboarding answers. Entries are kept."`
	Delete ProfileDeleteCmd `cmd:"" help:"Permanently delete every entry and your profile."`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *Context) error {
	a, err := ctx.App(context.Background())
	if err != nil {
		return err
	}
	p := a.Profiles().Profile()
	s := a.Profiles().Stats()

	name := p.Name()
	if name == "" {
		name = "(not set)"
	}
	ctx.printf("Name:       %s\n", name)
	ctx.printf("Onboarded:  %t\n", p.OnboardingComplete)
	ctx.printf("Entries:    %d  Streak: %d  Days active: %d\n\n", s.TotalEntries, s.CurrentStreak, s.DaysActive)

	for _, q := range models.OnboardingQuestions {
		if q.ID == models.QuestionName {
			continue
		}
		ctx.printf("%s\n  %s\n", q.Question, p.Answer(q.ID, "-"))
	}
	return nil
}

type ProfileRenameCmd struct {
	Name []string `arg:"" help:"New name."`
}

func (c *ProfileRenameCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, err := ctx.App(bg)
	if err != nil {
		return err
	}
	changed, err := a.Profiles().Rename(bg, strings.Join(c.Name, " "))
	if err != nil {
		return err
	}
	if !changed {
		return errors.New("name cannot be blank")
	}
	ctx.printf("✓ Name updated to %s\n", a.Profiles().Profile().Name())
	return nil
}

type ProfileResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ProfileResetCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, err := ctx.App(bg)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.confirm("This clears your onboarding answers. Your entries are kept.")
		if err != nil || !ok {
			return err
		}
	}
	if err := a.Profiles().Reset(bg); err != nil {
		return err
	}
	a.Onboarding().Reset()
	ctx.println("✓ Profile reset. Run 'architect onboard' to start over.")
	return nil
}

type ProfileDeleteCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ProfileDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, err := ctx.App(bg)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.confirm("⚠️  WARNING: This permanently deletes every entry and your profile.")
		if err != nil || !ok {
			return err
		}
	}
	if err := a.Profiles().Delete(bg); err != nil {
		return err
	}
	a.Onboarding().Reset()
	ctx.println("✓ Account deleted.")
	return nil
}

// confirm prints warning and reads a y/N answer from stdin.
func (c *Context) confirm(warning string) (bool, error) {
	c.println(warning)
	c.printf("Continue? [y/N]: ")

	reader := bufio.NewReader(c.stdin())
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		c.println("Cancelled.")
		return false, nil
	}
	return true, nil
}
