package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/architect/internal/errors"
	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/models"
)

type WriteCmd struct {
	Text     []string `arg:"" optional:"" help:"Entry text. Prompts when omitted."`
	Category string   `short:"c" default:"mindset" enum:"mindset,business,habits,decision" help:"Entry category (mindset, business, habits, decision)."`
	Converse bool     `help:"Keep the conversation going with follow-up replies read from stdin."`
}

func (c *WriteCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, err := ctx.App(bg)
	if err != nil {
		return err
	}
	if !a.Book().Profile().OnboardingComplete {
		ctx.println("Tip: run 'architect onboard' so The Architect knows who you are.")
	}

	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return err
	}

	text := strings.Join(c.Text, " ")
	if strings.TrimSpace(text) == "" {
		if text, err = ctx.promptEntry(); err != nil {
			return err
		}
	}

	ctrl := a.Journal()
	if ctrl.State() == journal.Responding {
		ctrl.StartNewSession()
	}
	resp, err := ctrl.SubmitEntry(bg, text, category)
	if err != nil {
		if errors.Is(err, journal.ErrEmptyInput) {
			return errors.New("entry is empty")
		}
		return err
	}

	meta := category.Meta()
	ctx.printf("%s %s entry saved (%s)\n\n", meta.Icon, meta.Label, resp.Entry.Date)
	ctx.printf("The Architect:\n%s\n", resp.Text)
	if resp.Degraded {
		ctx.println("\n(The Architect is unreachable right now; this is a placeholder reply.)")
	}

	if c.Converse {
		c.converse(bg, ctx, ctrl)
	}

	if err := ctx.flush(bg); err != nil {
		return fmt.Errorf("entry kept in memory but could not be saved: %w", err)
	}
	return nil
}

// converse reads replies line by line until a blank line or EOF. Failed
// replies are reported and can be retried.
func (c *WriteCmd) converse(ctx context.Context, appCtx *Context, ctrl *journal.Controller) {
	scanner := bufio.NewScanner(appCtx.stdin())
	for {
		appCtx.printf("\n> ")
		if !scanner.Scan() {
			appCtx.println()
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			return
		}
		resp, err := ctrl.ReplyInConversation(ctx, line)
		if err != nil {
			appCtx.printf("%s\n", apperrors.Format(err))
			continue
		}
		appCtx.printf("\nThe Architect:\n%s\n", resp.Text)
	}
}

// promptEntry asks for the entry text, from stdin when it is redirected.
func (c *Context) promptEntry() (string, error) {
	if c.In != nil {
		scanner := bufio.NewScanner(c.In)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		return strings.Join(lines, "\n"), scanner.Err()
	}

	var text string
	err := huh.NewText().
		Title("What's on your mind?").
		Value(&text).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", apperrors.ErrInterrupted
	}
	return text, err
}
