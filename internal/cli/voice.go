package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/models"
)

// VoiceCmd captures one spoken entry through the configured speech-to-text
// command and prints the distilled draft.
type VoiceCmd struct {
	Submit   bool   `help:"Submit the draft as an entry instead of only printing it."`
	Category string `short:"c" default:"mindset" enum:"mindset,business,habits,decision" help:"Category for a submitted entry."`
}

func (c *VoiceCmd) Run(ctx *Context) error {
	bg := context.Background()
	a, err := ctx.App(bg)
	if err != nil {
		return err
	}
	p := a.Voice()
	if p == nil {
		return errors.New("voice capture is not configured; set voice.command in the config file")
	}

	if err := p.Start(bg); err != nil {
		return err
	}
	ctx.println(p.Status())
	ctx.println("Press Enter to stop.")
	if _, err := bufio.NewReader(ctx.stdin()).ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		p.Discard()
		return err
	}

	text, err := p.Stop(bg)
	if err != nil {
		p.Discard()
		return err
	}
	if strings.TrimSpace(text) == "" {
		ctx.println("Nothing was captured.")
		return nil
	}

	draft, _ := p.Confirm()
	ctx.println()
	ctx.println(draft.Text)
	if !c.Submit {
		return nil
	}

	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return err
	}
	ctrl := a.Journal()
	if ctrl.State() == journal.Responding {
		ctrl.StartNewSession()
	}
	resp, err := ctrl.SubmitEntry(bg, draft.Text, category)
	if err != nil {
		return err
	}
	ctx.printf("\nThe Architect:\n%s\n", resp.Text)
	return ctx.flush(bg)
}
