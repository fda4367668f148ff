package cli

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/julianstephens/architect/internal/models"
)

type HistoryCmd struct {
	Limit    int    `short:"n" help:"Show at most N entries (0 for all)."`
	Category string `help:"Only show entries in this category."`
	Copy     bool   `help:"Copy the most recent listed entry to the clipboard."`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	a, err := ctx.App(context.Background())
	if err != nil {
		return err
	}

	var filter models.Category
	if c.Category != "" {
		if filter, err = models.ParseCategory(c.Category); err != nil {
			return err
		}
	}

	var shown []models.Entry
	for _, e := range a.Book().Entries() {
		if filter != "" && e.Category != filter {
			continue
		}
		shown = append(shown, e)
		if c.Limit > 0 && len(shown) == c.Limit {
			break
		}
	}

	if len(shown) == 0 {
		ctx.println("No entries yet.")
		return nil
	}

	for _, e := range shown {
		meta := e.Category.Meta()
		ctx.printf("%s %-10s %s\n", meta.Icon, e.Date, meta.Label)
		ctx.printf("  %s\n\n", e.Text)
	}

	if c.Copy {
		if err := clipboard.WriteAll(shown[0].Text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		ctx.println("✓ Copied the most recent entry to the clipboard")
	}
	return nil
}
