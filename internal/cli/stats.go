package cli

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

type StatsCmd struct {
	JSON bool `help:"Print machine-readable JSON."`
}

type statsOutput struct {
	TotalEntries  int `json:"totalEntries"`
	CurrentStreak int `json:"currentStreak"`
	DaysActive    int `json:"daysActive"`
}

func (c *StatsCmd) Run(ctx *Context) error {
	a, err := ctx.App(context.Background())
	if err != nil {
		return err
	}
	s := a.Book().Stats()

	if c.JSON {
		out, err := json.MarshalIndent(statsOutput(s), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		ctx.println(string(out))
		return nil
	}

	ctx.printf("Entries:     %d\n", s.TotalEntries)
	ctx.printf("Day streak:  %d\n", s.CurrentStreak)
	ctx.printf("Days active: %d\n", s.DaysActive)
	return nil
}
