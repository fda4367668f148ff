package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := ctx.newApp()
	if err != nil {
		return err
	}
	ctx.app = a

	p := tea.NewProgram(tui.NewModel(bg, a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	if vp := a.Voice(); vp != nil {
		vp.Discard()
	}
	if err := ctx.flush(bg); err != nil {
		logger.Error("Failed to save journal on exit", "error", err)
		return fmt.Errorf("some changes could not be saved: %w", err)
	}
	return nil
}
