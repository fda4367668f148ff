package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/architect/internal/app"
	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/models"
)

const voicePollInterval = 200 * time.Millisecond

type loadedMsg struct {
	view app.View
	err  error
}

type submittedMsg struct {
	resp journal.Response
	err  error
}

type repliedMsg struct {
	resp journal.Response
	err  error
}

type voiceTickMsg struct{}

type voiceStoppedMsg struct {
	err error
}

type copiedMsg struct {
	err error
}

func (m Model) loadCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		view, err := a.Load(ctx)
		return loadedMsg{view: view, err: err}
	}
}

func (m Model) submitCmd(text string, cat models.Category) tea.Cmd {
	ctrl, ctx := m.app.Journal(), m.ctx
	return func() tea.Msg {
		resp, err := ctrl.SubmitEntry(ctx, text, cat)
		return submittedMsg{resp: resp, err: err}
	}
}

func (m Model) replyCmd(text string) tea.Cmd {
	ctrl, ctx := m.app.Journal(), m.ctx
	return func() tea.Msg {
		resp, err := ctrl.ReplyInConversation(ctx, text)
		return repliedMsg{resp: resp, err: err}
	}
}

// voiceStopCmd stops capture and waits for distillation, which may call the
// completion service.
func (m Model) voiceStopCmd() tea.Cmd {
	vp, ctx := m.app.Voice(), m.ctx
	return func() tea.Msg {
		_, err := vp.Stop(ctx)
		return voiceStoppedMsg{err: err}
	}
}

func voiceTick() tea.Cmd {
	return tea.Tick(voicePollInterval, func(time.Time) tea.Msg { return voiceTickMsg{} })
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}
