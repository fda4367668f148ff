package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/architect/internal/app"
	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/tui/components/entries"
	"github.com/julianstephens/architect/internal/voice"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.composer.SetWidth(max(msg.Width-6, 20))
		m.answer.Width = max(msg.Width-8, 20)
		m.history.SetSize(msg.Width-4, max(msg.Height-6, 5))
		m.conversation.SetSize(msg.Width-4, max(msg.Height-16, 5))
		return m, nil

	case spinner.TickMsg:
		if !m.inflight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.warning = "Could not read your journal, starting fresh: " + msg.err.Error()
		}
		m.syncQuestion()
		m.refreshHistory()
		return m, nil

	case submittedMsg:
		return m.handleSubmitted(msg)

	case repliedMsg:
		return m.handleReplied(msg)

	case voiceTickMsg:
		if vp := m.app.Voice(); vp != nil && vp.State() != voice.Idle {
			return m, voiceTick()
		}
		return m, nil

	case voiceStoppedMsg:
		if msg.err != nil && !errors.Is(msg.err, voice.ErrDiscarded) && !errors.Is(msg.err, voice.ErrNotCapturing) {
			m.warning = msg.err.Error()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.warning = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = "Copied to clipboard."
		}
		return m, nil

	case entries.CopyEntryMsg:
		return m, copyCmd(msg.Entry.Text)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.notice = ""
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if !m.loaded {
		return m, nil
	}

	switch m.app.View() {
	case app.Onboarding:
		return m.updateOnboarding(msg)
	case app.Home:
		return m.updateHome(msg)
	case app.Journal:
		return m.updateJournal(msg)
	case app.History:
		return m.updateHistory(msg)
	case app.Profile:
		return m.updateProfile(msg)
	}
	return m, nil
}

// do applies a navigation action, surfacing failures in the status line.
func (m *Model) do(action app.Action) bool {
	if _, err := m.app.Do(m.ctx, action); err != nil {
		logger.Warn("Action failed", "action", action, "error", err)
		m.warning = err.Error()
		return false
	}
	m.warning = ""
	return true
}

func (m Model) updateOnboarding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Enter) {
		view, err := m.app.AnswerOnboarding(m.ctx, m.answer.Value())
		if err != nil {
			m.warning = err.Error()
			return m, nil
		}
		m.warning = ""
		m.answer.Reset()
		m.syncQuestion()
		if view == app.Home {
			m.notice = "Welcome, " + m.app.Book().Profile().Name() + "."
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m Model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case keyMsg.String() == "q":
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Journal):
		if m.do(app.OpenJournal) {
			m.resetJournal()
			return m, textarea.Blink
		}
	case key.Matches(keyMsg, m.keys.History):
		if m.do(app.OpenHistory) {
			m.refreshHistory()
		}
	case key.Matches(keyMsg, m.keys.Profile):
		m.do(app.OpenProfile)
	}
	return m, nil
}

func (m Model) updateJournal(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	ctrl := m.app.Journal()
	vp := m.app.Voice()

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		if vp != nil {
			vp.Discard()
		}
		m.do(app.Back)
		return m, nil

	case key.Matches(keyMsg, m.keys.NewEntry):
		if m.do(app.NewEntry) {
			m.resetJournal()
			m.inflight = false
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Category):
		if ctrl.State() == journal.Composing {
			m.category = nextCategory(m.category)
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Submit):
		return m.send()

	case key.Matches(keyMsg, m.keys.Copy):
		if text, _ := ctrl.CurrentResponse(); text != "" {
			return m, copyCmd(text)
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Voice):
		return m.toggleVoice()

	case key.Matches(keyMsg, m.keys.UseDraft), key.Matches(keyMsg, m.keys.Refine):
		if vp == nil {
			return m, nil
		}
		take := vp.Confirm
		if key.Matches(keyMsg, m.keys.Refine) {
			take = vp.Refine
		}
		if d, ok := take(); ok {
			m.composer.SetValue(d.Text)
			if d.Focus {
				m.composer.Focus()
				m.composer.CursorEnd()
				m.notice = "Refine your draft, then send it."
			}
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Discard):
		if vp != nil {
			vp.Discard()
		}
		return m, nil
	}

	if m.inflight {
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// send submits the composer as a new entry, or as a reply once the mentor
// has answered.
func (m Model) send() (tea.Model, tea.Cmd) {
	ctrl := m.app.Journal()
	if m.inflight || ctrl.Busy() {
		return m, nil
	}
	text := m.composer.Value()
	if isBlank(text) {
		return m, nil
	}

	var cmd tea.Cmd
	switch ctrl.State() {
	case journal.Composing:
		cmd = m.submitCmd(text, m.category)
	case journal.Responding:
		cmd = m.replyCmd(text)
	default:
		return m, nil
	}
	m.sent = text
	m.composer.Reset()
	m.inflight = true
	m.warning = ""
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	// A request from an abandoned session must not clear the state of the
	// one in flight now. Its entry is saved, so history still refreshes.
	if msg.err == nil && msg.resp.Stale {
		if msg.resp.PersistErr != nil {
			m.warning = "Your entry could not be saved yet; it will be retried on the next save."
		}
		m.refreshHistory()
		return m, nil
	}
	m.inflight = false
	m.sent = ""
	if msg.err != nil {
		if !errors.Is(msg.err, journal.ErrEmptyInput) {
			m.warning = msg.err.Error()
		}
		return m, nil
	}
	if msg.resp.PersistErr != nil {
		m.warning = "Your entry could not be saved yet; it will be retried on the next save."
	}
	m.refreshHistory()
	if msg.resp.Degraded {
		m.notice = "The Architect is unreachable right now."
	}
	m.composer.Placeholder = replyPlaceholder
	m.conversation.SetTurns(m.app.Journal().History())
	return m, nil
}

func (m Model) handleReplied(msg repliedMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil && msg.resp.Stale {
		return m, nil
	}
	m.inflight = false
	if msg.err != nil {
		// Give the reply back so it can be resent.
		if !errors.Is(msg.err, journal.ErrEmptyInput) {
			m.warning = msg.err.Error()
			m.composer.SetValue(m.sent)
		}
		m.sent = ""
		return m, nil
	}
	m.sent = ""
	m.conversation.SetTurns(m.app.Journal().History())
	return m, nil
}

func (m Model) toggleVoice() (tea.Model, tea.Cmd) {
	vp := m.app.Voice()
	if vp == nil {
		m.warning = "Voice capture is not configured (set voice.command)."
		return m, nil
	}
	switch vp.State() {
	case voice.Capturing:
		return m, tea.Batch(m.voiceStopCmd(), voiceTick())
	case voice.Distilling:
		return m, nil
	}
	if err := vp.Start(m.ctx); err != nil {
		m.warning = err.Error()
		return m, voiceTick()
	}
	m.warning = ""
	return m, voiceTick()
}

func (m Model) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.history.Filtering() {
		switch {
		case key.Matches(keyMsg, m.keys.Back), keyMsg.String() == "q":
			m.do(app.Back)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m Model) updateProfile(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Back), keyMsg.String() == "q":
		m.do(app.Back)
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Rename):
		return m.openForm(formRename)
	case key.Matches(keyMsg, m.keys.Reset):
		return m.openForm(formReset)
	case key.Matches(keyMsg, m.keys.Delete):
		return m.openForm(formDelete)
	}
	return m, nil
}

func (m Model) openForm(kind formKind) (tea.Model, tea.Cmd) {
	m.formValues = &formValues{Name: m.app.Book().Profile().Name()}
	m.formKind = kind

	switch kind {
	case formRename:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("What should I call you?").
				Value(&m.formValues.Name),
		))
	case formReset:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Reset your profile?").
				Description("Your onboarding answers are cleared. Your entries are kept.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(&m.formValues.Confirm),
		))
	case formDelete:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Delete your account?").
				Description("Every entry and your profile are permanently deleted.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.formValues.Confirm),
		))
	}
	m.form = m.form.WithShowHelp(false)
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.applyForm()
		m.closeForm()
	case huh.StateAborted:
		m.closeForm()
	}
	return m, cmd
}

func (m *Model) applyForm() {
	switch m.formKind {
	case formRename:
		changed, err := m.app.Profiles().Rename(m.ctx, m.formValues.Name)
		switch {
		case err != nil:
			m.warning = "Name changed but could not be saved: " + err.Error()
		case changed:
			m.notice = "Name updated."
		}
	case formReset:
		if m.formValues.Confirm && m.do(app.ResetProfile) {
			m.answer.Reset()
			m.syncQuestion()
		}
	case formDelete:
		if m.formValues.Confirm && m.do(app.DeleteAccount) {
			m.answer.Reset()
			m.syncQuestion()
			m.refreshHistory()
		}
	}
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
	m.formValues = nil
}
