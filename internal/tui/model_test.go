package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/architect/internal/app"
	"github.com/julianstephens/architect/internal/completion"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/models"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/streak"
)

func newTestModel(t *testing.T, svc completion.Service) Model {
	t.Helper()
	book := journal.NewBook(storage.NewRepository(storage.NewMemoryStore()), streak.New(time.UTC, constants.LocaleDateFormat), "")
	a := app.New(book, journal.NewController(book, svc), nil)
	m := NewModel(context.Background(), a)
	// Blinking cursors schedule timers on every keystroke.
	m.composer.Cursor.SetMode(cursor.CursorStatic)
	m.answer.Cursor.SetMode(cursor.CursorStatic)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = step(t, m, m.loadCmd()())
	return m
}

// step feeds msg to the model and runs any command it returns, feeding
// completion results back in. Timer-driven messages are dropped.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, out := range run(cmd) {
		switch out.(type) {
		case loadedMsg, submittedMsg, repliedMsg:
			m = step(t, m, out)
		}
	}
	return m
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	return step(t, m, tea.KeyMsg{Type: k})
}

func mentor(reply string) completion.Service {
	return completion.Func(func(context.Context, completion.Request) (string, error) {
		return reply, nil
	})
}

func onboard(t *testing.T, m Model) Model {
	t.Helper()
	for range models.OnboardingQuestions {
		m = typeText(t, m, "Ada")
		m = press(t, m, tea.KeyEnter)
	}
	require.Equal(t, app.Home, m.app.View())
	return m
}

func TestOnboardingFlow(t *testing.T) {
	m := newTestModel(t, mentor("ok"))
	require.Equal(t, app.Onboarding, m.app.View())
	assert.Contains(t, m.View(), "Question 1 of 7")

	// Blank answers do not advance.
	m = press(t, m, tea.KeyEnter)
	step, _ := m.app.Onboarding().Progress()
	assert.Equal(t, 1, step)

	m = onboard(t, m)
	assert.Equal(t, "Ada", m.app.Book().Profile().Name())
	assert.Contains(t, m.View(), "Welcome back, Ada.")
}

func TestJournalSubmitAndReply(t *testing.T) {
	m := onboard(t, newTestModel(t, mentor("What is underneath that?")))

	m = typeText(t, m, "w")
	require.Equal(t, app.Journal, m.app.View())

	m = press(t, m, tea.KeyTab)
	assert.Equal(t, models.CategoryBusiness, m.category)

	m = typeText(t, m, "I keep postponing the launch")
	m = press(t, m, tea.KeyCtrlS)

	assert.False(t, m.inflight)
	assert.Equal(t, journal.Responding, m.app.Journal().State())
	require.Len(t, m.app.Book().Entries(), 1)
	assert.Equal(t, models.CategoryBusiness, m.app.Book().Entries()[0].Category)
	assert.Contains(t, m.View(), "What is underneath that?")

	m = typeText(t, m, "Fear of being judged")
	m = press(t, m, tea.KeyCtrlS)
	assert.Len(t, m.app.Journal().History(), 4)
	assert.Len(t, m.app.Book().Entries(), 1, "replies are not persisted")

	m = press(t, m, tea.KeyCtrlN)
	assert.Equal(t, journal.Composing, m.app.Journal().State())
	assert.Empty(t, m.app.Journal().History())
}

func TestJournalDegradedResponse(t *testing.T) {
	svc := completion.Func(func(context.Context, completion.Request) (string, error) {
		return "", errors.New("offline")
	})
	m := onboard(t, newTestModel(t, svc))
	m = typeText(t, m, "w")
	m = typeText(t, m, "hello")
	m = press(t, m, tea.KeyCtrlS)

	text, degraded := m.app.Journal().CurrentResponse()
	assert.True(t, degraded)
	assert.Equal(t, constants.FallbackResponse, text)
	assert.Len(t, m.app.Book().Entries(), 1)
	assert.NotEmpty(t, m.notice)
}

func TestReplyFailureRestoresText(t *testing.T) {
	calls := 0
	svc := completion.Func(func(context.Context, completion.Request) (string, error) {
		calls++
		if calls > 1 {
			return "", errors.New("timeout")
		}
		return "Say more.", nil
	})
	m := onboard(t, newTestModel(t, svc))
	m = typeText(t, m, "w")
	m = typeText(t, m, "first")
	m = press(t, m, tea.KeyCtrlS)

	m = typeText(t, m, "second")
	m = press(t, m, tea.KeyCtrlS)
	assert.Equal(t, "second", m.composer.Value())
	assert.Contains(t, m.warning, "mentor reply failed")
	assert.Len(t, m.app.Journal().History(), 2)
}

func TestBlankSubmitIsIgnored(t *testing.T) {
	m := onboard(t, newTestModel(t, mentor("ok")))
	m = typeText(t, m, "w")
	m = typeText(t, m, "   ")
	m = press(t, m, tea.KeyCtrlS)
	assert.False(t, m.inflight)
	assert.Equal(t, journal.Composing, m.app.Journal().State())
	assert.Empty(t, m.app.Book().Entries())
}

func TestNavigationAndProfileForms(t *testing.T) {
	m := onboard(t, newTestModel(t, mentor("ok")))

	m = typeText(t, m, "h")
	assert.Equal(t, app.History, m.app.View())
	m = press(t, m, tea.KeyEsc)
	assert.Equal(t, app.Home, m.app.View())

	m = typeText(t, m, "p")
	require.Equal(t, app.Profile, m.app.View())

	m.formKind = formRename
	m.formValues = &formValues{Name: "Grace"}
	m.applyForm()
	assert.Equal(t, "Grace", m.app.Book().Profile().Name())

	// Declining the confirmation changes nothing.
	m.formKind = formDelete
	m.formValues = &formValues{Confirm: false}
	m.applyForm()
	assert.Equal(t, app.Profile, m.app.View())

	m.formKind = formReset
	m.formValues = &formValues{Confirm: true}
	m.applyForm()
	assert.Equal(t, app.Onboarding, m.app.View())
	assert.False(t, m.app.Book().Profile().OnboardingComplete)
}

func TestOpenFormAndEscape(t *testing.T) {
	m := onboard(t, newTestModel(t, mentor("ok")))
	m = typeText(t, m, "p")
	m = typeText(t, m, "D")
	require.NotNil(t, m.form)
	assert.Equal(t, formDelete, m.formKind)

	m = press(t, m, tea.KeyEsc)
	assert.Nil(t, m.form)
	assert.Equal(t, app.Profile, m.app.View())
}

func TestVoiceUnconfigured(t *testing.T) {
	m := onboard(t, newTestModel(t, mentor("ok")))
	m = typeText(t, m, "w")
	m = press(t, m, tea.KeyCtrlR)
	assert.Contains(t, m.warning, "not configured")
}

func TestStaleResultLeavesInflightRequestAlone(t *testing.T) {
	m := onboard(t, newTestModel(t, mentor("ok")))
	m = typeText(t, m, "w")
	require.Equal(t, app.Journal, m.app.View())

	m.inflight = true
	m.sent = "second draft"

	for _, msg := range []tea.Msg{
		submittedMsg{resp: journal.Response{Stale: true, SessionID: "old"}},
		repliedMsg{resp: journal.Response{Stale: true, SessionID: "old"}},
	} {
		next, cmd := m.Update(msg)
		m = next.(Model)
		assert.Nil(t, cmd)
		assert.True(t, m.inflight)
		assert.Equal(t, "second draft", m.sent)
	}
}
