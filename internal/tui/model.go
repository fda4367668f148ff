package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/architect/internal/app"
	"github.com/julianstephens/architect/internal/models"
	"github.com/julianstephens/architect/internal/tui/components/conversation"
	"github.com/julianstephens/architect/internal/tui/components/entries"
)

const (
	entryPlaceholder = "What's on your mind?"
	replyPlaceholder = "Go deeper..."
)

type formKind int

const (
	formNone formKind = iota
	formRename
	formReset
	formDelete
)

// formValues is shared with the active huh form, which writes through the pointers.
type formValues struct {
	Name    string
	Confirm bool
}

type Model struct {
	ctx          context.Context
	app          *app.App
	keys         KeyMap
	help         help.Model
	spinner      spinner.Model
	composer     textarea.Model
	answer       textinput.Model
	history      entries.Model
	conversation conversation.Model
	form         *huh.Form
	formKind     formKind
	formValues   *formValues
	category     models.Category
	// sent holds the text of an in-flight reply so it can be restored on failure.
	sent     string
	inflight bool
	loaded   bool
	notice   string
	warning  string
	quitting bool
	width    int
	height   int
}

// NewModel builds the UI around a constructed app. The app is loaded by Init.
func NewModel(ctx context.Context, a *app.App) Model {
	composer := textarea.New()
	composer.Placeholder = entryPlaceholder
	composer.ShowLineNumbers = false
	composer.CharLimit = 0
	composer.SetHeight(5)
	composer.Focus()

	answer := textinput.New()
	answer.CharLimit = 0
	answer.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:          ctx,
		app:          a,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		composer:     composer,
		answer:       answer,
		history:      entries.New(nil, 0, 0),
		conversation: conversation.New(0, 0),
		category:     models.CategoryMindset,
	}
	m.syncQuestion()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), textinput.Blink)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.app.View() {
	case app.Onboarding:
		keys = append(keys, m.keys.Enter)
	case app.Home:
		keys = append(keys, m.keys.Journal, m.keys.History, m.keys.Profile)
	case app.Journal:
		keys = append(keys, m.keys.Back, m.keys.Submit, m.keys.Category, m.keys.NewEntry)
		if m.app.Voice() != nil {
			keys = append(keys, m.keys.Voice)
		}
	case app.History:
		keys = append(keys, m.keys.Back)
	case app.Profile:
		keys = append(keys, m.keys.Back, m.keys.Rename, m.keys.Reset, m.keys.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help, m.keys.Back}

	var actions []key.Binding
	switch m.app.View() {
	case app.Home:
		actions = []key.Binding{m.keys.Journal, m.keys.History, m.keys.Profile}
	case app.Journal:
		actions = []key.Binding{m.keys.Submit, m.keys.Category, m.keys.NewEntry, m.keys.Copy}
		if m.app.Voice() != nil {
			actions = append(actions, m.keys.Voice, m.keys.UseDraft, m.keys.Refine, m.keys.Discard)
		}
	case app.Profile:
		actions = []key.Binding{m.keys.Rename, m.keys.Reset, m.keys.Delete}
	}

	return [][]key.Binding{global, actions}
}

// syncQuestion points the answer input at the current onboarding question.
func (m *Model) syncQuestion() {
	if q, ok := m.app.Onboarding().Current(); ok {
		m.answer.Placeholder = q.Placeholder
	}
}

func (m *Model) refreshHistory() {
	m.history.SetEntries(m.app.Book().Entries())
}

func (m *Model) resetJournal() {
	m.composer.Reset()
	m.composer.Placeholder = entryPlaceholder
	m.composer.Focus()
	m.sent = ""
	m.conversation.SetTurns(nil)
}

// nextCategory cycles through the categories in display order.
func nextCategory(c models.Category) models.Category {
	for i, cat := range models.Categories {
		if cat == c {
			return models.Categories[(i+1)%len(models.Categories)]
		}
	}
	return models.Categories[0]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
