package entries

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/architect/internal/models"
)

// CopyEntryMsg asks the parent to put an entry's text on the clipboard.
type CopyEntryMsg struct {
	Entry models.Entry
}

type Item struct {
	Entry models.Entry
}

func (i Item) Title() string {
	meta := i.Entry.Category.Meta()
	glyph := lipgloss.NewStyle().Foreground(lipgloss.Color(meta.Color)).Render(meta.Icon)
	return fmt.Sprintf("%s %s", glyph, i.Entry.Excerpt(60))
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %s", i.Entry.Date, i.Entry.Category.Meta().Label)
}

func (i Item) FilterValue() string { return i.Entry.Text }

type KeyMap struct {
	Copy key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy entry"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []models.Entry, width, height int) Model {
	l := list.New(toItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "History"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Copy}
	}

	return Model{list: l, keys: keys}
}

func toItems(entries []models.Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	return items
}

// SetEntries replaces the list. Entries are shown in the order given, which
// is most recent first.
func (m *Model) SetEntries(entries []models.Entry) {
	m.list.SetItems(toItems(entries))
}

// Filtering reports whether the list owns the keyboard for its filter prompt.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if key.Matches(msg, m.keys.Copy) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CopyEntryMsg(i) }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No entries yet.\n  Open the journal to write your first one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
