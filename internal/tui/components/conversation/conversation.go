package conversation

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/architect/internal/models"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mentorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A78BFA"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true)
)

// Model shows the turns of the current session, newest at the bottom.
type Model struct {
	viewport viewport.Model
	turns    []models.ConversationTurn
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.turns) == 0 {
		return ""
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetTurns(turns []models.ConversationTurn) {
	m.turns = turns
	m.Render()
	m.viewport.GotoBottom()
}

func (m *Model) Render() {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(max(m.width-2, 20))
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		switch t.Role {
		case models.RoleMentor:
			b.WriteString(labelStyle.Render("The Architect") + "\n")
			b.WriteString(mentorStyle.Inherit(wrap).Render(t.Content) + "\n")
		default:
			label := "You"
			if t.Category != "" {
				meta := t.Category.Meta()
				label += " · " + meta.Icon + " " + meta.Label
			}
			b.WriteString(labelStyle.Render(label) + "\n")
			b.WriteString(userStyle.Inherit(wrap).Render(t.Content) + "\n")
		}
	}
	m.viewport.SetContent(b.String())
}
