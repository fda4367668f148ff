package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/architect/internal/app"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/models"
)

const progressWidth = 30

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return docStyle.Render("Loading your journal...")
	}

	var content string
	if m.form != nil {
		content = docStyle.Render(m.form.View())
	} else {
		switch m.app.View() {
		case app.Onboarding:
			content = m.viewOnboarding()
		case app.Home:
			content = m.viewHome()
		case app.Journal:
			content = m.viewJournal()
		case app.History:
			content = docStyle.Render(m.history.View())
		case app.Profile:
			content = m.viewProfile()
		}
	}

	parts := []string{}
	if m.app.View() != app.Onboarding {
		parts = append(parts, m.viewTabs())
	}
	parts = append(parts, content, m.viewStatus(), m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for _, v := range []app.View{app.Home, app.Journal, app.History, app.Profile} {
		title := strings.ToUpper(v.String()[:1]) + v.String()[1:]
		if m.app.View() == v {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	var lines []string
	if m.warning != "" {
		lines = append(lines, warningStyle.Render("⚠ "+m.warning))
	}
	if m.app.Book().Dirty() {
		lines = append(lines, warningStyle.Render("⚠ Unsaved changes"))
	}
	if m.notice != "" {
		lines = append(lines, mutedStyle.Render(m.notice))
	}
	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines, "\n"))
}

func progressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = min(max(filled, 0), width)
	return progressFull.Render(strings.Repeat("█", filled)) +
		progressEmpty.Render(strings.Repeat("░", width-filled))
}

func (m Model) viewOnboarding() string {
	ob := m.app.Onboarding()
	q, ok := ob.Current()
	if !ok {
		return docStyle.Render("All set.")
	}
	step, total := ob.Progress()

	var b strings.Builder
	b.WriteString(titleStyle.Render("The Architect") + "\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Question %d of %d", step, total)) + "\n")
	b.WriteString(progressBar(ob.Percent(), progressWidth) + "\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(q.Question) + "\n")
	b.WriteString(mutedStyle.Render(q.Context) + "\n\n")
	b.WriteString(m.answer.View())
	return docStyle.Render(b.String())
}

func (m Model) viewHome() string {
	book := m.app.Book()
	stats := book.Stats()

	var b strings.Builder
	greeting := "Welcome back."
	if name := book.Profile().Name(); name != "" {
		greeting = fmt.Sprintf("Welcome back, %s.", name)
	}
	b.WriteString(titleStyle.Render(greeting) + "\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(fmt.Sprintf("%d\nentries", stats.TotalEntries)),
		statStyle.Render(fmt.Sprintf("%d\nday streak", stats.CurrentStreak)),
		statStyle.Render(fmt.Sprintf("%d\ndays active", stats.DaysActive)),
	)
	b.WriteString(boxes + "\n\n")

	recent := book.Recent(constants.HomeRecentEntries)
	if len(recent) == 0 {
		b.WriteString(mutedStyle.Render("No entries yet. Press w to write your first one."))
	} else {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Recent") + "\n")
		for _, e := range recent {
			b.WriteString(entryLine(e) + "\n")
		}
	}
	return docStyle.Render(b.String())
}

func entryLine(e models.Entry) string {
	meta := e.Category.Meta()
	glyph := lipgloss.NewStyle().Foreground(lipgloss.Color(meta.Color)).Render(meta.Icon)
	excerpt := e.Excerpt(constants.EntryContextChars)
	if excerpt != e.Text {
		excerpt += "..."
	}
	return fmt.Sprintf("%s %s %s", glyph, mutedStyle.Render(e.Date), excerpt)
}

func (m Model) viewJournal() string {
	ctrl := m.app.Journal()
	state := ctrl.State()

	var b strings.Builder
	if state == journal.Composing || state == journal.Submitting {
		var cats []string
		for _, c := range models.Categories {
			meta := c.Meta()
			label := meta.Icon + " " + meta.Label
			if c == m.category {
				cats = append(cats, lipgloss.NewStyle().
					Foreground(lipgloss.Color(meta.Color)).
					Bold(true).
					Underline(true).
					Render(label))
			} else {
				cats = append(cats, mutedStyle.Render(label))
			}
		}
		b.WriteString(strings.Join(cats, "  ") + "\n\n")
	}

	if convo := m.conversation.View(); convo != "" {
		b.WriteString(convo + "\n")
	}

	if m.inflight {
		b.WriteString(m.spinner.View() + " The Architect is thinking...\n")
	} else {
		b.WriteString(m.composer.View() + "\n")
	}

	if vp := m.app.Voice(); vp != nil {
		if status := vp.Status(); status != "" {
			b.WriteString(mutedStyle.Render(status) + "\n")
		}
		if pending := vp.Pending(); pending != "" {
			b.WriteString(lipgloss.NewStyle().Italic(true).Render("“"+pending+"”") + "\n")
			b.WriteString(mutedStyle.Render("ctrl+o use this · ctrl+e refine · ctrl+x discard") + "\n")
		}
	}
	return docStyle.Render(b.String())
}

func (m Model) viewProfile() string {
	book := m.app.Book()
	p := book.Profile()
	stats := book.Stats()

	var b strings.Builder
	name := p.Name()
	if name == "" {
		name = "Unnamed"
	}
	b.WriteString(titleStyle.Render(name) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d entries · %d day streak · %d days active",
		stats.TotalEntries, stats.CurrentStreak, stats.DaysActive)) + "\n\n")

	for _, q := range models.OnboardingQuestions {
		if q.ID == models.QuestionName {
			continue
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(q.Question) + "\n")
		b.WriteString(p.Answer(q.ID, mutedStyle.Render("Not answered")) + "\n\n")
	}
	b.WriteString(dangerStyle.Render("x reset profile · D delete account"))
	return docStyle.Render(b.String())
}
