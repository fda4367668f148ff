// Package prompts assembles the natural-language prompts sent to the
// completion service.
package prompts

import (
	"fmt"
	"strings"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/models"
)

// EntryInput is everything the mentor sees for a fresh entry.
type EntryInput struct {
	Text     string
	Category models.Category
	// Prior holds earlier entries, most recent first.
	Prior   []models.Entry
	Profile models.Profile
}

// Mentor builds the persona prompt for a newly submitted entry.
func Mentor(in EntryInput) string {
	var b strings.Builder

	b.WriteString(PersonaIntro)
	b.WriteString(" ")
	b.WriteString(PersonaMission)
	b.WriteString("\n\n")
	b.WriteString(Principles)
	b.WriteString("\n\n")

	if in.Profile.OnboardingComplete {
		writeFoundation(&b, in.Profile, true)
		b.WriteString("\n")
		b.WriteString(entryNameHint)
		b.WriteString("\n\n")
	}

	b.WriteString("Context from recent entries:\n")
	b.WriteString(RecentContext(in.Prior))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Current entry (%s):\n\"%s\"\n\n", in.Category, in.Text)
	b.WriteString(EntryInstructions)

	return b.String()
}

// RecentContext summarizes up to five prior entries as "[category] text...",
// one per line, or notes that this is the first entry.
func RecentContext(prior []models.Entry) string {
	if len(prior) == 0 {
		return constants.FirstEntryContext
	}
	n := min(len(prior), constants.RecentEntryContext)
	lines := make([]string, 0, n)
	for _, e := range prior[:n] {
		lines = append(lines, fmt.Sprintf("[%s] %s...", e.Category, e.Excerpt(constants.EntryContextChars)))
	}
	return strings.Join(lines, "\n")
}

// ReplyInput is everything the mentor sees for a follow-up reply.
type ReplyInput struct {
	History []models.ConversationTurn
	Reply   string
	Profile models.Profile
}

// Reply builds the prompt for continuing a conversation one layer deeper.
func Reply(in ReplyInput) string {
	var b strings.Builder

	b.WriteString(PersonaIntro)
	b.WriteString("\n\n")

	if in.Profile.OnboardingComplete {
		writeFoundation(&b, in.Profile, false)
		b.WriteString("\n")
		b.WriteString(replyNameHint)
		b.WriteString("\n\n")
	}

	b.WriteString("Conversation so far:\n")
	b.WriteString(Transcript(in.History))
	b.WriteString("\n\n")

	b.WriteString("User's latest response:\n")
	b.WriteString(in.Reply)
	b.WriteString("\n\n")

	b.WriteString(ReplyInstructions)
	return b.String()
}

// Transcript renders turns as "User: ..." and "Architect: ..." blocks.
func Transcript(turns []models.ConversationTurn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "Architect"
		if t.Role == models.RoleUser {
			speaker = "User"
		}
		parts = append(parts, speaker+": "+t.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Distill builds the prompt that turns a raw voice transcript into prose.
func Distill(transcript string) string {
	var b strings.Builder
	b.WriteString("You are The Architect's voice processor. A user just spoke their thoughts aloud, and you need to distill them into clear, written form.\n\n")
	b.WriteString("Raw voice transcript:\n")
	fmt.Fprintf(&b, "\"%s\"\n\n", transcript)
	b.WriteString(DistillInstructions)
	return b.String()
}

func writeFoundation(b *strings.Builder, p models.Profile, withComplaint bool) {
	unknown := constants.UnknownAnswer
	fmt.Fprintf(b, "User's Name: %s\n", p.Answer(models.QuestionName, unknown))
	b.WriteString("User's Foundation:\n")
	fmt.Fprintf(b, "- What they're running from: %s\n", p.Answer(models.QuestionFiveYears, unknown))
	fmt.Fprintf(b, "- Where they're headed: %s\n", p.Answer(models.QuestionIdealLife, unknown))
	fmt.Fprintf(b, "- Their identity: %s\n", p.Answer(models.QuestionIdentity, unknown))
	fmt.Fprintf(b, "- Primary goal: %s\n", p.Answer(models.QuestionBiggestGoal, unknown))
	if withComplaint {
		fmt.Fprintf(b, "- Main complaint: %s\n", p.Answer(models.QuestionComplaint, unknown))
	}
}
