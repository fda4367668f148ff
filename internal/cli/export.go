package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/architect/internal/utils"
)

type ExportCmd struct {
	Format string `short:"f" default:"json" enum:"json,yaml" help:"Output format (json or yaml)."`
	Output string `short:"o" help:"Write to this file instead of stdout."`
}

type exportEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Date      string    `json:"date" yaml:"date"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Category  string    `json:"category" yaml:"category"`
	Text      string    `json:"text" yaml:"text"`
}

type exportProfile struct {
	Name               string            `json:"name,omitempty" yaml:"name,omitempty"`
	OnboardingComplete bool              `json:"onboardingComplete" yaml:"onboardingComplete"`
	Answers            map[string]string `json:"answers" yaml:"answers"`
	TotalEntries       int               `json:"totalEntries" yaml:"totalEntries"`
	CurrentStreak      int               `json:"currentStreak" yaml:"currentStreak"`
}

type exportDocument struct {
	ExportedAt time.Time     `json:"exportedAt" yaml:"exportedAt"`
	Profile    exportProfile `json:"profile" yaml:"profile"`
	Entries    []exportEntry `json:"entries" yaml:"entries"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	a, err := ctx.App(context.Background())
	if err != nil {
		return err
	}
	p := a.Book().Profile()
	stats := a.Book().Stats()

	doc := exportDocument{
		ExportedAt: time.Now().UTC(),
		Profile: exportProfile{
			Name:               p.Name(),
			OnboardingComplete: p.OnboardingComplete,
			Answers:            make(map[string]string, len(p.OnboardingData)),
			TotalEntries:       stats.TotalEntries,
			CurrentStreak:      stats.CurrentStreak,
		},
	}
	for id, answer := range p.OnboardingData {
		doc.Profile.Answers[string(id)] = answer
	}
	for _, e := range a.Book().Entries() {
		doc.Entries = append(doc.Entries, exportEntry{
			ID:        e.ID,
			Date:      e.Date,
			Timestamp: e.Timestamp,
			Category:  e.Category.String(),
			Text:      e.Text,
		})
	}
	if doc.Entries == nil {
		doc.Entries = []exportEntry{}
	}

	var data []byte
	switch c.Format {
	case "yaml":
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	var out io.Writer = ctx.stdout()
	if c.Output != "" {
		path, err := utils.ExpandPath(c.Output)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		ctx.printf("✓ Exported %d entries to %s\n", len(doc.Entries), path)
		return nil
	}
	_, err = out.Write(data)
	return err
}
