package models

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryMindset  Category = "mindset"
	CategoryBusiness Category = "business"
	CategoryHabits   Category = "habits"
	CategoryDecision Category = "decision"
)

// CategoryMeta is the presentation data attached to a category.
type CategoryMeta struct {
	Label string
	Icon  string
	Color string // lipgloss color
}

// Categories lists every category in display order.
var Categories = []Category{CategoryMindset, CategoryBusiness, CategoryHabits, CategoryDecision}

var categoryMeta = map[Category]CategoryMeta{
	CategoryMindset:  {Label: "Mindset", Icon: "✦", Color: "#22D3EE"},
	CategoryBusiness: {Label: "Business", Icon: "↗", Color: "#34D399"},
	CategoryHabits:   {Label: "Habits", Icon: "◎", Color: "#FBBF24"},
	CategoryDecision: {Label: "Decision", Icon: "⚡", Color: "#F472B6"},
}

// Meta returns the label, icon and color for c. Unknown categories render
// with their raw value and a neutral bullet.
func (c Category) Meta() CategoryMeta {
	if m, ok := categoryMeta[c]; ok {
		return m
	}
	return CategoryMeta{Label: string(c), Icon: "•", Color: "#94A3B8"}
}

func (c Category) Valid() bool {
	_, ok := categoryMeta[c]
	return ok
}

func (c Category) String() string { return string(c) }

// ParseCategory accepts a category id or label, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q (want one of mindset, business, habits, decision)", s)
	}
	return c, nil
}
