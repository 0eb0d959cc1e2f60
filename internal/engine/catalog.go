package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

// CatalogEntry is a predefined stat template users can add instead of
// building a custom stat from scratch.
type CatalogEntry struct {
	Code        string
	Name        string
	Description string
	Activities  []storage.ExampleActivity
}

func builtinCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Code:        "fitness",
			Name:        "Fitness",
			Description: "Physical strength, endurance, and movement.",
			Activities: []storage.ExampleActivity{
				{Description: "30 minute workout", SuggestedXP: 50},
				{Description: "Go for a run", SuggestedXP: 40},
				{Description: "Stretch or mobility session", SuggestedXP: 20},
			},
		},
		{
			Code:        "learning",
			Name:        "Learning",
			Description: "Studying, reading, and picking up new skills.",
			Activities: []storage.ExampleActivity{
				{Description: "Read a chapter of a book", SuggestedXP: 30},
				{Description: "Finish an online course module", SuggestedXP: 60},
				{Description: "Practice a language for 20 minutes", SuggestedXP: 25},
			},
		},
		{
			Code:        "creativity",
			Name:        "Creativity",
			Description: "Making things: writing, music, art, code for fun.",
			Activities: []storage.ExampleActivity{
				{Description: "Write 500 words", SuggestedXP: 40},
				{Description: "Sketch or paint for 30 minutes", SuggestedXP: 35},
				{Description: "Work on a side project", SuggestedXP: 50},
			},
		},
		{
			Code:        "connection",
			Name:        "Connection",
			Description: "Time invested in family and friendships.",
			Activities: []storage.ExampleActivity{
				{Description: "Call a friend or family member", SuggestedXP: 25},
				{Description: "Plan a shared activity", SuggestedXP: 50},
				{Description: "Write a thoughtful message", SuggestedXP: 15},
			},
		},
		{
			Code:        "discipline",
			Name:        "Discipline",
			Description: "Routines, chores, and doing the hard thing first.",
			Activities: []storage.ExampleActivity{
				{Description: "Morning routine completed", SuggestedXP: 20},
				{Description: "Inbox/desk cleared", SuggestedXP: 25},
				{Description: "Tackle the most-avoided task", SuggestedXP: 60},
			},
		},
	}
}

// Catalog returns the predefined stat templates.
func Catalog() []CatalogEntry {
	return builtinCatalog()
}

// GetCatalogEntry returns the template for a code, or nil when unknown.
func GetCatalogEntry(code string) *CatalogEntry {
	c := strings.TrimSpace(strings.ToLower(code))
	entries := builtinCatalog()
	for i := range entries {
		if entries[i].Code == c {
			return &entries[i]
		}
	}
	return nil
}

// AddFromCatalog instantiates a predefined stat for the user.
func (s *Service) AddFromCatalog(ctx context.Context, userID string, code string) (*storage.Stat, error) {
	entry := GetCatalogEntry(code)
	if entry == nil {
		return nil, ValidationError{Msg: fmt.Sprintf("unknown catalog stat: %s", code)}
	}
	return s.CreateStat(ctx, userID, CreateStatInput{
		Name:        entry.Name,
		Description: entry.Description,
		Activities:  entry.Activities,
	})
}
