package engine

import (
	"context"
	"strings"

	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

type CreateStatInput struct {
	Name        string
	Description string
	Activities  []storage.ExampleActivity
}

// CreateStat creates a stat for the user with zero XP at level 1.
func (s *Service) CreateStat(ctx context.Context, userID string, in CreateStatInput) (*storage.Stat, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError{Msg: "stat name is required"}
	}

	var desc *string
	if d := strings.TrimSpace(in.Description); d != "" {
		desc = &d
	}

	id, err := s.stats.Insert(ctx, storage.StatInsert{
		UserID:      userID,
		Name:        name,
		Description: desc,
		Activities:  in.Activities,
	})
	if err != nil {
		return nil, err
	}
	return s.GetStat(ctx, userID, id)
}

// Stats lists the user's stats. Stored levels are re-derived from cumulative
// XP on the way out; a stale value (formula drift, historical bugs) is
// corrected and the correction persisted. The rewrite is idempotent, so
// racing reads are harmless.
func (s *Service) Stats(ctx context.Context, userID string) ([]storage.Stat, error) {
	stats, err := s.stats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		if err := s.healLevel(ctx, &stats[i]); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// GetStat returns the user's stat, with the same level self-heal as Stats.
func (s *Service) GetStat(ctx context.Context, userID string, statID int64) (*storage.Stat, error) {
	stat, err := s.stats.Get(ctx, statID, userID)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return nil, NotFoundError{StatID: statID}
	}
	if err := s.healLevel(ctx, stat); err != nil {
		return nil, err
	}
	return stat, nil
}

func (s *Service) healLevel(ctx context.Context, stat *storage.Stat) error {
	computed := LevelForXP(stat.CumulativeXP)
	if stat.CurrentLevel == computed {
		return nil
	}
	if err := s.stats.SetLevel(ctx, stat.ID, computed); err != nil {
		return err
	}
	stat.CurrentLevel = computed
	return nil
}

type UpdateStatInput struct {
	Name        *string
	Description *string
	Activities  []storage.ExampleActivity
}

// UpdateStat edits name, description, or example activities. XP and level are
// not accepted here; they move only through AwardXP.
func (s *Service) UpdateStat(ctx context.Context, userID string, statID int64, in UpdateStatInput) (*storage.Stat, error) {
	stat, err := s.GetStat(ctx, userID, statID)
	if err != nil {
		return nil, err
	}

	name := stat.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ValidationError{Msg: "stat name is required"}
		}
	}
	desc := stat.Description
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			desc = nil
		} else {
			desc = &d
		}
	}
	activities := stat.Activities
	if in.Activities != nil {
		activities = in.Activities
	}

	ok, err := s.stats.UpdateProfile(ctx, statID, userID, name, desc, activities)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NotFoundError{StatID: statID}
	}
	return s.GetStat(ctx, userID, statID)
}

// DeleteStat removes the stat and its entire grant history. Reports whether
// anything was deleted so callers can treat repeats as no-ops.
func (s *Service) DeleteStat(ctx context.Context, userID string, statID int64) (bool, error) {
	return s.stats.Delete(ctx, statID, userID)
}

// StatProgress augments a stat with display-oriented leveling data.
type StatProgress struct {
	Stat storage.Stat

	// XP thresholds bounding the current level.
	LevelFloor  int
	NextLevelAt int
	XPToNext    int

	// Level-up is automatic on award; retained for callers that expect a
	// manual step.
	CanLevelUp bool
}

// Progress derives per-stat display data for every stat the user owns.
func (s *Service) Progress(ctx context.Context, userID string) ([]StatProgress, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]StatProgress, 0, len(stats))
	for _, st := range stats {
		out = append(out, StatProgress{
			Stat:        st,
			LevelFloor:  XPRequiredForLevel(st.CurrentLevel),
			NextLevelAt: XPRequiredForLevel(st.CurrentLevel + 1),
			XPToNext:    XPToNextLevel(st.CumulativeXP, st.CurrentLevel),
			CanLevelUp:  false,
		})
	}
	return out, nil
}
