package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/robert-crandall/journal-app-sub006/internal/storage"
)

// awardAttempts bounds the optimistic-concurrency retry. The conflict window
// is a single row update, so an immediate re-run is enough.
const awardAttempts = 3

type AwardInput struct {
	StatID int64
	Amount int
	Source SourceType
	// Opaque reference to the originating task/journal/quest/experiment.
	// No cross-domain referential integrity is enforced.
	SourceRef string
	Reason    string
}

type AwardResult struct {
	Stat        storage.Stat
	Grant       storage.XPGrant
	LevelBefore int
	LeveledUp   bool
	// NewLevel is only meaningful when LeveledUp is true.
	NewLevel int
}

// AwardXP is the single authorized entry point for changing a stat's XP and
// level. The ledger insert and the stat update share one transaction, so a
// grant can never exist without its matching stat update or vice versa. The
// stat write is conditional on the XP total read at the start of the cycle;
// on conflict the whole read-compute-write cycle is retried a bounded number
// of times. AwardXP never retries the operation as a whole: an ambiguous
// storage failure must be resolved by the caller (check History before
// re-submitting) to avoid double-granting.
func (s *Service) AwardXP(ctx context.Context, userID string, in AwardInput) (*AwardResult, error) {
	if !in.Source.IsValid() {
		return nil, ValidationError{Msg: fmt.Sprintf("invalid source type: %q", string(in.Source))}
	}

	var res *AwardResult
	for attempt := 0; attempt < awardAttempts; attempt++ {
		var err error
		res, err = s.tryAward(ctx, userID, in)
		if err == errConflict {
			continue
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, fmt.Errorf("award xp: stat %d contended after %d attempts", in.StatID, awardAttempts)
}

func (s *Service) tryAward(ctx context.Context, userID string, in AwardInput) (*AwardResult, error) {
	var out AwardResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stat, err := s.stats.GetTx(ctx, tx, in.StatID, userID)
		if err != nil {
			return err
		}
		if stat == nil {
			return NotFoundError{StatID: in.StatID}
		}

		newXP := stat.CumulativeXP + in.Amount
		if newXP < 0 {
			return ValidationError{Msg: fmt.Sprintf(
				"cannot deduct %d XP: stat %q only has %d", -in.Amount, stat.Name, stat.CumulativeXP)}
		}

		levelBefore := stat.CurrentLevel
		newLevel := LevelForXP(newXP)

		ok, err := s.stats.UpdateProgressTx(ctx, tx, stat.ID, stat.CumulativeXP, newXP, newLevel)
		if err != nil {
			return err
		}
		if !ok {
			return errConflict
		}

		grant := storage.GrantInsert{
			StatID:     stat.ID,
			Amount:     in.Amount,
			SourceType: string(in.Source),
			SourceRef:  optional(in.SourceRef),
			Reason:     optional(in.Reason),
			CreatedAt:  time.Now().UTC(),
		}
		grantID, err := s.grants.InsertTx(ctx, tx, grant)
		if err != nil {
			return err
		}

		stat.CumulativeXP = newXP
		stat.CurrentLevel = newLevel
		out = AwardResult{
			Stat: *stat,
			Grant: storage.XPGrant{
				ID:         grantID,
				StatID:     stat.ID,
				Amount:     grant.Amount,
				SourceType: grant.SourceType,
				SourceRef:  grant.SourceRef,
				Reason:     grant.Reason,
				CreatedAt:  grant.CreatedAt,
			},
			LevelBefore: levelBefore,
			LeveledUp:   newLevel > levelBefore,
		}
		if out.LeveledUp {
			out.NewLevel = newLevel
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// History pages through a stat's grants, most recent first. Ownership is
// checked against storage; a foreign statID reads as not found.
func (s *Service) History(ctx context.Context, userID string, statID int64, limit int, offset int) ([]storage.XPGrant, error) {
	stat, err := s.stats.Get(ctx, statID, userID)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return nil, NotFoundError{StatID: statID}
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.grants.ListByStat(ctx, statID, limit, offset)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
