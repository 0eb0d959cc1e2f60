package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type GrantRepo struct {
	db *sql.DB
}

func NewGrantRepo(db *sql.DB) *GrantRepo {
	return &GrantRepo{db: db}
}

type GrantInsert struct {
	StatID     int64
	Amount     int
	SourceType string
	SourceRef  *string
	Reason     *string
	CreatedAt  time.Time
}

// InsertTx appends a ledger row inside the award transaction, so the grant
// and the stat update commit or roll back together.
func (r *GrantRepo) InsertTx(ctx context.Context, tx *sql.Tx, in GrantInsert) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO xp_grants (stat_id, amount, source_type, source_ref, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.StatID, in.Amount, in.SourceType, in.SourceRef, in.Reason, in.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("grant insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("grant last insert id: %w", err)
	}
	return id, nil
}

// ListByStat returns grants most recent first. The id tie-break keeps
// pagination stable when several grants share a timestamp.
func (r *GrantRepo) ListByStat(ctx context.Context, statID int64, limit int, offset int) ([]XPGrant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stat_id, amount, source_type, source_ref, reason, created_at
		FROM xp_grants
		WHERE stat_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, statID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("grant list: %w", err)
	}
	defer rows.Close()

	var out []XPGrant
	for rows.Next() {
		var (
			g         XPGrant
			sourceRef sql.NullString
			reason    sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.StatID, &g.Amount, &g.SourceType, &sourceRef, &reason, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("grant scan: %w", err)
		}
		if sourceRef.Valid {
			v := sourceRef.String
			g.SourceRef = &v
		}
		if reason.Valid {
			v := reason.String
			g.Reason = &v
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grant list rows: %w", err)
	}
	return out, nil
}

// SumForStat totals every grant amount for the stat. The stat row caches this
// value; the ledger stays the source of truth for audits and drift recovery.
func (r *GrantRepo) SumForStat(ctx context.Context, statID int64) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM xp_grants
		WHERE stat_id = ?
	`, statID)
	var sum int
	if err := row.Scan(&sum); err != nil {
		return 0, fmt.Errorf("grant sum: %w", err)
	}
	return sum, nil
}

// CountForStat reports how many grants a stat has accumulated.
func (r *GrantRepo) CountForStat(ctx context.Context, statID int64) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM xp_grants WHERE stat_id = ?`, statID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("grant count: %w", err)
	}
	return n, nil
}
