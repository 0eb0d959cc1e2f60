package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type StatRepo struct {
	db *sql.DB
}

func NewStatRepo(db *sql.DB) *StatRepo {
	return &StatRepo{db: db}
}

type StatInsert struct {
	UserID      string
	Name        string
	Description *string
	Activities  []ExampleActivity
}

func (r *StatRepo) Insert(ctx context.Context, in StatInsert) (int64, error) {
	activitiesJSON, err := marshalActivities(in.Activities)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO stats (user_id, name, description, activities, cumulative_xp, current_level)
		VALUES (?, ?, ?, ?, 0, 1)
	`, in.UserID, in.Name, in.Description, activitiesJSON)
	if err != nil {
		return 0, fmt.Errorf("stat insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("stat last insert id: %w", err)
	}
	return id, nil
}

const statColumns = `id, user_id, name, description, activities, cumulative_xp, current_level, created_at, updated_at`

// Get returns nil when the stat does not exist or belongs to another user;
// the two cases are indistinguishable on purpose.
func (r *StatRepo) Get(ctx context.Context, id int64, userID string) (*Stat, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+statColumns+`
		FROM stats
		WHERE id = ? AND user_id = ?
	`, id, userID)
	return scanStatRow(row)
}

// GetTx is Get against an open transaction, for the award path.
func (r *StatRepo) GetTx(ctx context.Context, tx *sql.Tx, id int64, userID string) (*Stat, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+statColumns+`
		FROM stats
		WHERE id = ? AND user_id = ?
	`, id, userID)
	return scanStatRow(row)
}

func (r *StatRepo) ListForUser(ctx context.Context, userID string) ([]Stat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+statColumns+`
		FROM stats
		WHERE user_id = ?
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("stat list: %w", err)
	}
	defer rows.Close()

	var out []Stat
	for rows.Next() {
		s, err := scanStatRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stat list rows: %w", err)
	}
	return out, nil
}

// UpdateProfile updates the user-editable fields. XP and level are excluded:
// those only move through UpdateProgressTx and SetLevel.
func (r *StatRepo) UpdateProfile(ctx context.Context, id int64, userID string, name string, description *string, activities []ExampleActivity) (bool, error) {
	activitiesJSON, err := marshalActivities(activities)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE stats
		SET name = ?, description = ?, activities = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, name, description, activitiesJSON, id, userID)
	if err != nil {
		return false, fmt.Errorf("stat update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("stat update profile rows: %w", err)
	}
	return n > 0, nil
}

// UpdateProgressTx writes the new XP total and derived level, conditional on
// the previous total still being in place (compare-and-swap). Returns false
// when another writer got there first.
func (r *StatRepo) UpdateProgressTx(ctx context.Context, tx *sql.Tx, id int64, prevXP int, newXP int, newLevel int) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE stats
		SET cumulative_xp = ?, current_level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND cumulative_xp = ?
	`, newXP, newLevel, id, prevXP)
	if err != nil {
		return false, fmt.Errorf("stat update progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("stat update progress rows: %w", err)
	}
	return n > 0, nil
}

// SetLevel rewrites the stored level only. Used by the read-time self-heal;
// racing writers all derive the same value, so last-write-wins is fine.
func (r *StatRepo) SetLevel(ctx context.Context, id int64, level int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stats SET current_level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, level, id)
	if err != nil {
		return fmt.Errorf("stat set level: %w", err)
	}
	return nil
}

// Delete removes the stat and all of its grants in one transaction. Returns
// whether a stat row was actually deleted.
func (r *StatRepo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	deleted := false
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM xp_grants
			WHERE stat_id IN (SELECT id FROM stats WHERE id = ? AND user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("stat delete grants: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM stats WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("stat delete: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("stat delete rows: %w", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func marshalActivities(activities []ExampleActivity) (*string, error) {
	if len(activities) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(activities)
	if err != nil {
		return nil, fmt.Errorf("marshal activities: %w", err)
	}
	s := string(data)
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStatRow(row scanner) (*Stat, error) {
	var (
		id            int64
		userID        string
		name          string
		description   sql.NullString
		activitiesRaw sql.NullString
		cumulativeXP  int
		currentLevel  int
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id, &userID, &name, &description, &activitiesRaw,
		&cumulativeXP, &currentLevel, &createdAt, &updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("stat scan: %w", err)
	}

	var desc *string
	if description.Valid {
		v := description.String
		desc = &v
	}

	var activities []ExampleActivity
	if activitiesRaw.Valid && activitiesRaw.String != "" {
		if err := json.Unmarshal([]byte(activitiesRaw.String), &activities); err != nil {
			return nil, fmt.Errorf("unmarshal activities: %w", err)
		}
	}

	return &Stat{
		ID:           id,
		UserID:       userID,
		Name:         name,
		Description:  desc,
		Activities:   activities,
		CumulativeXP: cumulativeXP,
		CurrentLevel: currentLevel,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
