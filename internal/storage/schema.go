package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			activities TEXT,

			cumulative_xp INTEGER NOT NULL DEFAULT 0,
			current_level INTEGER NOT NULL DEFAULT 1,

			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Append-only; rows are removed only by the stat-delete cascade.
		`CREATE TABLE IF NOT EXISTS xp_grants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stat_id INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			source_type TEXT NOT NULL,
			source_ref TEXT,
			reason TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY(stat_id) REFERENCES stats(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_stats_user_id ON stats(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_grants_stat_id_created_at ON xp_grants(stat_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
