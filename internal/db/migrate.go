package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS identity (
		id         TEXT PRIMARY KEY CHECK(id = 'default'),
		user_id    TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT 'general',
		token      TEXT NOT NULL,
		expires_at TEXT,
		saved_at   TEXT NOT NULL
	)`,
}
