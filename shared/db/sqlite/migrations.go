package sqlite

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all schema changes. Each must be safe to re-run.
var migrations = []migration{
	{
		version: 1,
		name:    "create_attachments_table",
		up: `
			CREATE TABLE IF NOT EXISTS attachments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL DEFAULT '',
				file_path TEXT NOT NULL UNIQUE,
				mime_type TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_attachments_mime_type
			ON attachments(mime_type);
		`,
	},
	{
		version: 2,
		name:    "create_attachment_meta_table",
		up: `
			CREATE TABLE IF NOT EXISTS attachment_meta (
				attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
				meta_key TEXT NOT NULL,
				meta_value TEXT NOT NULL,
				PRIMARY KEY (attachment_id, meta_key)
			);
		`,
	},
	{
		version: 3,
		name:    "create_attachment_sizes_table",
		up: `
			CREATE TABLE IF NOT EXISTS attachment_sizes (
				attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				width INTEGER NOT NULL DEFAULT 0,
				height INTEGER NOT NULL DEFAULT 0,
				file_path TEXT NOT NULL,
				PRIMARY KEY (attachment_id, name)
			);
		`,
	},
	{
		version: 4,
		name:    "create_users_table",
		up: `
			CREATE TABLE IF NOT EXISTS users (
				name TEXT PRIMARY KEY,
				role TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);
		`,
	},
}

// runMigrations applies every migration newer than the recorded schema version.
func runMigrations(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
