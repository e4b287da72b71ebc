package sqlite

import (
	"path/filepath"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	database := NewSQLiteDB(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	conn := database.DB()

	for _, table := range []string{"schema_migrations", "attachments", "attachment_meta", "attachment_sizes", "users"} {
		var count int
		err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check %s table: %v", table, err)
		}
		if count != 1 {
			t.Errorf("%s table not created", table)
		}
	}

	var count int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_attachments_mime_type'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check index: %v", err)
	}
	if count != 1 {
		t.Error("idx_attachments_mime_type index not created")
	}

	var version int
	var name string
	err = conn.QueryRow("SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version, &name)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
	if name != "create_users_table" {
		t.Errorf("name = %q, want %q", name, "create_users_table")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	cfg := &SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")}

	database := NewSQLiteDB(cfg)
	if err := database.Connect(); err != nil {
		t.Fatalf("First Connect() error = %v", err)
	}
	database.Close()

	database = NewSQLiteDB(cfg)
	if err := database.Connect(); err != nil {
		t.Fatalf("Second Connect() error = %v", err)
	}
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = 1").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("migration recorded %d times, want 1", count)
	}
}

func TestAttachmentMetaCascade(t *testing.T) {
	database := NewSQLiteDB(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	conn := database.DB()

	res, err := conn.Exec(`
		INSERT INTO attachments (title, file_path, mime_type, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, "", "/uploads/a.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Failed to insert attachment: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get last insert id: %v", err)
	}

	if _, err := conn.Exec("INSERT INTO attachment_meta (attachment_id, meta_key, meta_value) VALUES (?, ?, ?)", id, "_wp_attachment_image_alt", "A"); err != nil {
		t.Fatalf("Failed to insert meta: %v", err)
	}

	if _, err := conn.Exec("DELETE FROM attachments WHERE id = ?", id); err != nil {
		t.Fatalf("Failed to delete attachment: %v", err)
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM attachment_meta").Scan(&count); err != nil {
		t.Fatalf("Failed to count meta: %v", err)
	}
	if count != 0 {
		t.Errorf("attachment_meta rows = %d, want 0 after cascade", count)
	}
}
