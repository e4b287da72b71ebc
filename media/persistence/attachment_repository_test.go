package persistence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfryer1193/alttext/media/domain"
	"github.com/dfryer1193/alttext/shared/db/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: filepath.Join(t.TempDir(), "media.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database.DB()
}

func createAttachment(t *testing.T, store *SQLiteMediaStore, a *domain.Attachment) int64 {
	t.Helper()
	id, err := store.CreateAttachment(context.Background(), a)
	if err != nil {
		t.Fatalf("Failed to create attachment: %v", err)
	}
	return id
}

func TestMediaStore_CreateAndGetAttachment(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	id := createAttachment(t, store, &domain.Attachment{
		Title:    "Beach",
		AltText:  "A beach",
		FilePath: "/uploads/beach.jpg",
		MimeType: "image/jpeg",
		SizeVariants: []domain.SizeVariant{
			{Name: "full", Width: 1024, Height: 768, FilePath: "/uploads/beach.jpg"},
			{Name: "150x150", Width: 150, Height: 150, FilePath: "/uploads/beach-150x150.jpg"},
		},
		CreatedAt: now,
	})

	got, err := store.GetAttachment(ctx, id)
	if err != nil {
		t.Fatalf("GetAttachment() error = %v", err)
	}

	if got.Title != "Beach" {
		t.Errorf("Title = %q, want %q", got.Title, "Beach")
	}
	if got.AltText != "A beach" {
		t.Errorf("AltText = %q, want %q", got.AltText, "A beach")
	}
	if got.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want %q", got.MimeType, "image/jpeg")
	}
	if len(got.SizeVariants) != 2 || got.SizeVariants[1].Width != 150 {
		t.Errorf("SizeVariants = %+v", got.SizeVariants)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMediaStore_CreateAttachment_Invalid(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	if _, err := store.CreateAttachment(ctx, nil); err == nil {
		t.Error("Expected error for nil attachment, got nil")
	}

	if _, err := store.CreateAttachment(ctx, &domain.Attachment{MimeType: "image/png"}); err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestMediaStore_CreateAttachment_RollsBackOnDuplicateSize(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	_, err := store.CreateAttachment(ctx, &domain.Attachment{
		FilePath: "/uploads/dup.jpg",
		MimeType: "image/jpeg",
		SizeVariants: []domain.SizeVariant{
			{Name: "full", FilePath: "/uploads/dup.jpg"},
			{Name: "full", FilePath: "/uploads/dup.jpg"},
		},
	})
	if err == nil {
		t.Fatal("Expected error for duplicate size name")
	}

	exists, err := store.HasFilePath(ctx, "/uploads/dup.jpg")
	if err != nil {
		t.Fatalf("HasFilePath() error = %v", err)
	}
	if exists {
		t.Error("Attachment should have been rolled back")
	}
}

func TestMediaStore_ListImageAttachmentIDs(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	first := createAttachment(t, store, &domain.Attachment{FilePath: "/uploads/a.jpg", MimeType: "image/jpeg"})
	createAttachment(t, store, &domain.Attachment{FilePath: "/uploads/doc.pdf", MimeType: "application/pdf"})
	third := createAttachment(t, store, &domain.Attachment{FilePath: "/uploads/b.webp", MimeType: "image/webp"})

	ids, err := store.ListImageAttachmentIDs(ctx)
	if err != nil {
		t.Fatalf("ListImageAttachmentIDs() error = %v", err)
	}

	if len(ids) != 2 || ids[0] != first || ids[1] != third {
		t.Errorf("ids = %v, want [%d %d]", ids, first, third)
	}
}

func TestMediaStore_TitleAndAltText(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	id := createAttachment(t, store, &domain.Attachment{FilePath: "/uploads/my_photo.jpg", MimeType: "image/jpeg"})

	alt, err := store.GetAltText(ctx, id)
	if err != nil {
		t.Fatalf("GetAltText() error = %v", err)
	}
	if alt != "" {
		t.Errorf("AltText = %q, want empty", alt)
	}

	if err := store.SetTitle(ctx, id, "My Photo"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	if err := store.SetAltText(ctx, id, "My Photo"); err != nil {
		t.Fatalf("SetAltText() error = %v", err)
	}
	if err := store.SetAltText(ctx, id, "My Photo Again"); err != nil {
		t.Fatalf("SetAltText() overwrite error = %v", err)
	}

	title, err := store.GetTitle(ctx, id)
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if title != "My Photo" {
		t.Errorf("Title = %q, want %q", title, "My Photo")
	}

	alt, err = store.GetAltText(ctx, id)
	if err != nil {
		t.Fatalf("GetAltText() error = %v", err)
	}
	if alt != "My Photo Again" {
		t.Errorf("AltText = %q, want %q", alt, "My Photo Again")
	}

	path, err := store.GetFilePath(ctx, id)
	if err != nil {
		t.Fatalf("GetFilePath() error = %v", err)
	}
	if path != "/uploads/my_photo.jpg" {
		t.Errorf("FilePath = %q", path)
	}
}

func TestMediaStore_UnknownAttachment(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	checks := map[string]func() error{
		"GetTitle":        func() error { _, err := store.GetTitle(ctx, 42); return err },
		"SetTitle":        func() error { return store.SetTitle(ctx, 42, "x") },
		"GetAltText":      func() error { _, err := store.GetAltText(ctx, 42); return err },
		"SetAltText":      func() error { return store.SetAltText(ctx, 42, "x") },
		"GetFilePath":     func() error { _, err := store.GetFilePath(ctx, 42); return err },
		"GetSizeVariants": func() error { _, err := store.GetSizeVariants(ctx, 42); return err },
		"GetAttachment":   func() error { _, err := store.GetAttachment(ctx, 42); return err },
	}

	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMediaStore_GetSizeVariantsOrder(t *testing.T) {
	store := NewMediaStore(setupTestDB(t))
	ctx := context.Background()

	id := createAttachment(t, store, &domain.Attachment{
		FilePath: "/uploads/c.png",
		MimeType: "image/png",
		SizeVariants: []domain.SizeVariant{
			{Name: "full", FilePath: "/uploads/c.png"},
			{Name: "thumbnail", FilePath: "/uploads/c-150x150.png"},
			{Name: "medium", FilePath: "/uploads/c-300x200.png"},
		},
	})

	names, err := store.GetSizeVariants(ctx, id)
	if err != nil {
		t.Fatalf("GetSizeVariants() error = %v", err)
	}

	want := []string{"full", "thumbnail", "medium"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	empty := createAttachment(t, store, &domain.Attachment{FilePath: "/uploads/d.png", MimeType: "image/png"})
	names, err = store.GetSizeVariants(ctx, empty)
	if err != nil {
		t.Fatalf("GetSizeVariants() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("names = %v, want none", names)
	}
}
