package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/alttext/media/domain"
	"github.com/dfryer1193/alttext/shared/db"
)

var _ domain.AttachmentRepository = (*SQLiteMediaStore)(nil)

// SQLiteMediaStore implements domain.AttachmentRepository on the attachments, attachment_meta
// and attachment_sizes tables.
type SQLiteMediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a SQLiteMediaStore from a standard sql.DB
func NewMediaStore(sqlDB *sql.DB) *SQLiteMediaStore {
	return &SQLiteMediaStore{
		db: sqlDB,
	}
}

const listImageIDsQuery = `
	SELECT id FROM attachments
	WHERE mime_type LIKE 'image/%'
	ORDER BY id ASC
`

// ListImageAttachmentIDs returns the IDs of all image attachments in ascending order.
func (s *SQLiteMediaStore) ListImageAttachmentIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.GetExecutor(ctx, s.db).QueryContext(ctx, listImageIDsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list image attachments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attachment id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}

	return ids, nil
}

func (s *SQLiteMediaStore) GetTitle(ctx context.Context, id int64) (string, error) {
	var title string
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, "SELECT title FROM attachments WHERE id = ?", id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get title: %w", err)
	}
	return title, nil
}

func (s *SQLiteMediaStore) SetTitle(ctx context.Context, id int64, title string) error {
	res, err := db.GetExecutor(ctx, s.db).ExecContext(ctx, "UPDATE attachments SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}
	return requireAffected(res, id)
}

const getAltTextQuery = `
	SELECT COALESCE(m.meta_value, '')
	FROM attachments a
	LEFT JOIN attachment_meta m ON m.attachment_id = a.id AND m.meta_key = ?
	WHERE a.id = ?
`

func (s *SQLiteMediaStore) GetAltText(ctx context.Context, id int64) (string, error) {
	var alt string
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, getAltTextQuery, domain.AltTextMetaKey, id).Scan(&alt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get alt text: %w", err)
	}
	return alt, nil
}

const upsertMetaQuery = `
	INSERT INTO attachment_meta (attachment_id, meta_key, meta_value)
	SELECT id, ?, ? FROM attachments WHERE id = ?
	ON CONFLICT(attachment_id, meta_key) DO UPDATE SET
		meta_value = excluded.meta_value
`

func (s *SQLiteMediaStore) SetAltText(ctx context.Context, id int64, altText string) error {
	res, err := db.GetExecutor(ctx, s.db).ExecContext(ctx, upsertMetaQuery, domain.AltTextMetaKey, altText, id)
	if err != nil {
		return fmt.Errorf("failed to set alt text: %w", err)
	}
	return requireAffected(res, id)
}

func (s *SQLiteMediaStore) GetFilePath(ctx context.Context, id int64) (string, error) {
	var path string
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, "SELECT file_path FROM attachments WHERE id = ?", id).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get file path: %w", err)
	}
	return path, nil
}

// GetSizeVariants returns the size names of an attachment in stored order.
func (s *SQLiteMediaStore) GetSizeVariants(ctx context.Context, id int64) ([]string, error) {
	variants, err := s.sizeVariants(ctx, id)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.Name)
	}
	return names, nil
}

const selectSizesQuery = `
	SELECT name, width, height, file_path
	FROM attachment_sizes
	WHERE attachment_id = ?
	ORDER BY position ASC
`

func (s *SQLiteMediaStore) sizeVariants(ctx context.Context, id int64) ([]domain.SizeVariant, error) {
	exists, err := s.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}

	rows, err := db.GetExecutor(ctx, s.db).QueryContext(ctx, selectSizesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query size variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.SizeVariant
	for rows.Next() {
		var v domain.SizeVariant
		if err := rows.Scan(&v.Name, &v.Width, &v.Height, &v.FilePath); err != nil {
			return nil, fmt.Errorf("failed to scan size variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating size variants: %w", err)
	}

	return variants, nil
}

const insertAttachmentQuery = `
	INSERT INTO attachments (title, file_path, mime_type, created_at)
	VALUES (?, ?, ?, ?)
`

const insertSizeQuery = `
	INSERT INTO attachment_sizes (attachment_id, position, name, width, height, file_path)
	VALUES (?, ?, ?, ?, ?, ?)
`

// CreateAttachment inserts an attachment with its alt text and size variants in one transaction.
func (s *SQLiteMediaStore) CreateAttachment(ctx context.Context, a *domain.Attachment) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("attachment cannot be nil")
	}

	if a.FilePath == "" {
		return 0, fmt.Errorf("attachment file path cannot be empty")
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := db.RunInTransaction(ctx, s.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, s.db)

		res, err := executor.ExecContext(txCtx, insertAttachmentQuery, a.Title, a.FilePath, a.MimeType, createdAt)
		if err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get attachment id: %w", err)
		}

		if a.AltText != "" {
			if err := s.SetAltText(txCtx, id, a.AltText); err != nil {
				return err
			}
		}

		for i, v := range a.SizeVariants {
			if _, err := executor.ExecContext(txCtx, insertSizeQuery, id, i, v.Name, v.Width, v.Height, v.FilePath); err != nil {
				return fmt.Errorf("failed to insert size variant %q: %w", v.Name, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

const getAttachmentQuery = `
	SELECT id, title, file_path, mime_type, created_at
	FROM attachments
	WHERE id = ?
`

// GetAttachment loads a full attachment record including alt text and size variants.
func (s *SQLiteMediaStore) GetAttachment(ctx context.Context, id int64) (*domain.Attachment, error) {
	var row attachmentRow
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, getAttachmentQuery, id).Scan(
		&row.ID,
		&row.Title,
		&row.FilePath,
		&row.MimeType,
		&row.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	a := row.toDomain()

	if a.AltText, err = s.GetAltText(ctx, id); err != nil {
		return nil, err
	}
	if a.SizeVariants, err = s.sizeVariants(ctx, id); err != nil {
		return nil, err
	}

	return a, nil
}

// HasFilePath reports whether an attachment already points at path.
func (s *SQLiteMediaStore) HasFilePath(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM attachments WHERE file_path = ?)", path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check file path: %w", err)
	}
	return exists, nil
}

func (s *SQLiteMediaStore) exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM attachments WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attachment: %w", err)
	}
	return exists, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// attachmentRow is a private struct used to scan database rows
type attachmentRow struct {
	ID        int64        `db:"id"`
	Title     string       `db:"title"`
	FilePath  string       `db:"file_path"`
	MimeType  string       `db:"mime_type"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (r *attachmentRow) toDomain() *domain.Attachment {
	a := &domain.Attachment{
		ID:       r.ID,
		Title:    r.Title,
		FilePath: r.FilePath,
		MimeType: r.MimeType,
	}

	if r.CreatedAt.Valid {
		a.CreatedAt = r.CreatedAt.Time
	}

	return a
}
