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

var _ domain.UserRepository = (*SQLiteUserRepository)(nil)

type SQLiteUserRepository struct {
	db *sql.DB
}

func NewUserRepository(sqlDB *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db: sqlDB,
	}
}

const upsertUserQuery = `
	INSERT INTO users (name, role, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		role = excluded.role
`

// UpsertUser creates a user or changes the role of an existing one.
func (r *SQLiteUserRepository) UpsertUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}

	if _, err := domain.ParseRole(string(u.Role)); err != nil {
		return err
	}

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, upsertUserQuery, u.Name, string(u.Role), createdAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) GetUser(ctx context.Context, name string) (*domain.User, error) {
	var (
		role      string
		createdAt sql.NullTime
	)
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, "SELECT role, created_at FROM users WHERE name = ?", name).Scan(&role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := &domain.User{Name: name, Role: domain.Role(role)}
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	return u, nil
}
