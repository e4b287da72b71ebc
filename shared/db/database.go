package db

import (
	"context"
	"database/sql"
)

// Database is a connectable handle to the media library database.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}

// Executor is the subset of *sql.DB and *sql.Tx used by repositories.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
