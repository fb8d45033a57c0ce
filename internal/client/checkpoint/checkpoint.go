// Package checkpoint keeps the sync checkpoint in its own small SQLite file
// so it survives a wipe of the local store.
package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/docsync/internal/client/migrations"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docsync/internal/timex"

	_ "modernc.org/sqlite"
)

const (
	KeyLastSync = "last_sync"
	KeyUserID   = "user_id"
)

// Store reads and writes checkpoint slots.
type Store interface {
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
	UserID(ctx context.Context) (string, error)
	SetUserID(ctx context.Context, userID string) error
	Reset(ctx context.Context) error
}

type SQLiteStore struct {
	db   *sql.DB
	repo metadata.Repository
}

// Open opens (creating when needed) the state database at path. Use
// ":memory:" for tests.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	db.SetMaxOpenConns(1)

	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.State())
	if err == nil {
		_, err = p.Up(ctx)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &SQLiteStore{db: db, repo: metadata.NewSQLiteRepository(db)}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LastSync returns the last pull checkpoint, or the Unix epoch.
func (s *SQLiteStore) LastSync(ctx context.Context) (time.Time, error) {
	t, ok, err := s.repo.Time(ctx, KeyLastSync)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return timex.Epoch, nil
	}
	return t, nil
}

func (s *SQLiteStore) SetLastSync(ctx context.Context, t time.Time) error {
	return s.repo.SetTime(ctx, KeyLastSync, t)
}

// UserID returns the user recorded by the last guest migration, or "".
func (s *SQLiteStore) UserID(ctx context.Context) (string, error) {
	return s.repo.String(ctx, KeyUserID)
}

func (s *SQLiteStore) SetUserID(ctx context.Context, userID string) error {
	return s.repo.SetString(ctx, KeyUserID, userID)
}

// Reset forgets every slot; the next pull starts from the epoch.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
