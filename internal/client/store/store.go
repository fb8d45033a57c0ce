// Package store owns the local SQLite database: opening it with the right
// pragmas, migrating the schema, seeding defaults, and handing out
// transactions to the DAO and the sync engine.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/docsync/internal/client/migrations"
	"github.com/dmitrijs2005/docsync/internal/client/models"
	"github.com/dmitrijs2005/docsync/internal/client/repositories/flags"
	"github.com/dmitrijs2005/docsync/internal/common"
	"github.com/dmitrijs2005/docsync/internal/dbx"
	"github.com/dmitrijs2005/docsync/internal/logging"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const busyTimeoutMS = 5000

// ErrNotOpen is returned by operations on a store that is not open.
var ErrNotOpen = errors.New("store is not open")

// Store is the local database handle. The zero value is not usable; use New.
type Store struct {
	path string
	log  logging.Logger

	mu sync.RWMutex
	db *sql.DB
}

func New(path string, log logging.Logger) *Store {
	return &Store{path: path, log: log.With("module", "store")}
}

// dsn adds per-connection pragmas understood by modernc.org/sqlite.
func dsn(path string) string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMS),
	}
	if path != MemoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}
	return path + "?" + strings.Join(pragmas, "&")
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}

// Open opens and migrates the database. Calling Open on an open store does
// nothing. Failures are never degraded to an in-memory database.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return storageErr("create data dir", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(s.path))
	if err != nil {
		return storageErr("open", err)
	}
	// one writer; SQLite serializes writes anyway and :memory: is per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return storageErr("ping", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return storageErr("migrate", err)
	}

	s.db = db
	s.log.Info(ctx, "local store opened", "path", s.path)
	return nil
}

// RunMigrations applies the embedded local schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Local())
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// Close releases the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return storageErr("close", err)
	}
	return nil
}

// DB returns the open handle or nil.
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

func (s *Store) handle() (*sql.DB, error) {
	db := s.DB()
	if db == nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, ErrNotOpen)
	}
	return db, nil
}

// WithTx runs fn in one transaction spanning any tables. The transaction
// commits only when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

// InitializeDefaults inserts the usage flags row with a fresh guest id when
// it is missing and returns the stored row. The seeded row is not queued for
// push; the first MarkFreeAIUsed or UnlockFeature carries it to the remote.
func (s *Store) InitializeDefaults(ctx context.Context) (*models.Flags, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.Flags, error) {
		repo := flags.NewSQLiteRepository(tx)
		inserted, err := repo.InsertIfAbsent(ctx, &models.Flags{
			ID:              models.FlagsID,
			GuestID:         uuid.NewString(),
			FeatureUnlocked: []string{},
			UpdatedAt:       time.Now().UTC(),
		})
		if err != nil {
			return nil, storageErr("initialize defaults", err)
		}
		f, err := repo.Get(ctx, models.FlagsID)
		if err != nil {
			return nil, storageErr("initialize defaults", err)
		}
		if inserted {
			s.log.Info(ctx, "default flags created", "guest_id", f.GuestID)
		}
		return f, nil
	})
}

// ClearAllData empties every local table in one transaction.
func (s *Store) ClearAllData(ctx context.Context) error {
	err := s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range models.AllTables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrStorage) {
			return err
		}
		return storageErr("clear all data", err)
	}
	s.log.Info(ctx, "local store cleared")
	return nil
}
