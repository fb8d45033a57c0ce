package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/docsync/internal/server/migrations"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects through pgx and brings the schema up to date.
func Open(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return NewPostgresRepository(db), nil
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Table names below come from the ValidTable whitelist, so formatting them
// into the statement is safe.

func (r *PostgresRepository) Upsert(ctx context.Context, table string, row Row) error {
	if !ValidTable(table) {
		return ErrUnknownTable
	}

	query := fmt.Sprintf(
		`INSERT INTO %[1]s (guest_id, id, user_id, updated_at, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (guest_id, id) DO UPDATE
		 SET user_id = COALESCE(EXCLUDED.user_id, %[1]s.user_id),
		     updated_at = EXCLUDED.updated_at,
		     payload = EXCLUDED.payload
		 WHERE %[1]s.updated_at <= EXCLUDED.updated_at`, table)

	res, err := r.db.ExecContext(ctx, query,
		row.GuestID, row.ID, nullable(row.UserID), row.UpdatedAt.UTC(), []byte(row.Payload))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrStaleRow
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, table, id string, owner Owner) (int64, error) {
	if !ValidTable(table) {
		return 0, ErrUnknownTable
	}

	query := fmt.Sprintf(
		`DELETE FROM %s
		 WHERE id = $1 AND (user_id = $2 OR (guest_id = $3 AND user_id IS NULL))`, table)

	res, err := r.db.ExecContext(ctx, query, id, nullable(owner.UserID), owner.GuestID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

// SelectSince returns visible rows newer than since, oldest first. The
// ownership columns are merged into each payload.
func (r *PostgresRepository) SelectSince(ctx context.Context, table string, since time.Time, owner Owner) ([]json.RawMessage, error) {
	if !ValidTable(table) {
		return nil, ErrUnknownTable
	}

	query := fmt.Sprintf(
		`SELECT payload || jsonb_build_object('guest_id', guest_id, 'user_id', user_id)
		 FROM %s
		 WHERE updated_at > $1 AND (user_id = $2 OR (guest_id = $3 AND user_id IS NULL))
		 ORDER BY updated_at ASC, id ASC`, table)

	rows, err := r.db.QueryContext(ctx, query, since.UTC(), nullable(owner.UserID), owner.GuestID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, json.RawMessage(b))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ClaimGuestRows(ctx context.Context, table, guestID, userID string) (int64, error) {
	if !ValidTable(table) {
		return 0, ErrUnknownTable
	}

	query := fmt.Sprintf(
		`UPDATE %s SET user_id = $1
		 WHERE guest_id = $2 AND user_id IS NULL`, table)

	res, err := r.db.ExecContext(ctx, query, userID, guestID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
