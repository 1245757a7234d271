package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"llm_gateway/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists sessions in the sessions table. Ids are stored
// hashed; see utils.HashToken.
type PostgresStore struct {
	db  DB
	now func() time.Time
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	sql := `SELECT phone, expires_at FROM sessions WHERE id_hash = $1 AND expires_at > $2`
	rec := &Record{ID: id}
	err := s.db.QueryRow(ctx, sql, utils.HashToken(id), s.now()).Scan(&rec.Phone, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	sql := `INSERT INTO sessions (id_hash, phone, expires_at, updated_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (id_hash) DO UPDATE
            SET phone = EXCLUDED.phone, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.Exec(ctx, sql, utils.HashToken(rec.ID), rec.Phone, rec.ExpiresAt, s.now()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	sql := `DELETE FROM sessions WHERE id_hash = $1`
	if _, err := s.db.Exec(ctx, sql, utils.HashToken(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql := `DELETE FROM sessions WHERE expires_at <= $1`
	tag, err := s.db.Exec(ctx, sql, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
