package config

import (
	"context"
	"fmt"
	"time"

	"llm_gateway/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DBConfig holds connection parameters for the durable session store
type DBConfig struct {
	DSN           string
	MaxRetries    int
	RetryInterval time.Duration
}

// SessionDBConfig returns the session store DB settings, or nil when sessions stay in memory.
func (c Config) SessionDBConfig() *DBConfig {
	if c.SessionDatabaseURL == "" {
		return nil
	}
	return &DBConfig{DSN: c.SessionDatabaseURL, MaxRetries: 5, RetryInterval: 5 * time.Second}
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg *DBConfig, log logging.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				log.Info(ctx, "connected to session database")
				return pool, nil
			}
			pool.Close()
		}
		log.Warn(ctx, "failed to connect to session database",
			"attempt", i+1, "max_attempts", maxRetries, "retry_in", cfg.RetryInterval, "error", err)
		if i == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates the sessions table if it doesn't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS sessions (
		id_hash TEXT PRIMARY KEY,
		phone TEXT NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	if _, err := db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}
