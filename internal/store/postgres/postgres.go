// Package postgres implements the plan and career repositories on
// PostgreSQL for multi-instance deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store holds a pgx connection pool. It implements store.PlanRepo and
// store.CareerRepo.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL, verifies the connection and applies the
// schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database URL: %w", err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 10
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS plan_records (
    id TEXT PRIMARY KEY,
    tenant TEXT NOT NULL,
    student TEXT NOT NULL,
    plan_date TEXT NOT NULL,
    mode TEXT NOT NULL,
    grade INTEGER NOT NULL,
    payload JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    CONSTRAINT plan_records_key UNIQUE (tenant, student, plan_date, mode)
);

CREATE TABLE IF NOT EXISTS career_unlocks (
    id TEXT PRIMARY KEY,
    tenant TEXT NOT NULL,
    student TEXT NOT NULL,
    career TEXT NOT NULL,
    title TEXT NOT NULL,
    reason TEXT NOT NULL,
    evidence JSONB NOT NULL,
    confidence TEXT NOT NULL,
    unlocked_at TIMESTAMP WITH TIME ZONE NOT NULL,
    CONSTRAINT career_unlocks_key UNIQUE (tenant, student, career),
    CONSTRAINT valid_confidence CHECK (confidence IN ('MODERATE', 'STRONG'))
);

CREATE INDEX IF NOT EXISTS idx_career_unlocks_student ON career_unlocks(tenant, student, unlocked_at);
`

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: apply schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
