package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sequenceCounter hands out the monotonic sequence numbers that order the
// outcome log. Completion timestamps come from callers and may tie or
// arrive out of order, so history is read back by sequence instead.
//
// The counter is a single-row table bumped with UPDATE ... RETURNING, which
// the migrator cannot express. Callers run Next inside the write
// transaction that also inserts the outcome, so a rolled back outcome
// never consumes a number another writer can observe.
type sequenceCounter struct{}

// newSequenceCounter ensures the counter table exists and is seeded.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`); err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{}, nil
}

// Next returns the current counter value and advances it.
func (*sequenceCounter) Next(ctx context.Context, q queryer) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
