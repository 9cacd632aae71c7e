package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/abhisek/skillquest/internal/store"
)

// UnlockedCareers implements store.CareerRepo.
func (s *Store) UnlockedCareers(ctx context.Context, tenant, student string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT career FROM career_unlocks
		 WHERE tenant = $1 AND student = $2
		 ORDER BY unlocked_at, career`,
		tenant, student,
	)
	if err != nil {
		return nil, fmt.Errorf("unlocked careers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("unlocked careers: %w", err)
	}
	return ids, nil
}

// RecordUnlocks implements store.CareerRepo. Existing unlocks are skipped
// by ON CONFLICT DO NOTHING inside one transaction; only rows this call
// inserted are returned.
func (s *Store) RecordUnlocks(ctx context.Context, tenant, student string, unlocks []careers.Unlock, at time.Time) ([]careers.Unlock, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var added []careers.Unlock
	for _, u := range unlocks {
		evidence := u.Evidence
		if evidence == nil {
			evidence = []string{}
		}
		body, err := json.Marshal(evidence)
		if err != nil {
			return nil, fmt.Errorf("encode evidence: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO career_unlocks (id, tenant, student, career, title, reason, evidence, confidence, unlocked_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (tenant, student, career) DO NOTHING`,
			uuid.NewString(), tenant, student, u.Career, u.Title, u.Reason, body, string(u.Confidence), at,
		)
		if err != nil {
			return nil, fmt.Errorf("record unlock %s: %w", u.Career, err)
		}
		if tag.RowsAffected() > 0 {
			added = append(added, u)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit unlocks: %w", err)
	}
	return added, nil
}

// ListUnlocks implements store.CareerRepo.
func (s *Store) ListUnlocks(ctx context.Context, tenant, student string) ([]store.UnlockRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, career, title, reason, evidence, confidence, unlocked_at FROM career_unlocks
		 WHERE tenant = $1 AND student = $2
		 ORDER BY unlocked_at, career`,
		tenant, student,
	)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	var out []store.UnlockRecord
	for rows.Next() {
		var (
			r          = store.UnlockRecord{Tenant: tenant, Student: student}
			evidence   []byte
			confidence string
		)
		if err := rows.Scan(&r.ID, &r.Career, &r.Title, &r.Reason, &evidence, &confidence, &r.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		if err := json.Unmarshal(evidence, &r.Evidence); err != nil {
			return nil, fmt.Errorf("decode evidence of %s: %w", r.Career, err)
		}
		r.Confidence = careers.Confidence(confidence)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	return out, nil
}
