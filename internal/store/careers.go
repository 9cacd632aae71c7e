package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillquest/internal/careers"
)

// UnlockedCareers implements CareerRepo.
func (s *Store) UnlockedCareers(ctx context.Context, tenant, student string) ([]string, error) {
	recs, err := s.ListUnlocks(ctx, tenant, student)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Career
	}
	return ids, nil
}

// RecordUnlocks implements CareerRepo.
func (s *Store) RecordUnlocks(ctx context.Context, tenant, student string, unlocks []careers.Unlock, at time.Time) ([]careers.Unlock, error) {
	var added []careers.Unlock
	err := s.writeTx(ctx, func(q queryer) error {
		for _, u := range unlocks {
			evidence, err := json.Marshal(nonNil(u.Evidence))
			if err != nil {
				return fmt.Errorf("encode evidence: %w", err)
			}
			query, args := builder().
				Insert(unlockTable).
				Columns("id", "tenant", "student", "career", "title", "reason", "evidence", "confidence", "unlocked_at").
				Values(uuid.NewString(), tenant, student, u.Career, u.Title, u.Reason, string(evidence), string(u.Confidence), at.UTC()).
				OnConflict(
					entsql.ConflictColumns("tenant", "student", "career"),
					entsql.DoNothing(),
				).
				Query()
			res, err := q.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("record unlock %s: %w", u.Career, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("record unlock %s: %w", u.Career, err)
			}
			if n > 0 {
				added = append(added, u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// ListUnlocks implements CareerRepo. Records come back oldest first,
// ties by career id.
func (s *Store) ListUnlocks(ctx context.Context, tenant, student string) ([]UnlockRecord, error) {
	query, args := builder().
		Select("id", "career", "title", "reason", "evidence", "confidence", "unlocked_at").
		From(entsql.Table(unlockTable)).
		Where(entsql.And(entsql.EQ("tenant", tenant), entsql.EQ("student", student))).
		OrderBy("unlocked_at", "career").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	var out []UnlockRecord
	for rows.Next() {
		var (
			r          = UnlockRecord{Tenant: tenant, Student: student}
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
