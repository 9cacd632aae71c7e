package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/weekly"
)

type planPayload struct {
	Quests []quest.Quest `json:"quests,omitempty"`
	Weekly *weekly.Plan  `json:"weekly,omitempty"`
}

// GetPlan implements store.PlanRepo.
func (s *Store) GetPlan(ctx context.Context, key store.PlanKey) (store.PlanRecord, error) {
	var (
		rec     = store.PlanRecord{Key: key}
		grade   int
		payload []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, grade, payload, created_at FROM plan_records
		 WHERE tenant = $1 AND student = $2 AND plan_date = $3 AND mode = $4`,
		key.Tenant, key.Student, key.Date, string(key.Mode),
	).Scan(&rec.ID, &grade, &payload, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.PlanRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.PlanRecord{}, fmt.Errorf("get plan: %w", err)
	}

	var body planPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return store.PlanRecord{}, fmt.Errorf("decode plan %s: %w", rec.ID, err)
	}
	rec.Grade = skills.Grade(grade)
	rec.Quests = body.Quests
	rec.Weekly = body.Weekly
	return rec, nil
}

// CreatePlan implements store.PlanRepo. A unique violation on the key
// means another writer won; it is reported as store.ErrPlanExists.
func (s *Store) CreatePlan(ctx context.Context, rec store.PlanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	payload, err := json.Marshal(planPayload{Quests: rec.Quests, Weekly: rec.Weekly})
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO plan_records (id, tenant, student, plan_date, mode, grade, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Key.Tenant, rec.Key.Student, rec.Key.Date, string(rec.Key.Mode),
		int(rec.Grade), payload, rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrPlanExists
	}
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}
