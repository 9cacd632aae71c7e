package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/weekly"
)

// planPayload is the JSON body of a plan row.
type planPayload struct {
	Quests []quest.Quest `json:"quests,omitempty"`
	Weekly *weekly.Plan  `json:"weekly,omitempty"`
}

func planKeyPredicate(key PlanKey) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("tenant", key.Tenant),
		entsql.EQ("student", key.Student),
		entsql.EQ("plan_date", key.Date),
		entsql.EQ("mode", string(key.Mode)),
	)
}

// GetPlan implements PlanRepo.
func (s *Store) GetPlan(ctx context.Context, key PlanKey) (PlanRecord, error) {
	query, args := builder().
		Select("id", "grade", "payload", "created_at").
		From(entsql.Table(planTable)).
		Where(planKeyPredicate(key)).
		Query()

	var (
		rec     = PlanRecord{Key: key}
		grade   int
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &grade, &payload, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PlanRecord{}, ErrNotFound
	}
	if err != nil {
		return PlanRecord{}, fmt.Errorf("get plan: %w", err)
	}

	var body planPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return PlanRecord{}, fmt.Errorf("decode plan %s: %w", rec.ID, err)
	}
	rec.Grade = skills.Grade(grade)
	rec.Quests = body.Quests
	rec.Weekly = body.Weekly
	return rec, nil
}

// CreatePlan implements PlanRepo. The insert uses ON CONFLICT DO NOTHING on
// the key columns, so a losing writer sees zero affected rows.
func (s *Store) CreatePlan(ctx context.Context, rec PlanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	payload, err := json.Marshal(planPayload{Quests: rec.Quests, Weekly: rec.Weekly})
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	query, args := builder().
		Insert(planTable).
		Columns("id", "tenant", "student", "plan_date", "mode", "grade", "payload", "created_at").
		Values(rec.ID, rec.Key.Tenant, rec.Key.Student, rec.Key.Date, string(rec.Key.Mode), int(rec.Grade), string(payload), rec.CreatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("tenant", "student", "plan_date", "mode"),
			entsql.DoNothing(),
		).
		Query()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	if n == 0 {
		return ErrPlanExists
	}
	return nil
}
