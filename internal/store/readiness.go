package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/skillquest/internal/progress"
)

// SaveReadiness implements ReadinessRepo.
func (s *Store) SaveReadiness(ctx context.Context, tenant, student string, r progress.Readiness) error {
	query, args := builder().
		Insert(readinessTable).
		Columns("tenant", "student", "goal", "value", "computed_at").
		Values(tenant, student, r.Goal, r.Value, r.ComputedAt.UTC()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save readiness: %w", err)
	}
	return nil
}

// LatestReadiness implements ReadinessRepo. The most recently saved
// snapshot wins.
func (s *Store) LatestReadiness(ctx context.Context, tenant, student, goal string) (progress.Readiness, error) {
	query, args := builder().
		Select("value", "computed_at").
		From(entsql.Table(readinessTable)).
		Where(entsql.And(
			entsql.EQ("tenant", tenant),
			entsql.EQ("student", student),
			entsql.EQ("goal", goal),
		)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	r := progress.Readiness{Goal: goal}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&r.Value, &r.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.Readiness{}, ErrNotFound
	}
	if err != nil {
		return progress.Readiness{}, fmt.Errorf("latest readiness: %w", err)
	}
	return r, nil
}
