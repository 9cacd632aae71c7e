package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/skills"
)

// SaveProfile implements FocusRepo.
func (s *Store) SaveProfile(ctx context.Context, p classfocus.Profile) (classfocus.Profile, error) {
	if err := p.Validate(); err != nil {
		return classfocus.Profile{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	boosts, err := json.Marshal(p.Boosts)
	if err != nil {
		return classfocus.Profile{}, fmt.Errorf("encode boosts: %w", err)
	}

	var grade any
	if p.Grade != nil {
		grade = int(*p.Grade)
	}
	query, args := builder().
		Insert(focusTable).
		Columns("id", "tenant", "teacher", "grade", "boosts", "active", "window_start", "window_end", "updated_at").
		Values(p.ID, p.Tenant, p.Teacher, grade, string(boosts), p.Active, optTime(p.WindowStart), optTime(p.WindowEnd), p.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classfocus.Profile{}, fmt.Errorf("save focus profile: %w", err)
	}
	return p, nil
}

// ListProfiles implements FocusRepo.
func (s *Store) ListProfiles(ctx context.Context, tenant, teacher string) ([]classfocus.Profile, error) {
	query, args := builder().
		Select("id", "grade", "boosts", "active", "window_start", "window_end", "updated_at").
		From(entsql.Table(focusTable)).
		Where(entsql.And(entsql.EQ("tenant", tenant), entsql.EQ("teacher", teacher))).
		OrderBy("id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list focus profiles: %w", err)
	}
	defer rows.Close()

	var out []classfocus.Profile
	for rows.Next() {
		var (
			p          = classfocus.Profile{Tenant: tenant, Teacher: teacher}
			grade      sql.NullInt64
			boosts     []byte
			start, end sql.NullTime
		)
		if err := rows.Scan(&p.ID, &grade, &boosts, &p.Active, &start, &end, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan focus profile: %w", err)
		}
		if grade.Valid {
			g := skills.Grade(grade.Int64)
			p.Grade = &g
		}
		if err := json.Unmarshal(boosts, &p.Boosts); err != nil {
			return nil, fmt.Errorf("decode boosts of %s: %w", p.ID, err)
		}
		if start.Valid {
			p.WindowStart = &start.Time
		}
		if end.Valid {
			p.WindowEnd = &end.Time
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list focus profiles: %w", err)
	}
	return out, nil
}

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
