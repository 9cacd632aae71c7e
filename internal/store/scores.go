package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// LoadScores implements ScoreRepo.
func (s *Store) LoadScores(ctx context.Context, tenant, student string) (map[skills.Skill]progress.SkillScore, error) {
	return loadScores(ctx, s.db, tenant, student)
}

func loadScores(ctx context.Context, q queryer, tenant, student string) (map[skills.Skill]progress.SkillScore, error) {
	query, args := builder().
		Select("skill", "score", "level", "trend", "observations", "evidence", "history", "updated_at").
		From(entsql.Table(scoreTable)).
		Where(entsql.And(entsql.EQ("tenant", tenant), entsql.EQ("student", student))).
		Query()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	out := make(map[skills.Skill]progress.SkillScore)
	for rows.Next() {
		var (
			sc                progress.SkillScore
			skill, level, tr  string
			evidence, history []byte
		)
		if err := rows.Scan(&skill, &sc.Score, &level, &tr, &sc.Observations, &evidence, &history, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		sc.Skill = skills.Skill(skill)
		sc.Level = maturity.Band(level)
		sc.Trend = progress.Trend(tr)
		if err := json.Unmarshal(evidence, &sc.Evidence); err != nil {
			return nil, fmt.Errorf("decode %s evidence: %w", skill, err)
		}
		if err := json.Unmarshal(history, &sc.History); err != nil {
			return nil, fmt.Errorf("decode %s history: %w", skill, err)
		}
		out[sc.Skill] = sc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	return out, nil
}

// SaveScores implements ScoreRepo. All scores are written in one
// transaction.
func (s *Store) SaveScores(ctx context.Context, tenant, student string, scores []progress.SkillScore) error {
	return s.writeTx(ctx, func(q queryer) error {
		return saveScores(ctx, q, tenant, student, scores)
	})
}

// RecordOutcome implements ScoreRepo. The outcome insert, the score read,
// apply and the score upserts share one write transaction; a failure
// anywhere leaves neither the outcome nor any score behind.
func (s *Store) RecordOutcome(ctx context.Context, tenant, student string, o quest.Outcome, apply ApplyFunc) ([]progress.SkillScore, map[skills.Skill]progress.SkillScore, error) {
	var (
		changed []progress.SkillScore
		current map[skills.Skill]progress.SkillScore
	)
	err := s.writeTx(ctx, func(q queryer) error {
		if _, err := s.appendOutcome(ctx, q, tenant, student, o); err != nil {
			return err
		}
		var err error
		if current, err = loadScores(ctx, q, tenant, student); err != nil {
			return err
		}
		changed = apply(current)
		if err := saveScores(ctx, q, tenant, student, changed); err != nil {
			return err
		}
		for _, sc := range changed {
			current[sc.Skill] = sc
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return changed, current, nil
}

func saveScores(ctx context.Context, q queryer, tenant, student string, scores []progress.SkillScore) error {
	for _, sc := range scores {
		evidence, err := json.Marshal(nonNil(sc.Evidence))
		if err != nil {
			return fmt.Errorf("encode %s evidence: %w", sc.Skill, err)
		}
		history, err := json.Marshal(nonNil(sc.History))
		if err != nil {
			return fmt.Errorf("encode %s history: %w", sc.Skill, err)
		}
		query, args := builder().
			Insert(scoreTable).
			Columns("tenant", "student", "skill", "score", "level", "trend", "observations", "evidence", "history", "updated_at").
			Values(tenant, student, string(sc.Skill), sc.Score, string(sc.Level), string(sc.Trend), sc.Observations, string(evidence), string(history), sc.UpdatedAt.UTC()).
			OnConflict(
				entsql.ConflictColumns("tenant", "student", "skill"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save score %s: %w", sc.Skill, err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
