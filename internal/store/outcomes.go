package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// AppendOutcome implements OutcomeRepo.
func (s *Store) AppendOutcome(ctx context.Context, tenant, student string, o quest.Outcome) (int64, error) {
	var seq int64
	err := s.writeTx(ctx, func(q queryer) error {
		var err error
		seq, err = s.appendOutcome(ctx, q, tenant, student, o)
		return err
	})
	return seq, err
}

func (s *Store) appendOutcome(ctx context.Context, q queryer, tenant, student string, o quest.Outcome) (int64, error) {
	tags, err := json.Marshal(nonNil(o.Skills))
	if err != nil {
		return 0, fmt.Errorf("encode outcome skills: %w", err)
	}
	seq, err := s.seq.Next(ctx, q)
	if err != nil {
		return 0, err
	}

	query, args := builder().
		Insert(outcomeTable).
		Columns("id", "seq", "tenant", "student", "quest_id", "quest_type", "skills", "accuracy", "normalized_score", "completed_at").
		Values(uuid.NewString(), seq, tenant, student, o.QuestID, string(o.Type), string(tags), o.Accuracy, o.NormalizedScore, o.CompletedAt.UTC()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("append outcome: %w", err)
	}
	return seq, nil
}

// ListOutcomes implements OutcomeRepo. Rows come back in sequence order;
// the since cutoff is applied to the decoded timestamps.
func (s *Store) ListOutcomes(ctx context.Context, tenant, student string, since time.Time) ([]quest.Outcome, error) {
	query, args := builder().
		Select("quest_id", "quest_type", "skills", "accuracy", "normalized_score", "completed_at").
		From(entsql.Table(outcomeTable)).
		Where(entsql.And(entsql.EQ("tenant", tenant), entsql.EQ("student", student))).
		OrderBy("seq").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []quest.Outcome
	for rows.Next() {
		var (
			o    quest.Outcome
			typ  string
			tags []byte
		)
		if err := rows.Scan(&o.QuestID, &typ, &tags, &o.Accuracy, &o.NormalizedScore, &o.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		if !since.IsZero() && o.CompletedAt.Before(since) {
			continue
		}
		o.Type = quest.Type(typ)
		var ss []skills.Skill
		if err := json.Unmarshal(tags, &ss); err != nil {
			return nil, fmt.Errorf("decode outcome skills: %w", err)
		}
		o.Skills = ss
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return out, nil
}
