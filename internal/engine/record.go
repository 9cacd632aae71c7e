package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
)

// Attempt is a student's completed quest.
type Attempt struct {
	Quest quest.Quest `json:"quest"`

	// Answers holds one answer per mini-game item, the reflection text, or
	// the chosen option (text or 1-based number) of a choice scenario.
	Answers          []string `json:"answers"`
	TimeSpentSeconds int      `json:"timeSpentSeconds"`
	HintsUsed        int      `json:"hintsUsed"`

	// CompletedAt defaults to now.
	CompletedAt time.Time `json:"completedAt,omitempty"`

	// Goal, when set, has its readiness recomputed after scoring.
	Goal string `json:"goal,omitempty"`
}

// Recorded is everything Record produced.
type Recorded struct {
	Result    contentgen.Result     `json:"result"`
	Outcome   quest.Outcome         `json:"outcome"`
	Scores    []progress.SkillScore `json:"scores"`
	Unlocks   []careers.Unlock      `json:"unlocks,omitempty"`
	Readiness *progress.Readiness   `json:"readiness,omitempty"`
}

// Validate rejects attempts that cannot be graded, or whose grading would
// not be bounded: unknown content, a mini-game over contentgen.MaxItems
// items, or more answers than that.
func (a Attempt) Validate() error {
	if !a.Quest.Type().Valid() {
		return &ValidationError{Err: errors.New("attempt has no quest content")}
	}
	if mg, ok := a.Quest.Content.(quest.MiniGame); ok && (mg.QuestionCount < 0 || mg.QuestionCount > contentgen.MaxItems) {
		return &ValidationError{Err: fmt.Errorf("mini-game question count %d outside 0..%d", mg.QuestionCount, contentgen.MaxItems)}
	}
	if len(a.Answers) > contentgen.MaxItems {
		return &ValidationError{Err: fmt.Errorf("%d answers, at most %d allowed", len(a.Answers), contentgen.MaxItems)}
	}
	return nil
}

// ScoreActivity grades an attempt. Mini-games are graded against their
// regenerated items; a reflection counts as correct when it is not blank
// and a choice scenario when one of its options was picked.
func (e *Engine) ScoreActivity(a Attempt) (contentgen.Result, error) {
	if err := a.Validate(); err != nil {
		return contentgen.Result{}, err
	}
	return contentgen.Score(attemptItems(a), a.Answers, a.TimeSpentSeconds, a.HintsUsed, e.cfg.Penalties), nil
}

func attemptItems(a Attempt) []contentgen.Item {
	first := ""
	if len(a.Answers) > 0 {
		first = strings.TrimSpace(a.Answers[0])
	}
	switch c := a.Quest.Content.(type) {
	case quest.MiniGame:
		return contentgen.ItemsFor(a.Quest)
	case quest.Reflection:
		return []contentgen.Item{{Prompt: c.Prompt, Answer: first}}
	case quest.ChoiceScenario:
		return []contentgen.Item{{Prompt: c.Scenario, Choices: c.Choices, Answer: pickChoice(c.Choices, first)}}
	default:
		return nil
	}
}

// pickChoice resolves an answer to one of choices, by 1-based number or by
// text. It returns "" when the answer picks nothing.
func pickChoice(choices []string, answer string) string {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1]
	}
	for _, c := range choices {
		if strings.EqualFold(strings.TrimSpace(c), answer) {
			return c
		}
	}
	return ""
}

// Careers proposes career unlocks for a scored attempt. It returns nil when
// career unlocks are disabled.
func (e *Engine) Careers(q quest.Quest, r contentgen.Result, alreadyUnlocked []string) []careers.Unlock {
	if !e.cfg.CareerUnlocks {
		return nil
	}
	perf := careers.Performance{QuestID: q.ID, Accuracy: r.Accuracy, NormalizedScore: r.NormalizedScore}
	return careers.Evaluate(careers.SignalsFor(q), perf, alreadyUnlocked, e.cfg.Careers)
}

// Record scores an attempt and persists its consequences. The outcome and
// the skill score updates are written together, so concurrent attempts by
// one student each build on the other's scores. New career unlocks are
// stored and the goal readiness recomputed afterwards. The score repository
// is required; careers and readiness are skipped when their repositories
// are absent.
func (e *Engine) Record(ctx context.Context, id Identity, a Attempt) (Recorded, error) {
	if err := id.Validate(); err != nil {
		return Recorded{}, err
	}
	if e.deps.Scores == nil {
		return Recorded{}, errMissing("score")
	}

	now := e.now()
	completed := a.CompletedAt
	if completed.IsZero() {
		completed = now
	}

	var (
		rec Recorded
		err error
	)
	if rec.Result, err = e.ScoreActivity(a); err != nil {
		return Recorded{}, err
	}
	rec.Outcome = quest.Outcome{
		QuestID:         a.Quest.ID,
		Type:            a.Quest.Type(),
		Skills:          a.Quest.Skills(),
		Accuracy:        rec.Result.Accuracy,
		NormalizedScore: rec.Result.NormalizedScore,
		CompletedAt:     completed.UTC(),
	}
	changed, current, err := e.deps.Scores.RecordOutcome(ctx, id.Tenant, id.Student, rec.Outcome,
		func(cur map[skills.Skill]progress.SkillScore) []progress.SkillScore {
			return progress.ApplyAll(cur, rec.Outcome, now)
		})
	if err != nil {
		return Recorded{}, fmt.Errorf("record outcome: %w", err)
	}
	rec.Scores = changed

	if e.cfg.CareerUnlocks && e.deps.Careers != nil {
		unlocks, err := e.unlock(ctx, id, a.Quest, rec.Result, now)
		if err != nil {
			return Recorded{}, err
		}
		rec.Unlocks = unlocks
	}

	if a.Goal != "" && e.deps.Readiness != nil {
		goal, _ := e.deps.Goals.Resolve(a.Goal)
		r := progress.GoalReadiness(goal, ScoreValues(current), now)
		if err := e.deps.Readiness.SaveReadiness(ctx, id.Tenant, id.Student, r); err != nil {
			return Recorded{}, fmt.Errorf("save readiness: %w", err)
		}
		rec.Readiness = &r
	}

	e.log.Info("activity recorded", "tenant", id.Tenant, "student", id.Student,
		"quest", a.Quest.ID, "accuracy", rec.Result.Accuracy, "normalized", rec.Result.NormalizedScore,
		"skills", len(rec.Scores), "unlocks", len(rec.Unlocks))
	return rec, nil
}

func (e *Engine) unlock(ctx context.Context, id Identity, q quest.Quest, r contentgen.Result, now time.Time) ([]careers.Unlock, error) {
	have, err := e.deps.Careers.UnlockedCareers(ctx, id.Tenant, id.Student)
	if err != nil {
		return nil, fmt.Errorf("load unlocked careers: %w", err)
	}
	unlocks := e.Careers(q, r, have)
	if len(unlocks) == 0 {
		return nil, nil
	}
	added, err := e.deps.Careers.RecordUnlocks(ctx, id.Tenant, id.Student, unlocks, now)
	if err != nil {
		return nil, fmt.Errorf("record unlocks: %w", err)
	}
	if len(added) < len(unlocks) {
		e.log.Info("career unlocks already recorded", "student", id.Student, "proposed", len(unlocks), "stored", len(added))
	}
	return added, nil
}

// UnlockedCareers lists the careers a student has unlocked.
func (e *Engine) UnlockedCareers(ctx context.Context, id Identity) ([]store.UnlockRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if e.deps.Careers == nil {
		return nil, errMissing("career")
	}
	return e.deps.Careers.ListUnlocks(ctx, id.Tenant, id.Student)
}
