package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/selection"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/weekly"
)

// DailyInput parameterizes DailyQuests.
type DailyInput struct {
	// Date is the plan day. Zero means today.
	Date time.Time

	// Teacher selects the class focus profile. Empty applies none.
	Teacher string

	// Count overrides Config.DailyCount when positive.
	Count int
}

// WeeklyInput parameterizes WeeklyPlan.
type WeeklyInput struct {
	// WeekStart is the first day of the week. Zero means today.
	WeekStart time.Time

	Goal          string
	WeeklyMinutes int
}

// selectionInputs is what daily selection reads from storage.
type selectionInputs struct {
	scores   map[skills.Skill]float64
	outcomes []quest.Outcome
	boosts   classfocus.Boosts
	profile  string
}

// DailyQuests returns the student's quest set for a day, creating it on
// first request. The set is built from candidates seeded by student and
// date, filtered to the grade, ranked by curricular gap, weak signals and
// class focus, and cut to the daily count.
func (e *Engine) DailyQuests(ctx context.Context, id Identity, in DailyInput) (store.PlanRecord, error) {
	if err := id.Validate(); err != nil {
		return store.PlanRecord{}, err
	}
	day := dayOf(in.Date, e.now())
	key := store.PlanKey{Tenant: id.Tenant, Student: id.Student, Date: day.Format(weekly.DateLayout), Mode: store.ModeDaily}

	return e.GetOrCreate(ctx, key, func(ctx context.Context) (store.PlanRecord, error) {
		grade := id.grade()
		now := e.now()
		si, err := e.loadSelectionInputs(ctx, id, in.Teacher, grade, now)
		if err != nil {
			return store.PlanRecord{}, err
		}

		count := in.Count
		if count <= 0 {
			count = e.cfg.DailyCount
		}
		candidates := contentgen.Candidates(id.Student + "|" + key.Date)
		ranked := selection.Select(candidates, grade, si.scores, count, selection.Options{
			Emphasis:   e.deps.Expectations,
			Outcomes:   si.outcomes,
			Now:        now,
			WeakSignal: e.cfg.WeakSignal,
			Boosts:     si.boosts,
		})
		e.log.Debug("daily quests selected", "tenant", id.Tenant, "student", id.Student,
			"grade", grade, "candidates", len(candidates), "selected", len(ranked), "focus_profile", si.profile)

		return store.PlanRecord{Grade: grade, Quests: selection.Quests(ranked)}, nil
	})
}

// loadSelectionInputs reads scores, recent outcomes and the class focus
// profile concurrently. Missing optional repositories contribute nothing.
func (e *Engine) loadSelectionInputs(ctx context.Context, id Identity, teacher string, grade skills.Grade, now time.Time) (selectionInputs, error) {
	var si selectionInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scores, err := e.scoreValues(gctx, id)
		si.scores = scores
		return err
	})
	if e.cfg.WeakSignal.Enabled && e.deps.Outcomes != nil {
		g.Go(func() error {
			out, err := e.deps.Outcomes.ListOutcomes(gctx, id.Tenant, id.Student, now.Add(-e.cfg.WeakSignal.Window))
			if err != nil {
				return fmt.Errorf("list outcomes: %w", err)
			}
			si.outcomes = out
			return nil
		})
	}
	if e.cfg.ClassFocus && teacher != "" && e.deps.Focus != nil {
		g.Go(func() error {
			profiles, err := e.deps.Focus.ListProfiles(gctx, id.Tenant, teacher)
			if err != nil {
				return fmt.Errorf("list focus profiles: %w", err)
			}
			if p, ok := classfocus.ResolveActive(profiles, id.Tenant, teacher, grade, now); ok {
				si.boosts = p.Boosts
				si.profile = p.ID
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return selectionInputs{}, err
	}
	return si, nil
}

func (e *Engine) scoreValues(ctx context.Context, id Identity) (map[skills.Skill]float64, error) {
	if e.deps.Scores == nil {
		return map[skills.Skill]float64{}, nil
	}
	cur, err := e.deps.Scores.LoadScores(ctx, id.Tenant, id.Student)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	return ScoreValues(cur), nil
}

// WeeklyPlan returns the student's goal-aligned plan for a week, creating
// it on first request.
func (e *Engine) WeeklyPlan(ctx context.Context, id Identity, in WeeklyInput) (store.PlanRecord, error) {
	if err := id.Validate(); err != nil {
		return store.PlanRecord{}, err
	}
	start := dayOf(in.WeekStart, e.now())
	key := store.PlanKey{Tenant: id.Tenant, Student: id.Student, Date: start.Format(weekly.DateLayout), Mode: store.ModeWeekly}

	return e.GetOrCreate(ctx, key, func(ctx context.Context) (store.PlanRecord, error) {
		scores, err := e.scoreValues(ctx, id)
		if err != nil {
			return store.PlanRecord{}, err
		}
		plan := e.Plan(id, in, scores)
		return store.PlanRecord{Grade: plan.Grade, Weekly: &plan}, nil
	})
}

// Plan builds a weekly plan from explicit scores without touching storage.
func (e *Engine) Plan(id Identity, in WeeklyInput, scores map[skills.Skill]float64) weekly.Plan {
	return e.planner.Plan(weekly.Request{
		Student:       id.Student,
		GoalTitle:     in.Goal,
		WeeklyMinutes: in.WeeklyMinutes,
		Scores:        scores,
		WeekStart:     dayOf(in.WeekStart, e.now()),
		Grade:         id.grade(),
	})
}

// StoredPlan returns a previously created plan without building one. It
// returns store.ErrNotFound when none exists.
func (e *Engine) StoredPlan(ctx context.Context, id Identity, mode store.Mode, date time.Time) (store.PlanRecord, error) {
	if err := id.Validate(); err != nil {
		return store.PlanRecord{}, err
	}
	key := store.PlanKey{Tenant: id.Tenant, Student: id.Student, Date: dayOf(date, e.now()).Format(weekly.DateLayout), Mode: mode}
	return e.deps.Plans.GetPlan(ctx, key)
}

// dayOf truncates t (or now when t is zero) to midnight UTC.
func dayOf(t, now time.Time) time.Time {
	if t.IsZero() {
		t = now
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ScoreValues exposes a student's numeric scores, as used by selection and
// planning.
func ScoreValues(scores map[skills.Skill]progress.SkillScore) map[skills.Skill]float64 {
	out := make(map[skills.Skill]float64, len(scores))
	for s, sc := range scores {
		out[s] = sc.Score
	}
	return out
}
