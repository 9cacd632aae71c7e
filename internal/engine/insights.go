package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/skillquest/internal/evidence"
	"github.com/abhisek/skillquest/internal/expectation"
	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/narrative"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
)

// Assessment is the evidence gate applied to an outcome history.
type Assessment struct {
	Coverage   evidence.Coverage   `json:"coverage"`
	Gate       evidence.Result     `json:"gate"`
	Disclosure evidence.Disclosure `json:"disclosure"`
}

// SkillView is one skill as shown to students and guides.
type SkillView struct {
	Skill skills.Skill   `json:"skill"`
	Score float64        `json:"score"`
	Trend progress.Trend `json:"trend"`

	Student maturity.StudentView `json:"student"`
	Guide   maturity.GuideView   `json:"guide"`

	// Narrative is the grade expectation's guide-facing text.
	Narrative string `json:"narrative,omitempty"`
}

// Insights is the parent and teacher view of a student.
type Insights struct {
	Identity   Identity             `json:"identity"`
	Assessment Assessment           `json:"assessment"`
	Skills     []SkillView          `json:"skills"`
	Readiness  *progress.Readiness  `json:"readiness,omitempty"`
	Narrative  *narrative.Narrative `json:"narrative,omitempty"`
}

// Assess derives talent signals from outcomes and gates them.
func (e *Engine) Assess(outcomes []quest.Outcome) Assessment {
	cov := evidence.Cover(outcomes)
	res := evidence.Gate(evidence.Derive(outcomes, e.cfg.Signals), cov.Total, e.cfg.Evidence)
	return Assessment{
		Coverage:   cov,
		Gate:       res,
		Disclosure: evidence.Disclosures(res, cov, e.cfg.Evidence),
	}
}

// SkillViews builds the per-skill student and guide views in canonical
// skill order. Skills without a score are omitted.
func (e *Engine) SkillViews(grade skills.Grade, scores map[skills.Skill]progress.SkillScore) []SkillView {
	var out []SkillView
	for _, s := range skills.AllSkills() {
		sc, ok := scores[s]
		if !ok {
			continue
		}
		expected, has := e.deps.Expectations.ExpectedBand(grade, s)
		v := SkillView{
			Skill:   s,
			Score:   sc.Score,
			Trend:   sc.Trend,
			Student: maturity.ForStudent(sc.Level, sc.Score),
			Guide:   maturity.ForGuide(sc.Level, expected, has, e.cfg.BandTolerance),
		}
		v.Narrative, _ = e.deps.Expectations.Narrative(grade, s, expectation.AudienceGuide)
		out = append(out, v)
	}
	return out
}

// Insights loads a student's history and returns the gated assessment,
// skill views, the latest readiness for goal and, when a narrator is
// configured and the gate allows it, a parent narrative. A failed
// narrative is logged and left out rather than failing the call.
func (e *Engine) Insights(ctx context.Context, id Identity, goal string) (Insights, error) {
	if err := id.Validate(); err != nil {
		return Insights{}, err
	}
	switch {
	case e.deps.Scores == nil:
		return Insights{}, errMissing("score")
	case e.deps.Outcomes == nil:
		return Insights{}, errMissing("outcome")
	}

	outcomes, err := e.deps.Outcomes.ListOutcomes(ctx, id.Tenant, id.Student, time.Time{})
	if err != nil {
		return Insights{}, fmt.Errorf("list outcomes: %w", err)
	}
	scores, err := e.deps.Scores.LoadScores(ctx, id.Tenant, id.Student)
	if err != nil {
		return Insights{}, fmt.Errorf("load scores: %w", err)
	}

	grade := id.grade()
	in := Insights{
		Identity:   Identity{Tenant: id.Tenant, Student: id.Student, Grade: grade},
		Assessment: e.Assess(outcomes),
		Skills:     e.SkillViews(grade, scores),
	}

	if goal != "" && e.deps.Readiness != nil {
		resolved, _ := e.deps.Goals.Resolve(goal)
		r, err := e.deps.Readiness.LatestReadiness(ctx, id.Tenant, id.Student, resolved.Title)
		switch {
		case err == nil:
			in.Readiness = &r
		case errors.Is(err, store.ErrNotFound):
		default:
			return Insights{}, fmt.Errorf("latest readiness: %w", err)
		}
	}

	if e.deps.Narrator != nil {
		facts := narrative.Facts{
			Grade:      grade,
			Goal:       goal,
			Completed:  in.Assessment.Coverage.Total,
			Disclosure: in.Assessment.Disclosure,
			Signals:    in.Assessment.Gate.Unlocked,
		}
		if in.Readiness != nil {
			facts.Goal = in.Readiness.Goal
			facts.Readiness = in.Readiness.Value
		}
		n, err := e.deps.Narrator.Compose(ctx, facts)
		if err != nil {
			e.log.Warn("parent narrative unavailable", "tenant", id.Tenant, "student", id.Student, "error", err)
		} else {
			in.Narrative = &n
		}
	}
	return in, nil
}
