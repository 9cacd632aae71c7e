// Package progress updates per-skill scores from completed quests.
package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

const (
	// Baseline is the score a skill starts from.
	Baseline = 50.0

	// TrendWindow is how many earlier history points the trend looks back.
	TrendWindow = 3

	// TrendDelta is the score change that counts as a trend.
	TrendDelta = 3.0
)

// Trend is the recent direction of a skill score.
type Trend string

const (
	Improving      Trend = "improving"
	Stable         Trend = "stable"
	NeedsAttention Trend = "needs_attention"
)

// Point is one entry of a score history.
type Point struct {
	At    time.Time `json:"at"`
	Score float64   `json:"score"`
}

// SkillScore is a student's running score for one skill.
type SkillScore struct {
	Skill        skills.Skill  `json:"skill"`
	Score        float64       `json:"score"`
	Level        maturity.Band `json:"level"`
	Trend        Trend         `json:"trend"`
	Observations int           `json:"observations"`
	Evidence     []string      `json:"evidence"`
	History      []Point       `json:"history"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Apply folds one outcome into prev and returns the new score. A nil prev
// starts from Baseline. prev is not modified.
//
// The score moves by (normalized - 50) / 10 and is clamped to [0,100].
func Apply(prev *SkillScore, skill skills.Skill, o quest.Outcome, now time.Time) SkillScore {
	s := SkillScore{Skill: skill, Score: Baseline}
	if prev != nil {
		s = *prev
		s.Evidence = append([]string(nil), prev.Evidence...)
		s.History = append([]Point(nil), prev.History...)
	}

	delta := (float64(o.NormalizedScore) - 50) / 10
	s.Score = clamp(round1(s.Score+delta), 0, 100)
	s.Observations++
	s.Level = maturity.BandForScore(s.Score, s.Observations)
	s.History = append(s.History, Point{At: now, Score: s.Score})
	s.Trend = trend(s.History)
	s.Evidence = append(s.Evidence, evidenceLine(o, now))
	s.UpdatedAt = now
	return s
}

// ApplyAll applies o to every skill it is tagged with and returns the
// updated scores in canonical skill order. current is not modified.
func ApplyAll(current map[skills.Skill]SkillScore, o quest.Outcome, now time.Time) []SkillScore {
	tagged := append([]skills.Skill(nil), o.Skills...)
	skills.Sort(tagged)

	var out []SkillScore
	seen := make(map[skills.Skill]bool, len(tagged))
	for _, sk := range tagged {
		if seen[sk] || !sk.Valid() {
			continue
		}
		seen[sk] = true
		var prev *SkillScore
		if cur, ok := current[sk]; ok {
			prev = &cur
		}
		out = append(out, Apply(prev, sk, o, now))
	}
	return out
}

// Values flattens scores to the numeric map used by selection.
func Values(scores []SkillScore) map[skills.Skill]float64 {
	out := make(map[skills.Skill]float64, len(scores))
	for _, s := range scores {
		out[s.Skill] = s.Score
	}
	return out
}

func trend(history []Point) Trend {
	if len(history) < 2 {
		return Stable
	}
	from := len(history) - 1 - TrendWindow
	if from < 0 {
		from = 0
	}
	diff := history[len(history)-1].Score - history[from].Score
	switch {
	case diff >= TrendDelta:
		return Improving
	case diff <= -TrendDelta:
		return NeedsAttention
	default:
		return Stable
	}
}

func evidenceLine(o quest.Outcome, now time.Time) string {
	id := o.QuestID
	if id == "" {
		id = "activity"
	}
	return fmt.Sprintf("%s %s: score %d, accuracy %d%%", now.Format("2006-01-02"), id, o.NormalizedScore, o.Accuracy)
}

// Readiness is how prepared a student is for their goal, 0..100.
type Readiness struct {
	Goal       string    `json:"goal"`
	Value      float64   `json:"value"`
	ComputedAt time.Time `json:"computedAt"`
}

// GoalReadiness averages the student's scores weighted by the goal's
// skill weights. Skills without a score count as Baseline.
func GoalReadiness(goal goals.Map, scores map[skills.Skill]float64, now time.Time) Readiness {
	var sum, weight float64
	for _, s := range goal.Skills() {
		w := goal.Weight(s)
		v, ok := scores[s]
		if !ok {
			v = Baseline
		}
		sum += w * v
		weight += w
	}
	r := Readiness{Goal: goal.Title, ComputedAt: now}
	if weight > 0 {
		r.Value = clamp(round1(sum/weight), 0, 100)
	}
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
