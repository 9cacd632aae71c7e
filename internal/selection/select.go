// Package selection ranks candidate quests for a student and picks the
// top of the ranking.
package selection

import (
	"sort"
	"time"

	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// NeutralScore stands in for a skill the student has no score for.
const NeutralScore = 50.0

// EmphasisSource reports the curricular emphasis of a skill at a grade.
// *expectation.Table satisfies it.
type EmphasisSource interface {
	Emphasis(g skills.Grade, s skills.Skill) float64
}

// Options carries the optional inputs of Select.
type Options struct {
	// Emphasis supplies per-grade weights. Nil weighs every skill 0.
	Emphasis EmphasisSource

	// Outcomes feed the weak-signal term when WeakSignal.Enabled is set.
	Outcomes   []quest.Outcome
	Now        time.Time
	WeakSignal WeakSignalConfig

	// Boosts is the resolved class focus. Nil applies no boost.
	Boosts classfocus.Boosts
}

// Ranked is a candidate with its priority breakdown.
type Ranked struct {
	Quest quest.Quest `json:"quest"`

	Base  float64 `json:"base"`
	Weak  float64 `json:"weak"`
	Boost float64 `json:"boost"`
	Final float64 `json:"final"`

	// Position is the candidate's index in the filtered pool.
	Position int `json:"position"`
}

// Filter keeps the candidates applicable at grade. When none apply it
// falls back to the candidates applicable at every grade.
func Filter(candidates []quest.Quest, grade skills.Grade) []quest.Quest {
	var out []quest.Quest
	for _, q := range candidates {
		if q.AppliesTo(grade) {
			out = append(out, q)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, q := range candidates {
		if q.Grades.IsUniversal() {
			out = append(out, q)
		}
	}
	return out
}

// ScoreOf returns the student's score for s, or NeutralScore when absent.
func ScoreOf(scores map[skills.Skill]float64, s skills.Skill) float64 {
	if v, ok := scores[s]; ok {
		return v
	}
	return NeutralScore
}

// BasePriority sums emphasis times score gap over the quest's primary
// skills.
func BasePriority(q quest.Quest, grade skills.Grade, scores map[skills.Skill]float64, emphasis EmphasisSource) float64 {
	if emphasis == nil {
		return 0
	}
	var p float64
	for _, s := range q.PrimarySkills {
		p += emphasis.Emphasis(grade, s) * (100 - ScoreOf(scores, s))
	}
	return p
}

// Rank filters candidates by grade and orders them by final priority,
// highest first. Equal priorities keep their candidate order.
func Rank(candidates []quest.Quest, grade skills.Grade, scores map[skills.Skill]float64, opts Options) []Ranked {
	pool := Filter(candidates, grade)

	var weak map[skills.Skill]float64
	if opts.WeakSignal.Enabled {
		weak = WeakSignals(opts.Outcomes, opts.Now, opts.WeakSignal)
	}

	ranked := make([]Ranked, len(pool))
	for i, q := range pool {
		r := Ranked{Quest: q, Position: i}
		r.Base = BasePriority(q, grade, scores, opts.Emphasis)
		if weak != nil {
			r.Weak = weakTerm(q.PrimarySkills, weak, opts.WeakSignal.Multiplier)
		}
		d := classfocus.ForCandidate(r.Base+r.Weak, q.PrimarySkills, opts.Boosts)
		r.Boost = d.Fraction
		r.Final = d.Final
		ranked[i] = r
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Final > ranked[j].Final
	})
	return ranked
}

// Select returns the count highest-priority candidates for grade.
func Select(candidates []quest.Quest, grade skills.Grade, scores map[skills.Skill]float64, count int, opts Options) []Ranked {
	if count <= 0 {
		return nil
	}
	ranked := Rank(candidates, grade, scores, opts)
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked
}

// Quests strips the breakdown from ranked results.
func Quests(ranked []Ranked) []quest.Quest {
	out := make([]quest.Quest, len(ranked))
	for i, r := range ranked {
		out[i] = r.Quest
	}
	return out
}
