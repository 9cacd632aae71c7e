package evidence

import (
	"math"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// StrongScore is the normalized score from which an outcome counts as an
// observation of a strength.
const StrongScore = 70

// Definition describes a talent signal and the skills that evidence it.
type Definition struct {
	ID                 string
	Name               string
	Skills             []skills.Skill
	MinObservations    int
	MinContexts        int
	StabilityThreshold float64
	SupportActions     []string
}

// Coverage summarizes how broad a student's history is.
type Coverage struct {
	Total         int `json:"total"`
	ActivityTypes int `json:"activityTypes"`
	SkillBranches int `json:"skillBranches"`
}

// Cover counts the outcomes and the distinct quest types and skill
// branches they span.
func Cover(outcomes []quest.Outcome) Coverage {
	types := make(map[quest.Type]bool)
	branches := make(map[skills.Branch]bool)
	for _, o := range outcomes {
		if o.Type != "" {
			types[o.Type] = true
		}
		for _, s := range o.Skills {
			branches[s.Branch()] = true
		}
	}
	return Coverage{Total: len(outcomes), ActivityTypes: len(types), SkillBranches: len(branches)}
}

// Derive builds one signal per definition from outcome history.
//
// Observed counts outcomes tagged with any of the definition's skills that
// scored at least StrongScore; Contexts counts the distinct quest types
// among them. Stability is one minus the spread of all tagged outcomes'
// scores relative to 50 points, in [0,1]; fewer than two tagged outcomes
// give zero stability.
func Derive(outcomes []quest.Outcome, defs []Definition) []Signal {
	out := make([]Signal, 0, len(defs))
	for _, d := range defs {
		s := Signal{
			ID:                 d.ID,
			Name:               d.Name,
			MinObservations:    d.MinObservations,
			MinContexts:        d.MinContexts,
			StabilityThreshold: d.StabilityThreshold,
			SupportActions:     d.SupportActions,
		}

		contexts := make(map[quest.Type]bool)
		var scores []float64
		for _, o := range outcomes {
			if !tagsAny(o, d.Skills) {
				continue
			}
			scores = append(scores, float64(o.NormalizedScore))
			if o.NormalizedScore >= StrongScore {
				s.Observed++
				contexts[o.Type] = true
			}
		}
		s.Contexts = len(contexts)
		s.Stability = stability(scores)
		out = append(out, s)
	}
	return out
}

func tagsAny(o quest.Outcome, ss []skills.Skill) bool {
	for _, s := range ss {
		if o.Tags(s) {
			return true
		}
	}
	return false
}

func stability(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	var mean float64
	for _, v := range scores {
		mean += v
	}
	mean /= float64(len(scores))

	var variance float64
	for _, v := range scores {
		variance += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(variance / float64(len(scores)))

	st := 1 - sd/50
	st = math.Max(0, math.Min(1, st))
	return math.Round(st*100) / 100
}
