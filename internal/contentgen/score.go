package contentgen

import "math"

// Blend weights for the normalized score.
const (
	AccuracyWeight = 0.7
	TimeWeight     = 0.2
	HintWeight     = 0.1
)

// Penalties tunes the time and hint terms of the normalized score.
type Penalties struct {
	// PerSecond is subtracted from 100 for each second of average time.
	PerSecond float64

	// PerHint is subtracted from 100 for each hint used.
	PerHint float64
}

// DefaultPenalties returns the standard penalty constants.
func DefaultPenalties() Penalties {
	return Penalties{PerSecond: 2, PerHint: 10}
}

// Result summarizes a scored attempt.
type Result struct {
	Total              int      `json:"total"`
	Correct            int      `json:"correct"`
	Accuracy           int      `json:"accuracy"`
	AvgTimePerActivity int      `json:"avgTimePerActivity"`
	TimeEfficiency     float64  `json:"timeEfficiency"`
	HintScore          float64  `json:"hintScore"`
	NormalizedScore    int      `json:"normalizedScore"`
	Strengths          []string `json:"strengths"`
	GrowthAreas        []string `json:"growthAreas"`
}

// Score grades answers against items. answers[i] answers items[i]; missing
// answers count as wrong.
//
// Accuracy is the rounded percentage of matched answers. The normalized
// score blends 70% accuracy, 20% time efficiency and 10% hint score and is
// clamped to [0,100].
func Score(items []Item, answers []string, timeSpentSeconds, hintsUsed int, p Penalties) Result {
	r := Result{Total: len(items)}
	for i, it := range items {
		if i < len(answers) && it.Matches(answers[i]) {
			r.Correct++
		}
	}

	if r.Total > 0 {
		r.Accuracy = int(math.Round(float64(r.Correct) / float64(r.Total) * 100))
		r.AvgTimePerActivity = int(math.Round(float64(max(timeSpentSeconds, 0)) / float64(r.Total)))
	}
	r.TimeEfficiency = math.Max(0, 100-float64(r.AvgTimePerActivity)*p.PerSecond)
	r.HintScore = math.Max(0, 100-float64(max(hintsUsed, 0))*p.PerHint)

	blend := AccuracyWeight*float64(r.Accuracy) + TimeWeight*r.TimeEfficiency + HintWeight*r.HintScore
	r.NormalizedScore = int(clamp(math.Round(blend), 0, 100))

	r.Strengths = strengths(r, hintsUsed)
	r.GrowthAreas = growthAreas(r, hintsUsed)
	return r
}

func strengths(r Result, hints int) []string {
	var out []string
	if r.Accuracy >= 80 {
		out = append(out, "Accurate answers across the set")
	}
	if r.Total > 0 && r.AvgTimePerActivity <= 20 && r.Accuracy >= 60 {
		out = append(out, "Quick, confident responses")
	}
	if hints <= 0 {
		out = append(out, "Worked independently without hints")
	}
	if len(out) == 0 {
		out = append(out, "Stayed with the activity to the end")
	}
	return out
}

func growthAreas(r Result, hints int) []string {
	var out []string
	if r.Accuracy < 60 {
		out = append(out, "Revisit the items that were missed")
	}
	if r.AvgTimePerActivity > 45 {
		out = append(out, "Build pace on familiar items")
	}
	if hints >= 3 {
		out = append(out, "Try one more step before asking for a hint")
	}
	if len(out) == 0 {
		out = append(out, "Ready for a harder level next time")
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
