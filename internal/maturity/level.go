package maturity

import "math"

// levelRange is the student-facing level span owned by each band.
// Unclassified shares the first span with Discovering.
var levelRange = map[Band][2]int{
	Unclassified: {1, 2},
	Discovering:  {1, 2},
	Practicing:   {3, 4},
	Consistent:   {5, 6},
	Independent:  {7, 8},
	Adaptive:     {9, 10},
}

// baseXP is the XP floor of each band. A band's bonus span is the distance
// to the next floor; Adaptive uses a fixed span.
var baseXP = map[Band]int{
	Unclassified: 0,
	Discovering:  100,
	Practicing:   250,
	Consistent:   450,
	Independent:  700,
	Adaptive:     1000,
}

const adaptiveXPSpan = 300

// MapToLevel returns the student-facing level (1..10) for a band and score.
func MapToLevel(b Band, score float64) int {
	r, ok := levelRange[b]
	if !ok {
		return 1
	}
	lo, hi := r[0], r[1]
	n := normalize(score)
	level := lo + int(math.Floor(n*float64(hi-lo+1)))
	if level > hi {
		level = hi
	}
	return level
}

// MapToXP returns the student-facing XP for a band and score: the band's
// floor plus the normalized score's share of the step to the next floor.
// A full score reaches the next band's floor.
func MapToXP(b Band, score float64) int {
	base, ok := baseXP[b]
	if !ok {
		return 0
	}
	span := adaptiveXPSpan
	if i := Order(b); i < len(canonical)-1 {
		span = baseXP[canonical[i+1]] - base
	}
	return base + int(math.Round(normalize(score)*float64(span)))
}

// LevelTitle names a level for the student view.
func LevelTitle(level int) string {
	switch {
	case level <= 1:
		return "Spark"
	case level == 2:
		return "Explorer"
	case level == 3:
		return "Apprentice"
	case level == 4:
		return "Builder"
	case level == 5:
		return "Navigator"
	case level == 6:
		return "Strategist"
	case level == 7:
		return "Pathfinder"
	case level == 8:
		return "Trailblazer"
	case level == 9:
		return "Innovator"
	default:
		return "Visionary"
	}
}

func normalize(score float64) float64 {
	return math.Max(0, math.Min(1, score/100))
}

// StudentView is what a student sees for a skill. It never carries the band.
type StudentView struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	XP    int    `json:"xp"`
}

// GuideView is what parents and teachers see for a skill.
type GuideView struct {
	Band       Band       `json:"band"`
	Expected   Band       `json:"expected,omitempty"`
	Comparison Comparison `json:"comparison"`
}

// ForStudent builds the student view of a band and score.
func ForStudent(b Band, score float64) StudentView {
	level := MapToLevel(b, score)
	return StudentView{Level: level, Title: LevelTitle(level), XP: MapToXP(b, score)}
}

// ForGuide builds the guide view. hasExpected is false when no expectation
// exists for the grade and skill, in which case no judgement is made.
func ForGuide(current, expected Band, hasExpected bool, tolerance int) GuideView {
	if !hasExpected {
		return GuideView{Band: current, Comparison: WithinExpected}
	}
	return GuideView{
		Band:       current,
		Expected:   expected,
		Comparison: Compare(current, expected, tolerance),
	}
}
