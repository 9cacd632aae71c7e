package weekly

import (
	"math"
	"sort"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// gradeMix is the quest-type split per grade in percent. Lower grades lean
// on reflection and scenarios, grade 8 on mini-games.
var gradeMix = map[skills.Grade]map[quest.Type]int{
	skills.Grade6: {quest.TypeMiniGame: 30, quest.TypeReflection: 35, quest.TypeChoiceScenario: 35},
	skills.Grade7: {quest.TypeMiniGame: 40, quest.TypeReflection: 30, quest.TypeChoiceScenario: 30},
	skills.Grade8: {quest.TypeMiniGame: 50, quest.TypeReflection: 25, quest.TypeChoiceScenario: 25},
}

// GradeMix returns the type split for g, using grade 8 for unknown grades.
func GradeMix(g skills.Grade) map[quest.Type]int {
	if m, ok := gradeMix[g]; ok {
		return m
	}
	return gradeMix[skills.DefaultGrade]
}

// blendMix averages the goal's mix with the grade's mix.
func blendMix(goal, grade map[quest.Type]int) map[quest.Type]float64 {
	out := make(map[quest.Type]float64, len(quest.AllTypes()))
	for _, t := range quest.AllTypes() {
		out[t] = (float64(goal[t]) + float64(grade[t])) / 2
	}
	return out
}

// split divides count slots across quest types in proportion to mix using
// the largest remainder method. Ties go to the earlier type in canonical
// order.
func split(count int, mix map[quest.Type]float64) map[quest.Type]int {
	out := make(map[quest.Type]int, len(mix))
	if count <= 0 {
		return out
	}
	var total float64
	for _, t := range quest.AllTypes() {
		total += mix[t]
	}
	if total <= 0 {
		return out
	}

	type rem struct {
		t    quest.Type
		frac float64
	}
	var rems []rem
	assigned := 0
	for _, t := range quest.AllTypes() {
		exact := float64(count) * mix[t] / total
		whole := int(math.Floor(exact))
		out[t] = whole
		assigned += whole
		rems = append(rems, rem{t, exact - float64(whole)})
	}

	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; assigned < count; i++ {
		out[rems[i%len(rems)].t]++
		assigned++
	}
	return out
}
