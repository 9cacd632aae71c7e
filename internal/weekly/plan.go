// Package weekly builds goal-aligned seven-day quest plans.
package weekly

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/selection"
	"github.com/abhisek/skillquest/internal/skills"
)

const (
	// Days is the length of a plan.
	Days = 7

	// DefaultMinutesPerQuest is the time budget assumed per quest.
	DefaultMinutesPerQuest = 5

	// FocusSize is how many focus skills a week gets.
	FocusSize = 3

	// DateLayout formats plan dates.
	DateLayout = "2006-01-02"
)

// Request is the input of Plan.
type Request struct {
	Student       string
	GoalTitle     string
	WeeklyMinutes int
	Scores        map[skills.Skill]float64
	WeekStart     time.Time
	Grade         skills.Grade
}

// FocusSkill is a focus skill and the priority that earned it the slot.
type FocusSkill struct {
	Skill    skills.Skill `json:"skill"`
	Priority float64      `json:"priority"`
}

// Day is one day of a plan.
type Day struct {
	Date   string        `json:"date"`
	Quests []quest.Quest `json:"quests"`
}

// Plan is a seven-day quest plan.
type Plan struct {
	Goal      string       `json:"goal"`
	GoalMatch goals.Match  `json:"goalMatch"`
	Grade     skills.Grade `json:"grade"`
	WeekStart string       `json:"weekStart"`
	Focus     []FocusSkill `json:"focus"`
	PerDay    int          `json:"perDay"`
	Days      []Day        `json:"days"`
}

// FocusSkills returns the focus skills without priorities.
func (p Plan) FocusSkills() []skills.Skill {
	out := make([]skills.Skill, len(p.Focus))
	for i, f := range p.Focus {
		out[i] = f.Skill
	}
	return out
}

// TotalQuests returns the number of quests across all days.
func (p Plan) TotalQuests() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Quests)
	}
	return n
}

// TotalMinutes sums the estimated minutes of every quest.
func (p Plan) TotalMinutes() int {
	n := 0
	for _, d := range p.Days {
		for _, q := range d.Quests {
			n += q.EstimatedMinutes
		}
	}
	return n
}

// Planner builds weekly plans.
type Planner struct {
	Goals    *goals.Table
	Emphasis selection.EmphasisSource

	// MinutesPerQuest is the per-quest budget. Zero uses
	// DefaultMinutesPerQuest.
	MinutesPerQuest int

	// Deterministic orders each day's quest types with a shuffle seeded
	// by student, week and day. Otherwise the order is random.
	Deterministic bool
}

// Plan builds the plan for one student and week. It never fails: an
// unknown goal gets the balanced default map and a budget below one quest
// per day yields empty days.
func (p *Planner) Plan(req Request) Plan {
	grade := req.Grade
	if !grade.Valid() {
		grade = skills.DefaultGrade
	}
	goal, match := p.Goals.Resolve(req.GoalTitle)
	start := startOfDay(req.WeekStart)

	plan := Plan{
		Goal:      goal.Title,
		GoalMatch: match,
		Grade:     grade,
		WeekStart: start.Format(DateLayout),
		Focus:     p.focus(goal, grade, req.Scores),
		PerDay:    p.perDay(req.WeeklyMinutes),
	}

	counts := split(plan.PerDay, blendMix(goal.QuestTypeMix, GradeMix(grade)))
	focus := plan.FocusSkills()
	if len(focus) == 0 {
		focus = []skills.Skill{skills.Reasoning}
	}

	for d := range Days {
		date := start.AddDate(0, 0, d).Format(DateLayout)
		types := p.dayTypes(counts, fmt.Sprintf("%s|%s|%d", req.Student, plan.WeekStart, d))

		day := Day{Date: date, Quests: make([]quest.Quest, 0, len(types))}
		for i, typ := range types {
			skill := focus[(d+i)%len(focus)]
			id := fmt.Sprintf("wk-%s-d%d-q%d", plan.WeekStart, d+1, i+1)
			seed := fmt.Sprintf("%s|%s|%d|%d", req.Student, plan.WeekStart, d, i)
			day.Quests = append(day.Quests, buildQuest(id, seed, typ, skill, grade))
		}
		plan.Days = append(plan.Days, day)
	}
	return plan
}

// focus ranks the goal's skills by weight, grade emphasis and score gap.
func (p *Planner) focus(goal goals.Map, grade skills.Grade, scores map[skills.Skill]float64) []FocusSkill {
	var ranked []FocusSkill
	for _, s := range goal.Skills() {
		emphasis := 0.0
		if p.Emphasis != nil {
			emphasis = p.Emphasis.Emphasis(grade, s)
		}
		priority := goal.Weight(s) * (1 + emphasis) * (100 - selection.ScoreOf(scores, s))
		ranked = append(ranked, FocusSkill{Skill: s, Priority: priority})
	}
	// Goal skills come in canonical order, so the stable sort breaks ties
	// by that order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	if len(ranked) > FocusSize {
		ranked = ranked[:FocusSize]
	}
	return ranked
}

func (p *Planner) perDay(weeklyMinutes int) int {
	if weeklyMinutes <= 0 {
		return 0
	}
	per := p.MinutesPerQuest
	if per <= 0 {
		per = DefaultMinutesPerQuest
	}
	return int(math.Floor(float64(weeklyMinutes) / Days / float64(per)))
}

// dayTypes expands counts into a list of quest types and shuffles it.
func (p *Planner) dayTypes(counts map[quest.Type]int, seed string) []quest.Type {
	var types []quest.Type
	for _, t := range quest.AllTypes() {
		for range counts[t] {
			types = append(types, t)
		}
	}
	swap := func(i, j int) { types[i], types[j] = types[j], types[i] }
	if p.Deterministic {
		contentgen.Shuffle(seed, len(types), swap)
	} else {
		rand.Shuffle(len(types), swap)
	}
	return types
}

func startOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
