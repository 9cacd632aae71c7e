package contentgen

import (
	"fmt"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// candidatesKind is the seed namespace for candidate ordering.
const candidatesKind Kind = "candidates"

type template struct {
	key       string
	title     string
	minutes   int
	content   func(seed string) quest.Content
	primary   []skills.Skill
	secondary []skills.Skill
	grades    skills.GradeSet
}

func game(kind Kind, count int) func(string) quest.Content {
	return func(seed string) quest.Content {
		return quest.MiniGame{Game: string(kind), Seed: seed, QuestionCount: count}
	}
}

func reflection(prompt string) func(string) quest.Content {
	return func(string) quest.Content { return quest.Reflection{Prompt: prompt} }
}

func scenario(text string, choices ...string) func(string) quest.Content {
	return func(string) quest.Content {
		return quest.ChoiceScenario{Scenario: text, Choices: choices}
	}
}

var (
	g6        = skills.GradeSet{skills.Grade6}
	g67       = skills.GradeSet{skills.Grade6, skills.Grade7}
	g78       = skills.GradeSet{skills.Grade7, skills.Grade8}
	g8        = skills.GradeSet{skills.Grade8}
	universal = skills.Universal()
)

var templates = []template{
	{"pattern-sprint", "Pattern Sprint", 6, game(KindPattern, 8),
		[]skills.Skill{skills.Reasoning}, []skills.Skill{skills.Attention}, universal},
	{"memory-match", "Memory Lane", 5, game(KindMemory, 6),
		[]skills.Skill{skills.Memory}, []skills.Skill{skills.Attention}, universal},
	{"logic-lab", "Logic Lab", 7, game(KindLogic, 6),
		[]skills.Skill{skills.Reasoning, skills.Metacognition}, nil, g78},
	{"word-builder", "Word Builder", 5, game(KindVocabulary, 8),
		[]skills.Skill{skills.Language}, []skills.Skill{skills.Memory}, universal},
	{"estimate-it", "Estimate It", 5, game(KindEstimation, 6),
		[]skills.Skill{skills.Reasoning, skills.Planning}, nil, g78},
	{"focus-ladder", "Focus Ladder", 4, game(KindPattern, 5),
		[]skills.Skill{skills.Attention}, nil, g67},
	{"story-remix", "Story Remix", 6,
		reflection("Retell a story you know with a new ending. What changed and why?"),
		[]skills.Skill{skills.Creativity, skills.Language}, nil, universal},
	{"feelings-check", "Feelings Check-in", 4,
		reflection("Think of a moment this week when you felt proud. What did you do?"),
		[]skills.Skill{skills.SocialEmotional}, []skills.Skill{skills.Metacognition}, g67},
	{"learning-lens", "Learning Lens", 5,
		reflection("Which strategy helped you learn something hard this week? Would you use it again?"),
		[]skills.Skill{skills.Metacognition}, []skills.Skill{skills.Planning}, g78},
	{"week-planner", "Plan My Week", 6,
		reflection("List three things you want to finish this week and the first step for each."),
		[]skills.Skill{skills.Planning}, []skills.Skill{skills.Metacognition}, universal},
	{"fair-share", "Fair Share", 5,
		scenario("Your group won a prize of 10 stickers but one member did most of the work.",
			"Split evenly", "Give more to the hardest worker", "Let the group vote"),
		[]skills.Skill{skills.Values, skills.SocialEmotional}, nil, universal},
	{"team-conflict", "Team Tangle", 6,
		scenario("Two teammates disagree on the project topic and the deadline is tomorrow.",
			"Pick one topic yourself", "Ask each to explain, then decide together", "Combine both ideas"),
		[]skills.Skill{skills.SocialEmotional}, []skills.Skill{skills.Planning}, g78},
	{"invent-it", "Invent It", 7,
		scenario("Design a gadget that would help students carry heavy bags.",
			"Draw it first", "List the problems first", "Build a quick model"),
		[]skills.Skill{skills.Creativity}, []skills.Skill{skills.Reasoning}, universal},
	{"playground-rules", "Playground Rules", 4,
		scenario("Younger kids keep taking the swings out of turn.",
			"Tell a teacher", "Make a turn chart with them", "Let them sort it out"),
		[]skills.Skill{skills.Values}, []skills.Skill{skills.SocialEmotional}, g6},
	{"debate-prep", "Debate Prep", 8,
		scenario("Your class will debate whether homework should be optional.",
			"Argue for", "Argue against", "Research both sides first"),
		[]skills.Skill{skills.Reasoning, skills.Language}, []skills.Skill{skills.Values}, g8},
}

// Candidates returns every template as a candidate quest, ordered by a
// permutation derived from seed. The same seed always yields the same
// order and the same quest ids.
func Candidates(seed string) []quest.Quest {
	base := baseSeed(candidatesKind, seed)
	rng := newRand(base, 0)
	order := rng.Perm(len(templates))

	out := make([]quest.Quest, 0, len(templates))
	for _, idx := range order {
		t := templates[idx]
		contentSeed := seed + ":" + t.key
		out = append(out, quest.Quest{
			ID:                fmt.Sprintf("%s-%08x", t.key, base),
			Title:             t.title,
			EstimatedMinutes:  t.minutes,
			Content:           t.content(contentSeed),
			PrimarySkills:     t.primary,
			SecondarySkills:   t.secondary,
			Grades:            t.grades,
			DifficultyByGrade: difficultyFor(t.grades),
		})
	}
	return out
}

// difficultyFor rates a template easier for the higher grades it serves.
func difficultyFor(grades skills.GradeSet) map[skills.Grade]quest.Difficulty {
	out := make(map[skills.Grade]quest.Difficulty, len(grades))
	for _, g := range grades {
		switch g {
		case skills.Grade6:
			out[g] = quest.Hard
		case skills.Grade7:
			out[g] = quest.Medium
		default:
			out[g] = quest.Easy
		}
	}
	if len(grades) == 1 {
		out[grades[0]] = quest.Medium
	}
	return out
}

// ItemsFor regenerates the items of a mini-game quest. Other quest types
// have no generated items.
func ItemsFor(q quest.Quest) []Item {
	mg, ok := q.Content.(quest.MiniGame)
	if !ok {
		return nil
	}
	return Generate(Kind(mg.Game), mg.Seed, mg.QuestionCount)
}
