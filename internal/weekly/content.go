package weekly

import (
	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// byGrade holds grade-specific variants. Grade 8 must always be present;
// it is the fallback for grades without their own variant.
type byGrade[T any] map[skills.Grade]T

func (v byGrade[T]) pick(g skills.Grade) T {
	if x, ok := v[g]; ok {
		return x
	}
	return v[skills.DefaultGrade]
}

var questionCount = byGrade[int]{skills.Grade6: 5, skills.Grade7: 6, skills.Grade8: 8}

var minutes = map[quest.Type]byGrade[int]{
	quest.TypeMiniGame:       {skills.Grade6: 4, skills.Grade7: 5, skills.Grade8: 6},
	quest.TypeReflection:     {skills.Grade6: 4, skills.Grade8: 5},
	quest.TypeChoiceScenario: {skills.Grade6: 5, skills.Grade7: 5, skills.Grade8: 6},
}

var gameForSkill = map[skills.Skill]contentgen.Kind{
	skills.Reasoning:  contentgen.KindLogic,
	skills.Memory:     contentgen.KindMemory,
	skills.Language:   contentgen.KindVocabulary,
	skills.Planning:   contentgen.KindEstimation,
	skills.Attention:  contentgen.KindPattern,
	skills.Creativity: contentgen.KindPattern,
}

func gameKind(s skills.Skill) contentgen.Kind {
	if k, ok := gameForSkill[s]; ok {
		return k
	}
	return contentgen.KindGeneric
}

var reflectionPrompts = map[skills.Branch]byGrade[string]{
	skills.BranchThinking: {
		skills.Grade6: "What puzzle or problem did you figure out today? Draw or write the steps you took.",
		skills.Grade8: "Describe a problem you solved this week. Which step was hardest, and how would you approach it next time?",
	},
	skills.BranchExpression: {
		skills.Grade6: "Tell a short story about your favourite place using three describing words.",
		skills.Grade7: "Explain an idea you had this week to someone who has never heard of it.",
		skills.Grade8: "Pick an idea you care about and write a short pitch that would convince a friend.",
	},
	skills.BranchSelfManagement: {
		skills.Grade6: "What helped you stay focused today? What distracted you?",
		skills.Grade8: "Look back at your plan for the week. What went as planned, and what will you change?",
	},
	skills.BranchCharacter: {
		skills.Grade6: "Think of a time you helped someone. How did it make you both feel?",
		skills.Grade7: "When did you stand up for what was fair this week?",
		skills.Grade8: "Describe a decision where doing the right thing was not the easy thing. What did you weigh?",
	},
}

type scenarioVariant struct {
	text    string
	choices []string
}

var scenarios = map[skills.Branch]byGrade[scenarioVariant]{
	skills.BranchThinking: {
		skills.Grade6: {"Your class garden has 12 plants and only 3 watering cans.",
			[]string{"Water four plants per can", "Take turns by row", "Water the driest first"}},
		skills.Grade8: {"Your team must pick one of three science fair topics with only two weeks left.",
			[]string{"Pick the topic with the most data", "Pick the topic everyone likes", "Test each idea for a day first"}},
	},
	skills.BranchExpression: {
		skills.Grade8: {"You have one minute to introduce your project to the whole school.",
			[]string{"Open with a question", "Tell a short story", "Show a surprising fact"}},
	},
	skills.BranchSelfManagement: {
		skills.Grade6: {"You have homework, football practice and a birthday party on the same day.",
			[]string{"Do homework first", "Ask for help planning", "Skip one activity"}},
		skills.Grade8: {"A big test is in three days and you have not started revising.",
			[]string{"Make a short daily plan", "Cram the night before", "Form a study group"}},
	},
	skills.BranchCharacter: {
		skills.Grade6: {"A classmate is sitting alone at lunch.",
			[]string{"Invite them to your table", "Ask a teacher", "Sit with them yourself"}},
		skills.Grade7: {"You see a friend copying homework from someone else.",
			[]string{"Talk to your friend privately", "Ignore it", "Offer to help them study"}},
		skills.Grade8: {"Your group is taking credit for an idea another team came up with.",
			[]string{"Speak up and credit the other team", "Stay quiet", "Suggest combining both teams' ideas"}},
	},
}

var titleSuffix = map[quest.Type]string{
	quest.TypeMiniGame:       "Challenge",
	quest.TypeReflection:     "Reflection",
	quest.TypeChoiceScenario: "Dilemma",
}

// buildQuest assembles one planned quest of type typ for skill at grade.
func buildQuest(id, seed string, typ quest.Type, skill skills.Skill, grade skills.Grade) quest.Quest {
	var content quest.Content
	switch typ {
	case quest.TypeMiniGame:
		content = quest.MiniGame{
			Game:          string(gameKind(skill)),
			Seed:          seed,
			QuestionCount: questionCount.pick(grade),
		}
	case quest.TypeReflection:
		content = quest.Reflection{Prompt: reflectionPrompts[skill.Branch()].pick(grade)}
	default:
		v := scenarios[skill.Branch()].pick(grade)
		content = quest.ChoiceScenario{Scenario: v.text, Choices: v.choices}
	}

	return quest.Quest{
		ID:                id,
		Title:             skill.DisplayName() + " " + titleSuffix[typ],
		EstimatedMinutes:  minutes[typ].pick(grade),
		Content:           content,
		PrimarySkills:     []skills.Skill{skill},
		Grades:            skills.GradeSet{grade},
		DifficultyByGrade: map[skills.Grade]quest.Difficulty{grade: quest.Medium},
	}
}
