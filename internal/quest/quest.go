package quest

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/skillquest/internal/skills"
)

// Type is the kind of a quest.
type Type string

const (
	TypeMiniGame       Type = "mini_game"
	TypeReflection     Type = "reflection"
	TypeChoiceScenario Type = "choice_scenario"
)

// AllTypes returns the quest types in canonical order.
func AllTypes() []Type {
	return []Type{TypeMiniGame, TypeReflection, TypeChoiceScenario}
}

// Valid reports whether t is a known quest type.
func (t Type) Valid() bool {
	switch t {
	case TypeMiniGame, TypeReflection, TypeChoiceScenario:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the type.
func (t Type) DisplayName() string {
	switch t {
	case TypeMiniGame:
		return "Mini-game"
	case TypeReflection:
		return "Reflection"
	case TypeChoiceScenario:
		return "Choice scenario"
	default:
		return string(t)
	}
}

// Difficulty is a coarse difficulty label.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Content is the kind-specific body of a quest. The concrete types are
// MiniGame, Reflection and ChoiceScenario.
type Content interface {
	Type() Type
	isContent()
}

// MiniGame is a short generated question set.
type MiniGame struct {
	Game          string `json:"game"`
	Seed          string `json:"seed"`
	QuestionCount int    `json:"questionCount"`
}

// Reflection asks the student to write or talk about an experience.
type Reflection struct {
	Prompt string `json:"prompt"`
}

// ChoiceScenario presents a situation and a set of choices.
type ChoiceScenario struct {
	Scenario string   `json:"scenario"`
	Choices  []string `json:"choices"`
}

func (MiniGame) Type() Type       { return TypeMiniGame }
func (Reflection) Type() Type     { return TypeReflection }
func (ChoiceScenario) Type() Type { return TypeChoiceScenario }

func (MiniGame) isContent()       {}
func (Reflection) isContent()     {}
func (ChoiceScenario) isContent() {}

// Quest is a candidate or assigned activity.
type Quest struct {
	ID                string
	Title             string
	EstimatedMinutes  int
	Content           Content
	PrimarySkills     []skills.Skill
	SecondarySkills   []skills.Skill
	Grades            skills.GradeSet
	DifficultyByGrade map[skills.Grade]Difficulty
}

// Type returns the quest's type, derived from its content.
func (q Quest) Type() Type {
	if q.Content == nil {
		return ""
	}
	return q.Content.Type()
}

// AppliesTo reports whether the quest is applicable at grade g.
func (q Quest) AppliesTo(g skills.Grade) bool {
	return q.Grades.Contains(g)
}

// Targets reports whether s is one of the quest's primary skills.
func (q Quest) Targets(s skills.Skill) bool {
	for _, p := range q.PrimarySkills {
		if p == s {
			return true
		}
	}
	return false
}

// Skills returns the primary then secondary skills without duplicates.
func (q Quest) Skills() []skills.Skill {
	out := make([]skills.Skill, 0, len(q.PrimarySkills)+len(q.SecondarySkills))
	seen := make(map[skills.Skill]bool, cap(out))
	for _, s := range append(append([]skills.Skill(nil), q.PrimarySkills...), q.SecondarySkills...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

type questJSON struct {
	ID                string                      `json:"id"`
	Type              Type                        `json:"type"`
	Title             string                      `json:"title"`
	EstimatedMinutes  int                         `json:"estimatedMinutes"`
	Content           json.RawMessage             `json:"content"`
	PrimarySkills     []skills.Skill              `json:"primarySkills"`
	SecondarySkills   []skills.Skill              `json:"secondarySkills,omitempty"`
	Grades            skills.GradeSet             `json:"grades"`
	DifficultyByGrade map[skills.Grade]Difficulty `json:"difficultyByGrade,omitempty"`
}

// MarshalJSON encodes the quest with a type discriminator.
func (q Quest) MarshalJSON() ([]byte, error) {
	if q.Content == nil {
		return nil, fmt.Errorf("quest %s has no content", q.ID)
	}
	body, err := json.Marshal(q.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal quest content: %w", err)
	}
	return json.Marshal(questJSON{
		ID:                q.ID,
		Type:              q.Content.Type(),
		Title:             q.Title,
		EstimatedMinutes:  q.EstimatedMinutes,
		Content:           body,
		PrimarySkills:     q.PrimarySkills,
		SecondarySkills:   q.SecondarySkills,
		Grades:            q.Grades,
		DifficultyByGrade: q.DifficultyByGrade,
	})
}

// UnmarshalJSON decodes a quest, choosing the content type from the
// discriminator.
func (q *Quest) UnmarshalJSON(data []byte) error {
	var raw questJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var content Content
	switch raw.Type {
	case TypeMiniGame:
		var c MiniGame
		if err := json.Unmarshal(raw.Content, &c); err != nil {
			return fmt.Errorf("decode mini-game content: %w", err)
		}
		content = c
	case TypeReflection:
		var c Reflection
		if err := json.Unmarshal(raw.Content, &c); err != nil {
			return fmt.Errorf("decode reflection content: %w", err)
		}
		content = c
	case TypeChoiceScenario:
		var c ChoiceScenario
		if err := json.Unmarshal(raw.Content, &c); err != nil {
			return fmt.Errorf("decode choice scenario content: %w", err)
		}
		content = c
	default:
		return fmt.Errorf("unknown quest type %q", raw.Type)
	}
	*q = Quest{
		ID:                raw.ID,
		Title:             raw.Title,
		EstimatedMinutes:  raw.EstimatedMinutes,
		Content:           content,
		PrimarySkills:     raw.PrimarySkills,
		SecondarySkills:   raw.SecondarySkills,
		Grades:            raw.Grades,
		DifficultyByGrade: raw.DifficultyByGrade,
	}
	return nil
}
