package quest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/abhisek/skillquest/internal/skills"
)

func TestTypeFromContent(t *testing.T) {
	tests := []struct {
		content Content
		want    Type
	}{
		{MiniGame{Game: "pattern"}, TypeMiniGame},
		{Reflection{Prompt: "p"}, TypeReflection},
		{ChoiceScenario{Scenario: "s"}, TypeChoiceScenario},
	}
	for _, tt := range tests {
		q := Quest{Content: tt.content}
		if q.Type() != tt.want {
			t.Errorf("Type() = %s, want %s", q.Type(), tt.want)
		}
	}
	if (Quest{}).Type() != "" {
		t.Error("quest without content should have empty type")
	}
}

func TestJSONKeepsVariant(t *testing.T) {
	q := Quest{
		ID:               "q-1",
		Title:            "Lunch line dilemma",
		EstimatedMinutes: 6,
		Content: ChoiceScenario{
			Scenario: "A friend cuts in line.",
			Choices:  []string{"Say something", "Ignore it"},
		},
		PrimarySkills:     []skills.Skill{skills.Values},
		Grades:            skills.Universal(),
		DifficultyByGrade: map[skills.Grade]Difficulty{skills.Grade6: Easy},
	}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"choice_scenario"`) {
		t.Errorf("encoded quest lacks discriminator: %s", data)
	}

	var got Quest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	cs, ok := got.Content.(ChoiceScenario)
	if !ok {
		t.Fatalf("content = %T, want ChoiceScenario", got.Content)
	}
	if len(cs.Choices) != 2 || got.DifficultyByGrade[skills.Grade6] != Easy {
		t.Errorf("decoded quest = %+v", got)
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	var q Quest
	err := json.Unmarshal([]byte(`{"id":"x","type":"karaoke","content":{}}`), &q)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestMarshalWithoutContent(t *testing.T) {
	if _, err := json.Marshal(Quest{ID: "empty"}); err == nil {
		t.Fatal("expected error for quest without content")
	}
}

func TestSkills(t *testing.T) {
	q := Quest{
		PrimarySkills:   []skills.Skill{skills.Reasoning, skills.Memory},
		SecondarySkills: []skills.Skill{skills.Memory, skills.Values},
	}
	got := q.Skills()
	want := []skills.Skill{skills.Reasoning, skills.Memory, skills.Values}
	if len(got) != len(want) {
		t.Fatalf("Skills() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Skills()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
