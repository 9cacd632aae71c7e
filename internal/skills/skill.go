package skills

import (
	"fmt"
	"strings"
)

// Skill is a skill dimension tracked for every student. The set is closed;
// AllSkills lists it in canonical order.
type Skill string

const (
	Reasoning       Skill = "COGNITIVE_REASONING"
	Creativity      Skill = "CREATIVITY"
	Language        Skill = "LANGUAGE"
	Memory          Skill = "MEMORY"
	Attention       Skill = "ATTENTION"
	Planning        Skill = "PLANNING"
	SocialEmotional Skill = "SOCIAL_EMOTIONAL"
	Metacognition   Skill = "METACOGNITION"
	Values          Skill = "VALUES"
)

// AllSkills returns every skill in canonical order.
func AllSkills() []Skill {
	return []Skill{
		Reasoning,
		Creativity,
		Language,
		Memory,
		Attention,
		Planning,
		SocialEmotional,
		Metacognition,
		Values,
	}
}

// ParseSkill accepts the canonical name or its lower-case, dashed form.
func ParseSkill(s string) (Skill, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, sk := range AllSkills() {
		if string(sk) == norm {
			return sk, nil
		}
	}
	if norm == "REASONING" {
		return Reasoning, nil
	}
	return "", fmt.Errorf("unknown skill %q", s)
}

// Valid reports whether s is one of the known skills.
func (s Skill) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in canonical order, or -1.
func (s Skill) Index() int {
	for i, sk := range AllSkills() {
		if sk == s {
			return i
		}
	}
	return -1
}

// DisplayName returns a human-readable name for the skill.
func (s Skill) DisplayName() string {
	switch s {
	case Reasoning:
		return "Reasoning"
	case Creativity:
		return "Creativity"
	case Language:
		return "Language"
	case Memory:
		return "Memory"
	case Attention:
		return "Attention"
	case Planning:
		return "Planning"
	case SocialEmotional:
		return "Social-Emotional"
	case Metacognition:
		return "Metacognition"
	case Values:
		return "Values"
	default:
		return string(s)
	}
}

// Branch groups related skills. The evidence gate counts distinct branches
// to judge how broad a student's observed activity has been.
type Branch string

const (
	BranchThinking       Branch = "thinking"
	BranchExpression     Branch = "expression"
	BranchSelfManagement Branch = "self-management"
	BranchCharacter      Branch = "character"
)

// Branch returns the branch a skill belongs to.
func (s Skill) Branch() Branch {
	switch s {
	case Reasoning, Memory:
		return BranchThinking
	case Creativity, Language:
		return BranchExpression
	case Attention, Planning, Metacognition:
		return BranchSelfManagement
	case SocialEmotional, Values:
		return BranchCharacter
	default:
		return ""
	}
}

// Sort orders skills canonically in place.
func Sort(ss []Skill) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j].Index() < ss[j-1].Index(); j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}
