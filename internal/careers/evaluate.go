package careers

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// StrongAccuracy is the accuracy from which an unlock is rated Strong.
const StrongAccuracy = 90

// Confidence rates an unlock.
type Confidence string

const (
	Moderate Confidence = "MODERATE"
	Strong   Confidence = "STRONG"
)

// Signals maps each skill an activity exercised to a strength in [0,1].
type Signals map[skills.Skill]float64

// SignalsFor derives signals from a quest: primary skills at full
// strength, secondary skills at half.
func SignalsFor(q quest.Quest) Signals {
	out := make(Signals, len(q.PrimarySkills)+len(q.SecondarySkills))
	for _, s := range q.SecondarySkills {
		out[s] = 0.5
	}
	for _, s := range q.PrimarySkills {
		out[s] = 1
	}
	return out
}

// Performance is the scored result of one activity.
type Performance struct {
	QuestID         string `json:"questId"`
	Accuracy        int    `json:"accuracy"`
	NormalizedScore int    `json:"normalizedScore"`
}

// Unlock is a proposed career unlock.
type Unlock struct {
	Career     string     `json:"career"`
	Title      string     `json:"title"`
	Reason     string     `json:"reason"`
	Evidence   []string   `json:"evidence"`
	Confidence Confidence `json:"confidence"`
}

// Evaluate matches an activity's signals and performance against each
// career in catalog. A career unlocks when every required skill reaches
// its minimum strength and both performance thresholds are met. Careers in
// alreadyUnlocked are never proposed and each career appears at most once.
// Results follow catalog order.
func Evaluate(signals Signals, perf Performance, alreadyUnlocked []string, catalog []Career) []Unlock {
	skip := make(map[string]bool, len(alreadyUnlocked))
	for _, id := range alreadyUnlocked {
		skip[id] = true
	}

	var out []Unlock
	for _, c := range catalog {
		if skip[c.ID] || !matches(c, signals, perf) {
			continue
		}
		skip[c.ID] = true
		out = append(out, unlockFor(c, signals, perf))
	}
	return out
}

func matches(c Career, signals Signals, perf Performance) bool {
	if len(c.Required) == 0 {
		return false
	}
	if perf.Accuracy < c.MinAccuracy || perf.NormalizedScore < c.MinScore {
		return false
	}
	for _, s := range c.Required {
		if signals[s] < c.MinStrength {
			return false
		}
	}
	return true
}

func unlockFor(c Career, signals Signals, perf Performance) Unlock {
	names := make([]string, len(c.Required))
	for i, s := range c.Required {
		names[i] = s.DisplayName()
	}

	evidence := []string{
		fmt.Sprintf("accuracy %d%% (needs %d%%)", perf.Accuracy, c.MinAccuracy),
		fmt.Sprintf("score %d (needs %d)", perf.NormalizedScore, c.MinScore),
	}
	if perf.QuestID != "" {
		evidence = append([]string{"quest " + perf.QuestID}, evidence...)
	}
	for _, s := range c.Required {
		evidence = append(evidence, fmt.Sprintf("%s signal %.1f", s.DisplayName(), signals[s]))
	}

	conf := Moderate
	if perf.Accuracy >= StrongAccuracy {
		conf = Strong
	}
	return Unlock{
		Career:     c.ID,
		Title:      c.Title,
		Reason:     fmt.Sprintf("Strong result on an activity using %s", strings.Join(names, " and ")),
		Evidence:   evidence,
		Confidence: conf,
	}
}
