package quest

import (
	"time"

	"github.com/abhisek/skillquest/internal/skills"
)

// Outcome is the record of one completed quest.
type Outcome struct {
	QuestID string `json:"questId"`
	Type    Type   `json:"type"`

	// Skills are the skill tags credited by the quest.
	Skills []skills.Skill `json:"skills"`

	// Accuracy is the percentage of correct answers, 0..100.
	Accuracy int `json:"accuracy"`

	// NormalizedScore is the blended 0..100 score.
	NormalizedScore int `json:"normalizedScore"`

	CompletedAt time.Time `json:"completedAt"`
}

// AccuracyFraction returns Accuracy as a value in [0,1].
func (o Outcome) AccuracyFraction() float64 {
	switch {
	case o.Accuracy <= 0:
		return 0
	case o.Accuracy >= 100:
		return 1
	}
	return float64(o.Accuracy) / 100
}

// Tags reports whether the outcome credits s.
func (o Outcome) Tags(s skills.Skill) bool {
	for _, x := range o.Skills {
		if x == s {
			return true
		}
	}
	return false
}
