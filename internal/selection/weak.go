package selection

import (
	"time"

	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
)

// WeakSignalConfig tunes the recency-weighted weak-signal term.
type WeakSignalConfig struct {
	Enabled bool

	// Window bounds how far back outcomes are considered.
	Window time.Duration

	// Recent is the age up to which outcomes get RecentWeight. Older
	// outcomes inside Window get OlderWeight.
	Recent       time.Duration
	RecentWeight float64
	OlderWeight  float64

	// Multiplier scales the per-skill totals before they are added to a
	// candidate's priority.
	Multiplier float64
}

// DefaultWeakSignalConfig returns the standard weak-signal tuning.
func DefaultWeakSignalConfig() WeakSignalConfig {
	return WeakSignalConfig{
		Enabled:      true,
		Window:       14 * 24 * time.Hour,
		Recent:       7 * 24 * time.Hour,
		RecentWeight: 1.5,
		OlderWeight:  1.0,
		Multiplier:   0.3,
	}
}

// WeakSignals accumulates recency-weighted weakness per skill from
// outcomes completed within cfg.Window of now. Each outcome contributes
// (1 - accuracy) times its recency weight to every skill it is tagged
// with. Outcomes stamped after now count as recent.
func WeakSignals(outcomes []quest.Outcome, now time.Time, cfg WeakSignalConfig) map[skills.Skill]float64 {
	out := make(map[skills.Skill]float64)
	for _, o := range outcomes {
		age := now.Sub(o.CompletedAt)
		if age > cfg.Window {
			continue
		}
		weight := cfg.OlderWeight
		if age <= cfg.Recent {
			weight = cfg.RecentWeight
		}
		strength := 1 - o.AccuracyFraction()
		for _, s := range o.Skills {
			out[s] += strength * weight
		}
	}
	return out
}

// weakTerm is the weak-signal contribution for a set of primary skills.
func weakTerm(primary []skills.Skill, weak map[skills.Skill]float64, multiplier float64) float64 {
	var total float64
	for _, s := range primary {
		total += weak[s]
	}
	return total * multiplier
}
