// Package evidence decides which talent signals have enough independent
// observations behind them to be shown to parents.
package evidence

import "sort"

// Confidence is the tier of an unlocked signal.
type Confidence string

const (
	Emerging Confidence = "EMERGING"
	Moderate Confidence = "MODERATE"
	Strong   Confidence = "STRONG"
)

func (c Confidence) rank() int {
	switch c {
	case Strong:
		return 2
	case Moderate:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether c is at tier min or above.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.rank() >= min.rank()
}

// Signal is a candidate parent-facing strength with its thresholds and
// the evidence observed so far.
type Signal struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	MinObservations    int     `json:"minObservations"`
	MinContexts        int     `json:"minContexts"`
	StabilityThreshold float64 `json:"stabilityThreshold"`

	Observed  int     `json:"observed"`
	Contexts  int     `json:"contexts"`
	Stability float64 `json:"stability"`

	SupportActions []string `json:"supportActions,omitempty"`
}

// ThresholdsMet reports whether observations, contexts and stability all
// reach the signal's thresholds.
func (s Signal) ThresholdsMet() bool {
	return s.Observed >= s.MinObservations &&
		s.Contexts >= s.MinContexts &&
		s.Stability >= s.StabilityThreshold
}

const (
	// GlobalFloor is the lowest global minimum the gate honors. A lower
	// configured value is raised to it.
	GlobalFloor = 10

	// SurfaceLimit is the most signals the gate ever unlocks at once.
	SurfaceLimit = 5
)

// Config holds the gate thresholds.
type Config struct {
	// GlobalMinimum is the completed-activity count below which nothing
	// unlocks. Values below GlobalFloor act as GlobalFloor.
	GlobalMinimum int

	// StrongAt is the completed-activity count from which a signal whose
	// thresholds are met is rated Strong.
	StrongAt int

	// MaxSurfaced caps the number of unlocked signals. It is clamped to
	// 0..SurfaceLimit.
	MaxSurfaced int

	// DiversityTypes and DiversityBranches are the alternative minimums of
	// the diversity gate.
	DiversityTypes    int
	DiversityBranches int

	// GentleMinSignals and NarrativeMinSignals are the counts of Moderate
	// or better signals the two disclosures require.
	GentleMinSignals    int
	NarrativeMinSignals int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		GlobalMinimum:       10,
		StrongAt:            20,
		MaxSurfaced:         5,
		DiversityTypes:      3,
		DiversityBranches:   4,
		GentleMinSignals:    1,
		NarrativeMinSignals: 3,
	}
}

// GlobalMet reports whether enough activities have been completed for any
// signal to unlock.
func GlobalMet(totalCompleted int, cfg Config) bool {
	return totalCompleted >= max(cfg.GlobalMinimum, GlobalFloor)
}

// DiversityMet reports whether evidence spans enough activity types or
// skill branches.
func DiversityMet(activityTypes, skillBranches int, cfg Config) bool {
	return activityTypes >= cfg.DiversityTypes || skillBranches >= cfg.DiversityBranches
}

// Rate returns the confidence tier of s given the total completed
// activities. It is defined for every signal: Emerging when thresholds
// are not met, otherwise Moderate below cfg.StrongAt and Strong from it.
func Rate(s Signal, totalCompleted int, cfg Config) Confidence {
	switch {
	case !s.ThresholdsMet():
		return Emerging
	case totalCompleted >= cfg.StrongAt:
		return Strong
	default:
		return Moderate
	}
}

// Rated is a signal with its confidence tier.
type Rated struct {
	Signal
	Confidence Confidence `json:"confidence"`
}

// Result is the outcome of Gate.
type Result struct {
	GlobalMet bool `json:"globalMet"`

	// Unlocked holds at most MaxSurfaced signals, strongest tier first.
	Unlocked []Rated `json:"unlocked"`

	// Locked holds signals that did not pass.
	Locked []Signal `json:"locked"`

	// Withheld holds signals that passed but fell beyond MaxSurfaced.
	Withheld []Rated `json:"withheld,omitempty"`
}

// Gate splits signals into unlocked and locked. Below the global minimum
// every signal is locked. Unlocked signals are ordered Strong, Moderate,
// Emerging and keep their input order within a tier.
func Gate(signals []Signal, totalCompleted int, cfg Config) Result {
	r := Result{GlobalMet: GlobalMet(totalCompleted, cfg)}
	if !r.GlobalMet {
		r.Locked = append(r.Locked, signals...)
		return r
	}

	var passed []Rated
	for _, s := range signals {
		if !s.ThresholdsMet() {
			r.Locked = append(r.Locked, s)
			continue
		}
		passed = append(passed, Rated{Signal: s, Confidence: Rate(s, totalCompleted, cfg)})
	}

	sort.SliceStable(passed, func(i, j int) bool {
		return passed[i].Confidence.rank() > passed[j].Confidence.rank()
	})
	if limit := min(max(cfg.MaxSurfaced, 0), SurfaceLimit); len(passed) > limit {
		r.Withheld = passed[limit:]
		passed = passed[:limit]
	}
	r.Unlocked = passed
	return r
}

// Disclosure lists which parent narratives may be rendered.
type Disclosure struct {
	GentleObservations bool `json:"gentleObservations"`
	ProgressNarrative  bool `json:"progressNarrative"`

	// Diverse reports the diversity gate.
	Diverse bool `json:"diverse"`
}

// Disclosures decides the narrative features from a gate result and the
// coverage of the student's history.
func Disclosures(r Result, cov Coverage, cfg Config) Disclosure {
	strong := 0
	for _, u := range r.Unlocked {
		if u.Confidence.AtLeast(Moderate) {
			strong++
		}
	}
	return Disclosure{
		GentleObservations: r.GlobalMet && strong >= cfg.GentleMinSignals,
		ProgressNarrative:  r.GlobalMet && strong >= cfg.NarrativeMinSignals,
		Diverse:            DiversityMet(cov.ActivityTypes, cov.SkillBranches, cfg),
	}
}
