// Package classfocus applies teacher-defined priority boosts on top of the
// selector's base priority.
package classfocus

import "github.com/abhisek/skillquest/internal/skills"

// MaxBoost is the largest fraction a single skill may add to a priority.
const MaxBoost = 0.20

// Boosts maps a skill to its requested boost fraction.
type Boosts map[skills.Skill]float64

// Cap clamps a requested boost to [0, MaxBoost].
func Cap(fraction float64) float64 {
	switch {
	case fraction != fraction, fraction <= 0:
		return 0
	case fraction >= MaxBoost:
		return MaxBoost
	}
	return fraction
}

// Fraction returns the capped boost for skill s. A nil map or a missing
// skill yields 0.
func (b Boosts) Fraction(s skills.Skill) float64 {
	return Cap(b[s])
}

// Boost scales base by one plus the capped boost for skill.
func Boost(base float64, skill skills.Skill, boosts Boosts) float64 {
	return base * (1 + boosts.Fraction(skill))
}

// Detail explains a boosted priority.
type Detail struct {
	Base     float64      `json:"base"`
	Skill    skills.Skill `json:"skill,omitempty"`
	Fraction float64      `json:"fraction"`
	Final    float64      `json:"final"`
}

// Breakdown returns the base, capped fraction and final value of Boost.
func Breakdown(base float64, skill skills.Skill, boosts Boosts) Detail {
	f := boosts.Fraction(skill)
	return Detail{Base: base, Skill: skill, Fraction: f, Final: base * (1 + f)}
}

// ForCandidate boosts base by the strongest capped boost among primary.
// Boosts of several primary skills are not compounded. Ties keep the skill
// listed first.
func ForCandidate(base float64, primary []skills.Skill, boosts Boosts) Detail {
	d := Detail{Base: base, Final: base}
	for _, s := range primary {
		if f := boosts.Fraction(s); f > d.Fraction {
			d.Skill = s
			d.Fraction = f
		}
	}
	d.Final = base * (1 + d.Fraction)
	return d
}
