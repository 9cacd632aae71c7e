package narrative

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/skillquest/internal/evidence"
)

// Template renders narratives from Facts without a model. Output depends
// only on the facts, so it doubles as the offline backend and the fallback.
type Template struct{}

func (Template) Name() string { return "template" }

func (Template) Complete(_ context.Context, p Prompt) (*Reply, error) {
	f := p.Facts
	b := body{Observations: []string{}, SupportIdeas: []string{}}

	for _, s := range f.Signals {
		b.Observations = append(b.Observations, observation(s))
	}

	if f.Disclosure.ProgressNarrative {
		b.Progress = fmt.Sprintf("Across %d completed activities, %d strengths are showing up consistently.",
			f.Completed, len(f.Signals))
		if f.Goal != "" {
			b.Progress += fmt.Sprintf(" Progress toward %s stands at %.0f out of 100.", f.Goal, f.Readiness)
		}
	}

	if f.Disclosure.Diverse {
		seen := make(map[string]bool)
		for _, s := range f.Signals {
			for _, a := range s.SupportActions {
				if seen[a] || len(b.SupportIdeas) == 3 {
					continue
				}
				seen[a] = true
				b.SupportIdeas = append(b.SupportIdeas, a)
			}
		}
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode template narrative: %w", err)
	}
	if err := validateReply(p.Schema, raw); err != nil {
		return nil, err
	}
	return &Reply{Content: raw, Model: "template"}, nil
}

func observation(s evidence.Rated) string {
	switch s.Confidence {
	case evidence.Strong:
		return fmt.Sprintf("%s shows up again and again, across %d kinds of activity.", s.Name, s.Contexts)
	case evidence.Moderate:
		return fmt.Sprintf("We are starting to see %s in %d recent activities.", lowerFirst(s.Name), s.Observed)
	default:
		return fmt.Sprintf("There are early hints of %s.", lowerFirst(s.Name))
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
