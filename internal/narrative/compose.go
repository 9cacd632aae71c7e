package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillquest/internal/evidence"
	"github.com/abhisek/skillquest/internal/logger"
	"github.com/abhisek/skillquest/internal/skills"
)

// Mode is how much a narrative is allowed to say.
type Mode string

const (
	// ModeWithheld means nothing is shown to parents yet.
	ModeWithheld Mode = "withheld"
	// ModeGentle allows a few observations and nothing else.
	ModeGentle Mode = "gentle"
	// ModeProgress adds a progress paragraph.
	ModeProgress Mode = "progress"
)

// maxObservations bounds the observation list in every mode.
const maxObservations = 5

// Facts is everything a narrative may draw on.
type Facts struct {
	Grade      skills.Grade
	Goal       string
	Readiness  float64
	Completed  int
	Disclosure evidence.Disclosure
	Signals    []evidence.Rated
}

// Narrative is a gated parent-facing note.
type Narrative struct {
	Mode         Mode     `json:"mode"`
	Observations []string `json:"observations,omitempty"`
	Progress     string   `json:"progress,omitempty"`
	SupportIdeas []string `json:"supportIdeas,omitempty"`
	Backend      string   `json:"backend,omitempty"`
}

// body is the JSON shape every backend returns.
type body struct {
	Observations []string `json:"observations"`
	Progress     string   `json:"progress"`
	SupportIdeas []string `json:"supportIdeas"`
}

// ReplySchema is the schema narrative replies are validated against. Every
// property is required so strict structured-output modes accept it.
var ReplySchema = &Schema{
	Name:        "parent_narrative",
	Description: "Gentle strength observations for a parent.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"observations": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"progress": map[string]any{"type": "string"},
			"supportIdeas": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"observations", "progress", "supportIdeas"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You write short notes to parents about a child's learning activities.
Describe only the observations you are given, in warm, plain language.
Never name a career, diagnosis, label, ranking, or comparison with other children.
Each observation is one sentence. Return JSON matching the schema.`

// Composer renders gated narratives. Primary is tried first; on failure the
// Fallback (if any) renders instead.
type Composer struct {
	Primary   Backend
	Fallback  Backend
	MaxTokens int
	// Timeout bounds each backend attempt. Zero means no bound beyond ctx.
	Timeout time.Duration
	Log     *logger.Logger
}

// NewComposer returns a Composer that falls back to the template backend.
func NewComposer(primary Backend, log *logger.Logger) *Composer {
	if log == nil {
		log = logger.Nop()
	}
	return &Composer{Primary: primary, Fallback: Template{}, MaxTokens: 600, Log: log}
}

// ModeFor returns the narrative mode a disclosure allows.
func ModeFor(d evidence.Disclosure) Mode {
	switch {
	case d.ProgressNarrative:
		return ModeProgress
	case d.GentleObservations:
		return ModeGentle
	default:
		return ModeWithheld
	}
}

// Compose renders a narrative for f. When the disclosure allows nothing no
// backend is called. Output is clipped to what the disclosure allows
// regardless of what the backend returned.
func (c *Composer) Compose(ctx context.Context, f Facts) (Narrative, error) {
	mode := ModeFor(f.Disclosure)
	if mode == ModeWithheld {
		return Narrative{Mode: ModeWithheld}, nil
	}
	f.Signals = visibleSignals(f.Signals, mode)

	p := Prompt{
		System:      systemPrompt,
		User:        renderUser(f, mode),
		Schema:      ReplySchema,
		MaxTokens:   c.MaxTokens,
		Temperature: 0.4,
		Facts:       f,
	}

	b, used, err := c.complete(ctx, p)
	if err != nil {
		return Narrative{}, err
	}

	n := Narrative{Mode: mode, Backend: used, Observations: b.Observations}
	if len(n.Observations) > maxObservations {
		n.Observations = n.Observations[:maxObservations]
	}
	if mode == ModeProgress {
		n.Progress = strings.TrimSpace(b.Progress)
	}
	if f.Disclosure.Diverse {
		n.SupportIdeas = b.SupportIdeas
	}
	return n, nil
}

func (c *Composer) attempt(ctx context.Context, b Backend, p Prompt) (*Reply, error) {
	if c.Timeout <= 0 {
		return b.Complete(ctx, p)
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	return b.Complete(ctx, p)
}

func (c *Composer) complete(ctx context.Context, p Prompt) (body, string, error) {
	var firstErr error
	for _, backend := range []Backend{c.Primary, c.Fallback} {
		if backend == nil {
			continue
		}
		reply, err := c.attempt(ctx, backend, p)
		if err == nil {
			var b body
			if err = json.Unmarshal(reply.Content, &b); err == nil {
				return b, backend.Name(), nil
			}
			err = &ErrInvalidNarrative{Content: reply.Content, Err: err}
		}
		if ctx.Err() != nil {
			return body{}, "", ctx.Err()
		}
		if firstErr == nil {
			firstErr = err
		}
		c.log().Warn("narrative backend failed", "backend", backend.Name(), "error", err)
	}
	if firstErr == nil {
		firstErr = &ErrBackendUnavailable{}
	}
	return body{}, "", fmt.Errorf("compose narrative: %w", firstErr)
}

func (c *Composer) log() *logger.Logger {
	if c.Log == nil {
		return logger.Nop()
	}
	return c.Log
}

// visibleSignals keeps the signals a mode may mention. Gentle notes only
// mention Moderate or Strong signals.
func visibleSignals(in []evidence.Rated, mode Mode) []evidence.Rated {
	var out []evidence.Rated
	for _, s := range in {
		if mode == ModeGentle && !s.Confidence.AtLeast(evidence.Moderate) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > maxObservations {
		out = out[:maxObservations]
	}
	return out
}

func renderUser(f Facts, mode Mode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade: %s\n", f.Grade)
	fmt.Fprintf(&sb, "Completed activities: %d\n", f.Completed)
	sb.WriteString("Observations:\n")
	for _, s := range f.Signals {
		fmt.Fprintf(&sb, "- %s (%s, seen %d times in %d kinds of activity)\n",
			s.Name, strings.ToLower(string(s.Confidence)), s.Observed, s.Contexts)
	}
	if mode == ModeProgress {
		sb.WriteString("Write a two-sentence progress paragraph in \"progress\".\n")
		if f.Goal != "" {
			fmt.Fprintf(&sb, "The family's chosen interest is %q; readiness is %.0f out of 100.\n", f.Goal, f.Readiness)
		}
	} else {
		sb.WriteString("Leave \"progress\" empty.\n")
	}
	if f.Disclosure.Diverse {
		sb.WriteString("Suggest up to three everyday support ideas in \"supportIdeas\".\n")
	} else {
		sb.WriteString("Leave \"supportIdeas\" empty.\n")
	}
	return sb.String()
}
