package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillquest/internal/evidence"
	"github.com/abhisek/skillquest/internal/skills"
)

// recorder returns a fixed body and remembers the prompt.
type recorder struct {
	content string
	err     error
	calls   int
	last    Prompt
}

func (r *recorder) Complete(_ context.Context, p Prompt) (*Reply, error) {
	r.calls++
	r.last = p
	if r.err != nil {
		return nil, r.err
	}
	return &Reply{Content: json.RawMessage(r.content), Model: "rec"}, nil
}

func (r *recorder) Name() string { return "recorder" }

func rated(name string, c evidence.Confidence, actions ...string) evidence.Rated {
	return evidence.Rated{
		Signal:     evidence.Signal{ID: strings.ToLower(name), Name: name, Observed: 6, Contexts: 2, SupportActions: actions},
		Confidence: c,
	}
}

const fullBody = `{"observations":["a","b","c","d","e","f"],"progress":" Going well. ","supportIdeas":["Read together"]}`

func TestComposeWithheldSkipsBackend(t *testing.T) {
	rec := &recorder{content: fullBody}
	c := NewComposer(rec, nil)
	n, err := c.Compose(context.Background(), Facts{Signals: []evidence.Rated{rated("Curiosity", evidence.Strong)}})
	require.NoError(t, err)
	assert.Equal(t, ModeWithheld, n.Mode)
	assert.Empty(t, n.Observations)
	assert.Zero(t, rec.calls)
}

func TestComposeGentleClipsProgressAndIdeas(t *testing.T) {
	rec := &recorder{content: fullBody}
	c := NewComposer(rec, nil)
	n, err := c.Compose(context.Background(), Facts{
		Grade:      skills.Grade6,
		Disclosure: evidence.Disclosure{GentleObservations: true},
		Signals: []evidence.Rated{
			rated("Curiosity", evidence.Moderate),
			rated("Persistence", evidence.Emerging),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ModeGentle, n.Mode)
	assert.Len(t, n.Observations, maxObservations)
	assert.Empty(t, n.Progress)
	assert.Empty(t, n.SupportIdeas)
	assert.Equal(t, "recorder", n.Backend)

	// Emerging signals are not sent in gentle mode.
	require.Len(t, rec.last.Facts.Signals, 1)
	assert.Contains(t, rec.last.User, "Curiosity")
	assert.NotContains(t, rec.last.User, "Persistence")
	assert.Contains(t, rec.last.User, `Leave "progress" empty`)
}

func TestComposeProgressAndDiverse(t *testing.T) {
	rec := &recorder{content: fullBody}
	c := NewComposer(rec, nil)
	n, err := c.Compose(context.Background(), Facts{
		Goal:       "Scientist",
		Readiness:  62,
		Disclosure: evidence.Disclosure{GentleObservations: true, ProgressNarrative: true, Diverse: true},
		Signals:    []evidence.Rated{rated("Curiosity", evidence.Strong)},
	})
	require.NoError(t, err)
	assert.Equal(t, ModeProgress, n.Mode)
	assert.Equal(t, "Going well.", n.Progress)
	assert.Equal(t, []string{"Read together"}, n.SupportIdeas)
	assert.Contains(t, rec.last.User, `"Scientist"`)
}

func TestComposeFallsBackToTemplate(t *testing.T) {
	rec := &recorder{err: &ErrBackendUnavailable{}}
	c := NewComposer(rec, nil)
	n, err := c.Compose(context.Background(), Facts{
		Disclosure: evidence.Disclosure{GentleObservations: true},
		Signals:    []evidence.Rated{rated("Curiosity", evidence.Strong)},
	})
	require.NoError(t, err)
	assert.Equal(t, "template", n.Backend)
	require.Len(t, n.Observations, 1)
	assert.Contains(t, n.Observations[0], "Curiosity")
}

// blocker waits for its context to end.
type blocker struct{}

func (blocker) Complete(ctx context.Context, _ Prompt) (*Reply, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blocker) Name() string { return "blocker" }

func TestComposeTimeoutFallsBack(t *testing.T) {
	c := NewComposer(blocker{}, nil)
	c.Timeout = 20 * time.Millisecond
	n, err := c.Compose(context.Background(), Facts{
		Disclosure: evidence.Disclosure{GentleObservations: true},
		Signals:    []evidence.Rated{rated("Curiosity", evidence.Strong)},
	})
	require.NoError(t, err)
	assert.Equal(t, "template", n.Backend)
}

func TestComposeFailsWithoutFallback(t *testing.T) {
	rec := &recorder{content: `not json`}
	c := &Composer{Primary: rec}
	_, err := c.Compose(context.Background(), Facts{
		Disclosure: evidence.Disclosure{GentleObservations: true},
		Signals:    []evidence.Rated{rated("Curiosity", evidence.Strong)},
	})
	var inv *ErrInvalidNarrative
	require.True(t, errors.As(err, &inv), "err = %v", err)
}

func TestTemplate(t *testing.T) {
	f := Facts{
		Goal:       "Writer",
		Readiness:  71.6,
		Completed:  24,
		Disclosure: evidence.Disclosure{GentleObservations: true, ProgressNarrative: true, Diverse: true},
		Signals: []evidence.Rated{
			rated("Storytelling", evidence.Strong, "Keep a family journal", "Visit the library"),
			rated("Curiosity", evidence.Moderate, "Visit the library", "Ask open questions", "Build something"),
		},
	}
	reply, err := Template{}.Complete(context.Background(), Prompt{Schema: ReplySchema, Facts: f})
	require.NoError(t, err)

	var b body
	require.NoError(t, json.Unmarshal(reply.Content, &b))
	assert.Equal(t, []string{
		"Storytelling shows up again and again, across 2 kinds of activity.",
		"We are starting to see curiosity in 6 recent activities.",
	}, b.Observations)
	assert.Equal(t, "Across 24 completed activities, 2 strengths are showing up consistently. Progress toward Writer stands at 72 out of 100.", b.Progress)
	assert.Equal(t, []string{"Keep a family journal", "Visit the library", "Ask open questions"}, b.SupportIdeas)

	// Same facts, same bytes.
	again, err := Template{}.Complete(context.Background(), Prompt{Schema: ReplySchema, Facts: f})
	require.NoError(t, err)
	assert.JSONEq(t, string(reply.Content), string(again.Content))
}

func TestValidateReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", goodBody, true},
		{"missing field", `{"observations":[]}`, false},
		{"extra field", `{"observations":[],"progress":"","supportIdeas":[],"career":"doctor"}`, false},
		{"not json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateReply(ReplySchema, json.RawMessage(tt.raw))
			if (err == nil) != tt.ok {
				t.Errorf("validateReply(%s) = %v, want ok=%v", tt.raw, err, tt.ok)
			}
		})
	}
	if err := validateReply(nil, json.RawMessage(`{`)); err != nil {
		t.Errorf("nil schema should accept anything, got %v", err)
	}
}

func TestConfigValidateAndNew(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	b, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "template", b.Name())

	cfg.Backend = "anthropic"
	assert.ErrorContains(t, cfg.Validate(), "SKILLQUEST_NARRATIVE_ANTHROPIC_API_KEY")

	cfg.Anthropic.APIKey = "k"
	b, err = New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-haiku-4-5-20251001", b.Name())

	cfg.Backend = "telepathy"
	assert.Error(t, cfg.Validate())
}

func TestDiscover(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := Discover(DefaultConfig())
	assert.Equal(t, "openai", cfg.Backend)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)

	explicit := DefaultConfig()
	explicit.Backend = "gemini"
	assert.Equal(t, "gemini", Discover(explicit).Backend)
}
