// Package narrative composes short parent-facing notes about a student's
// emerging strengths. It only speaks when the evidence gate allows it, and
// renders either through a language model backend or a deterministic
// template.
package narrative

import (
	"context"
	"encoding/json"
)

// Backend turns a prompt into a JSON narrative.
type Backend interface {
	// Complete sends p and returns the reply. When p.Schema is set the
	// reply content has been validated against it.
	Complete(ctx context.Context, p Prompt) (*Reply, error)

	// Name identifies the backend and model for logs.
	Name() string
}

// Prompt is a single-turn request.
type Prompt struct {
	System      string
	User        string
	Schema      *Schema
	MaxTokens   int
	Temperature float64

	// Facts is the structured input User was rendered from. The template
	// backend renders from it directly; model backends ignore it.
	Facts Facts
}

// Schema is the JSON Schema a reply must conform to.
type Schema struct {
	// Name is used as the schema name by backends that need one.
	Name        string
	Description string
	Definition  map[string]any
}

// Reply is a backend's output.
type Reply struct {
	Content json.RawMessage
	Model   string
	Usage   Usage
}

// Usage reports token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// resolveModel maps a friendly model name to a provider model ID; unknown
// names pass through as direct IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
