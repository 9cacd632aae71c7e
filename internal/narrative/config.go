package narrative

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/skillquest/internal/logger"
)

// Config selects and configures the narrative backend. It is populated from
// SKILLQUEST_NARRATIVE_* variables by the config package.
type Config struct {
	// Backend is one of "template", "anthropic", "openai", "gemini",
	// "openrouter".
	Backend string `env:"BACKEND" envDefault:"template"`

	Anthropic  AnthropicConfig  `envPrefix:"ANTHROPIC_"`
	OpenAI     OpenAIConfig     `envPrefix:"OPENAI_"`
	Gemini     GeminiConfig     `envPrefix:"GEMINI_"`
	OpenRouter OpenRouterConfig `envPrefix:"OPENROUTER_"`
	Retry      RetryConfig      `envPrefix:"RETRY_"`

	// Timeout bounds one Compose call including retries.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type AnthropicConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"claude-haiku"`
	BaseURL string `env:"BASE_URL"`
}

type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"BASE_URL"`
}

type GeminiConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"gemini-flash"`
	BaseURL string `env:"BASE_URL"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"google/gemini-2.0-flash-001"`
	BaseURL string `env:"BASE_URL"`
}

// RetryConfig bounds retries of transient backend failures.
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"INITIAL_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"MULTIPLIER" envDefault:"2"`
}

// DefaultConfig matches the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Backend:    "template",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// Discover fills in a vendor backend from the vendors' standard API key
// variables when cfg still uses the template backend. The first key found
// wins, in the order Anthropic, OpenAI, Gemini, OpenRouter.
func Discover(cfg Config) Config {
	if cfg.Backend != "template" {
		return cfg
	}
	switch {
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Backend = "anthropic"
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Backend = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Backend = "gemini"
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Backend = "openrouter"
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	return cfg
}

// Validate checks that the selected backend has its API key.
func (c Config) Validate() error {
	missing := func(name string) error {
		return fmt.Errorf("SKILLQUEST_NARRATIVE_%s_API_KEY is required for the %s backend",
			strings.ToUpper(name), name)
	}
	switch c.Backend {
	case "template":
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return missing("anthropic")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return missing("openai")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return missing("gemini")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return missing("openrouter")
		}
	default:
		return fmt.Errorf("unknown narrative backend: %q", c.Backend)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("narrative retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// New builds the configured backend wrapped as caller, retry, logging,
// vendor. The template backend is returned bare.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Backend
		err  error
	)
	switch cfg.Backend {
	case "template":
		return Template{}, nil
	case "anthropic":
		base, err = NewAnthropic(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAI(cfg.OpenAI)
	case "gemini":
		base, err = NewGemini(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouter(cfg.OpenRouter)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s backend: %w", cfg.Backend, err)
	}

	return WithRetry(WithLogging(base, log), cfg.Retry), nil
}
