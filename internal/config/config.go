// Package config loads process configuration from SKILLQUEST_* environment
// variables. Command-line flags applied by cmd take precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/evidence"
	"github.com/abhisek/skillquest/internal/narrative"
	"github.com/abhisek/skillquest/internal/selection"
)

// Prefix is prepended to every variable name.
const Prefix = "SKILLQUEST_"

// Config is the process configuration.
type Config struct {
	// DBPath is the SQLite file. Empty uses the XDG data directory.
	DBPath string `env:"DB"`

	// PostgresURL, when set, stores plans and career unlocks in Postgres
	// instead of SQLite.
	PostgresURL string `env:"POSTGRES_URL"`

	// RedisURL, when set, puts a read-through cache in front of plans.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	// LogMode is "dev" or "prod".
	LogMode string `env:"LOG" envDefault:"dev"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// TablesDir overrides the embedded expectation and goal tables.
	TablesDir string `env:"TABLES"`

	Narrative narrative.Config `envPrefix:"NARRATIVE_"`
	Engine    Engine           `envPrefix:"ENGINE_"`
}

// Engine holds the engine tunables.
type Engine struct {
	WeakSignals          bool `env:"WEAK_SIGNALS" envDefault:"true"`
	ClassFocus           bool `env:"CLASS_FOCUS" envDefault:"true"`
	CareerUnlocks        bool `env:"CAREER_UNLOCKS" envDefault:"true"`
	DeterministicShuffle bool `env:"DETERMINISTIC_SHUFFLE" envDefault:"true"`

	WeakWindow       time.Duration `env:"WEAK_WINDOW" envDefault:"336h"`
	WeakRecent       time.Duration `env:"WEAK_RECENT" envDefault:"168h"`
	WeakRecentWeight float64       `env:"WEAK_RECENT_WEIGHT" envDefault:"1.5"`
	WeakOlderWeight  float64       `env:"WEAK_OLDER_WEIGHT" envDefault:"1.0"`
	WeakMultiplier   float64       `env:"WEAK_MULTIPLIER" envDefault:"0.3"`

	BandTolerance   int `env:"BAND_TOLERANCE" envDefault:"1"`
	MinutesPerQuest int `env:"MINUTES_PER_QUEST" envDefault:"5"`
	DailyCount      int `env:"DAILY_COUNT" envDefault:"3"`

	PenaltyPerSecond float64 `env:"PENALTY_PER_SECOND" envDefault:"2"`
	PenaltyPerHint   float64 `env:"PENALTY_PER_HINT" envDefault:"10"`

	EvidenceMinimum  int `env:"EVIDENCE_MINIMUM" envDefault:"10"`
	EvidenceStrongAt int `env:"EVIDENCE_STRONG_AT" envDefault:"20"`
	MaxSurfaced      int `env:"MAX_SURFACED" envDefault:"5"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses vars instead of the process environment. Keys carry the
// SKILLQUEST_ prefix.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if opts.Environment == nil {
		cfg.Narrative = narrative.Discover(cfg.Narrative)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting in one error.
func (c Config) Validate() error {
	var errs []error
	switch c.LogMode {
	case "dev", "development", "prod", "production":
	default:
		errs = append(errs, fmt.Errorf("%sLOG must be dev or prod, got %q", Prefix, c.LogMode))
	}
	if err := c.Narrative.Validate(); err != nil {
		errs = append(errs, err)
	}
	e := c.Engine
	if e.BandTolerance < 0 {
		errs = append(errs, fmt.Errorf("%sENGINE_BAND_TOLERANCE must not be negative", Prefix))
	}
	if e.MinutesPerQuest <= 0 {
		errs = append(errs, fmt.Errorf("%sENGINE_MINUTES_PER_QUEST must be positive", Prefix))
	}
	if e.DailyCount <= 0 {
		errs = append(errs, fmt.Errorf("%sENGINE_DAILY_COUNT must be positive", Prefix))
	}
	if e.WeakRecent > e.WeakWindow {
		errs = append(errs, fmt.Errorf("%sENGINE_WEAK_RECENT exceeds the weak-signal window", Prefix))
	}
	if e.EvidenceMinimum < evidence.GlobalFloor {
		errs = append(errs, fmt.Errorf("%sENGINE_EVIDENCE_MINIMUM must be at least %d", Prefix, evidence.GlobalFloor))
	}
	if e.MaxSurfaced < 0 || e.MaxSurfaced > evidence.SurfaceLimit {
		errs = append(errs, fmt.Errorf("%sENGINE_MAX_SURFACED must be between 0 and %d", Prefix, evidence.SurfaceLimit))
	}
	if e.EvidenceStrongAt < e.EvidenceMinimum {
		errs = append(errs, fmt.Errorf("%sENGINE_EVIDENCE_STRONG_AT is below the evidence minimum", Prefix))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// EngineConfig converts the tunables into an engine configuration.
func (c Config) EngineConfig() engine.Config {
	e := c.Engine
	cfg := engine.DefaultConfig()
	cfg.WeakSignal = selection.WeakSignalConfig{
		Enabled:      e.WeakSignals,
		Window:       e.WeakWindow,
		Recent:       e.WeakRecent,
		RecentWeight: e.WeakRecentWeight,
		OlderWeight:  e.WeakOlderWeight,
		Multiplier:   e.WeakMultiplier,
	}
	cfg.ClassFocus = e.ClassFocus
	cfg.CareerUnlocks = e.CareerUnlocks
	cfg.DeterministicShuffle = e.DeterministicShuffle
	cfg.BandTolerance = e.BandTolerance
	cfg.MinutesPerQuest = e.MinutesPerQuest
	cfg.DailyCount = e.DailyCount
	cfg.Penalties = contentgen.Penalties{PerSecond: e.PenaltyPerSecond, PerHint: e.PenaltyPerHint}

	ev := evidence.DefaultConfig()
	ev.GlobalMinimum = e.EvidenceMinimum
	ev.StrongAt = e.EvidenceStrongAt
	ev.MaxSurfaced = e.MaxSurfaced
	cfg.Evidence = ev
	return cfg
}
