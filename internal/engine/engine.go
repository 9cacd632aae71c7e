// Package engine wires content generation, selection, planning, scoring
// and the evidence gate to their storage collaborators.
package engine

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/evidence"
	"github.com/abhisek/skillquest/internal/expectation"
	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/logger"
	"github.com/abhisek/skillquest/internal/narrative"
	"github.com/abhisek/skillquest/internal/selection"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/weekly"
)

// PlanRepository stores daily and weekly plans under their natural key.
type PlanRepository = store.PlanRepo

// Config holds feature toggles and tunables. It is passed explicitly; the
// engine never reads the environment.
type Config struct {
	// WeakSignal tunes the recency-weighted weakness term of selection.
	// WeakSignal.Enabled toggles it.
	WeakSignal selection.WeakSignalConfig

	// ClassFocus applies the teacher's active focus profile to daily
	// selection.
	ClassFocus bool

	// CareerUnlocks evaluates careers after each recorded activity.
	CareerUnlocks bool

	// DeterministicShuffle seeds the weekly type order by student, week
	// and day.
	DeterministicShuffle bool

	// BandTolerance is how many bands a skill may sit from the grade
	// expectation and still count as within it.
	BandTolerance int

	Evidence  evidence.Config
	Penalties contentgen.Penalties

	MinutesPerQuest int

	// DailyCount is how many quests a daily set holds.
	DailyCount int

	Careers []careers.Career
	Signals []evidence.Definition
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		WeakSignal:           selection.DefaultWeakSignalConfig(),
		ClassFocus:           true,
		CareerUnlocks:        true,
		DeterministicShuffle: true,
		BandTolerance:        1,
		Evidence:             evidence.DefaultConfig(),
		Penalties:            contentgen.DefaultPenalties(),
		MinutesPerQuest:      weekly.DefaultMinutesPerQuest,
		DailyCount:           3,
		Careers:              careers.Catalog(),
		Signals:              evidence.Catalog(),
	}
}

// Identity names the student a call is about. Grade may be zero, in which
// case the default grade is used.
type Identity struct {
	Tenant  string       `json:"tenant"`
	Student string       `json:"student"`
	Grade   skills.Grade `json:"grade,omitempty"`
}

// Validate rejects missing ids and unsupported grades.
func (id Identity) Validate() error {
	var errs []error
	if id.Tenant == "" {
		errs = append(errs, errors.New("tenant is required"))
	}
	if id.Student == "" {
		errs = append(errs, errors.New("student is required"))
	}
	if id.Grade != 0 && !id.Grade.Valid() {
		errs = append(errs, fmt.Errorf("unsupported grade %d", id.Grade))
	}
	if len(errs) > 0 {
		return &ValidationError{Err: fmt.Errorf("invalid identity: %w", errors.Join(errs...))}
	}
	return nil
}

func (id Identity) grade() skills.Grade {
	if id.Grade.Valid() {
		return id.Grade
	}
	return skills.DefaultGrade
}

// Deps are the engine's collaborators. Plans, Expectations and Goals are
// required; the rest may be nil, in which case the features that need them
// report an error or are skipped as documented on each method.
type Deps struct {
	Plans     PlanRepository
	Scores    store.ScoreRepo
	Outcomes  store.OutcomeRepo
	Focus     store.FocusRepo
	Careers   store.CareerRepo
	Readiness store.ReadinessRepo

	Expectations *expectation.Table
	Goals        *goals.Table

	// Narrator renders parent narratives. Nil skips them.
	Narrator *narrative.Composer

	Log *logger.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Engine is safe for concurrent use.
type Engine struct {
	cfg  Config
	deps Deps
	log  *logger.Logger

	planner weekly.Planner
	flights singleflight.Group
}

// New validates deps and builds an Engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	switch {
	case deps.Plans == nil:
		return nil, errors.New("engine: plan repository is required")
	case deps.Expectations == nil:
		return nil, errors.New("engine: expectation table is required")
	case deps.Goals == nil:
		return nil, errors.New("engine: goal table is required")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if cfg.DailyCount <= 0 {
		cfg.DailyCount = DefaultConfig().DailyCount
	}
	if cfg.Careers == nil {
		cfg.Careers = careers.Catalog()
	}
	if cfg.Signals == nil {
		cfg.Signals = evidence.Catalog()
	}

	return &Engine{
		cfg:  cfg,
		deps: deps,
		log:  deps.Log,
		planner: weekly.Planner{
			Goals:           deps.Goals,
			Emphasis:        deps.Expectations,
			MinutesPerQuest: cfg.MinutesPerQuest,
			Deterministic:   cfg.DeterministicShuffle,
		},
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) now() time.Time { return e.deps.Clock().UTC() }

// ValidationError marks a request the engine rejected as malformed, as
// opposed to a storage or backend failure.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// errMissing reports a nil collaborator a call needs.
func errMissing(what string) error {
	return fmt.Errorf("engine: no %s repository configured", what)
}
