package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/abhisek/skillquest/internal/weekly"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrPlanExists is returned by CreatePlan when a record with the same
	// key already exists.
	ErrPlanExists = errors.New("store: plan already exists")
)

// Mode distinguishes daily quest sets from weekly plans.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
)

// PlanKey identifies a stored plan. At most one record exists per key.
type PlanKey struct {
	Tenant  string `json:"tenant"`
	Student string `json:"student"`
	Date    string `json:"date"` // YYYY-MM-DD; week start for weekly plans
	Mode    Mode   `json:"mode"`
}

// PlanRecord is a persisted daily quest set or weekly plan.
type PlanRecord struct {
	ID        string        `json:"id"`
	Key       PlanKey       `json:"key"`
	Grade     skills.Grade  `json:"grade"`
	Quests    []quest.Quest `json:"quests,omitempty"`
	Weekly    *weekly.Plan  `json:"weekly,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// PlanRepo stores plan records.
type PlanRepo interface {
	// GetPlan returns the record for key or ErrNotFound.
	GetPlan(ctx context.Context, key PlanKey) (PlanRecord, error)

	// CreatePlan inserts rec. It returns ErrPlanExists when a record with
	// the same key is already stored; the stored record is left untouched.
	CreatePlan(ctx context.Context, rec PlanRecord) error
}

// ApplyFunc folds a new outcome into a student's current scores and
// returns the scores it changed.
type ApplyFunc func(current map[skills.Skill]progress.SkillScore) []progress.SkillScore

// ScoreRepo stores per-skill scores.
type ScoreRepo interface {
	LoadScores(ctx context.Context, tenant, student string) (map[skills.Skill]progress.SkillScore, error)

	// SaveScores upserts each score by (tenant, student, skill).
	SaveScores(ctx context.Context, tenant, student string, scores []progress.SkillScore) error

	// RecordOutcome appends o to the outcome log and applies it to the
	// stored scores atomically. apply sees the scores as of the write; no
	// concurrent RecordOutcome for the same store interleaves with it. It
	// returns the changed scores and the full post-update map.
	RecordOutcome(ctx context.Context, tenant, student string, o quest.Outcome, apply ApplyFunc) ([]progress.SkillScore, map[skills.Skill]progress.SkillScore, error)
}

// OutcomeRepo is an append-only log of completed quests.
type OutcomeRepo interface {
	// AppendOutcome records o and returns its sequence number.
	AppendOutcome(ctx context.Context, tenant, student string, o quest.Outcome) (int64, error)

	// ListOutcomes returns outcomes completed at or after since, oldest
	// first. A zero since returns the whole history.
	ListOutcomes(ctx context.Context, tenant, student string, since time.Time) ([]quest.Outcome, error)
}

// FocusRepo stores teacher class-focus profiles.
type FocusRepo interface {
	// SaveProfile validates p and upserts it by ID, assigning an ID when
	// p has none. It returns the stored profile.
	SaveProfile(ctx context.Context, p classfocus.Profile) (classfocus.Profile, error)

	ListProfiles(ctx context.Context, tenant, teacher string) ([]classfocus.Profile, error)
}

// UnlockRecord is a persisted career unlock.
type UnlockRecord struct {
	ID         string             `json:"id"`
	Tenant     string             `json:"tenant"`
	Student    string             `json:"student"`
	Career     string             `json:"career"`
	Title      string             `json:"title"`
	Reason     string             `json:"reason"`
	Evidence   []string           `json:"evidence"`
	Confidence careers.Confidence `json:"confidence"`
	UnlockedAt time.Time          `json:"unlockedAt"`
}

// CareerRepo stores career unlocks, at most one per (tenant, student, career).
type CareerRepo interface {
	UnlockedCareers(ctx context.Context, tenant, student string) ([]string, error)

	// RecordUnlocks stores unlocks, skipping careers already unlocked, and
	// returns the ones this call inserted.
	RecordUnlocks(ctx context.Context, tenant, student string, unlocks []careers.Unlock, at time.Time) ([]careers.Unlock, error)

	ListUnlocks(ctx context.Context, tenant, student string) ([]UnlockRecord, error)
}

// ReadinessRepo stores goal readiness snapshots.
type ReadinessRepo interface {
	SaveReadiness(ctx context.Context, tenant, student string, r progress.Readiness) error

	// LatestReadiness returns the newest snapshot for goal or ErrNotFound.
	LatestReadiness(ctx context.Context, tenant, student, goal string) (progress.Readiness, error)
}
