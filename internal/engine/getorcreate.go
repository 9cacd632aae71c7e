package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/skillquest/internal/store"
)

// BuildFunc produces a new plan record when none exists for a key.
type BuildFunc func(ctx context.Context) (store.PlanRecord, error)

// GetOrCreate returns the plan stored under key, building and storing one
// if it is absent. When another writer creates the same key first, the
// stored record is re-read and returned instead of an error, so every
// caller for a key observes the same plan. Callers in this process that
// race on one key share a single attempt.
func (e *Engine) GetOrCreate(ctx context.Context, key store.PlanKey, build BuildFunc) (store.PlanRecord, error) {
	v, err, _ := e.flights.Do(flightKey(key), func() (any, error) {
		return e.getOrCreate(ctx, key, build)
	})
	if err != nil {
		return store.PlanRecord{}, err
	}
	return v.(store.PlanRecord), nil
}

func (e *Engine) getOrCreate(ctx context.Context, key store.PlanKey, build BuildFunc) (store.PlanRecord, error) {
	rec, err := e.deps.Plans.GetPlan(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.PlanRecord{}, fmt.Errorf("get plan: %w", err)
	}

	rec, err = build(ctx)
	if err != nil {
		return store.PlanRecord{}, fmt.Errorf("build plan: %w", err)
	}
	rec.Key = key
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = e.now()
	}
	// Postgres keeps microseconds; the creator must see what readers see.
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Microsecond)

	err = e.deps.Plans.CreatePlan(ctx, rec)
	switch {
	case err == nil:
		e.log.Debug("plan created", "id", rec.ID, "tenant", key.Tenant, "student", key.Student,
			"date", key.Date, "mode", key.Mode, "quests", len(rec.Quests))
		return rec, nil
	case errors.Is(err, store.ErrPlanExists):
		winner, rerr := e.deps.Plans.GetPlan(ctx, key)
		if rerr != nil {
			return store.PlanRecord{}, fmt.Errorf("re-read plan after conflict: %w", rerr)
		}
		e.log.Info("plan created concurrently, returning stored plan",
			"tenant", key.Tenant, "student", key.Student, "date", key.Date, "mode", key.Mode,
			"discarded", rec.ID, "kept", winner.ID)
		return winner, nil
	default:
		return store.PlanRecord{}, fmt.Errorf("create plan: %w", err)
	}
}

func flightKey(k store.PlanKey) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", k.Tenant, k.Student, k.Date, k.Mode)
}
