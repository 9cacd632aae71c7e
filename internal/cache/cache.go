// Package cache serves plan records from Redis in front of a plan
// repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/skillquest/internal/logger"
	"github.com/abhisek/skillquest/internal/store"
)

// ErrCacheMiss is returned by Lookup when the key is not cached.
var ErrCacheMiss = errors.New("cache: miss")

// DefaultTTL is how long a plan stays cached.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "skillquest:plan:"

// Connect parses a redis:// URL, creates a client and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return client, nil
}

// PlanCache is a read-through store.PlanRepo. Reads try Redis first and
// fall back to the inner repository; records read or created through it
// are cached. Cache failures are logged and never fail a request.
type PlanCache struct {
	inner  store.PlanRepo
	client redis.UniversalClient
	ttl    time.Duration
	log    *logger.Logger
}

// NewPlanCache wraps inner. A zero ttl uses DefaultTTL; a nil log discards.
func NewPlanCache(inner store.PlanRepo, client redis.UniversalClient, ttl time.Duration, log *logger.Logger) *PlanCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PlanCache{inner: inner, client: client, ttl: ttl, log: log}
}

// Key returns the Redis key for a plan key.
func Key(k store.PlanKey) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", keyPrefix, k.Tenant, k.Student, k.Mode, k.Date)
}

// Lookup returns the cached record for key or ErrCacheMiss.
func (c *PlanCache) Lookup(ctx context.Context, key store.PlanKey) (store.PlanRecord, error) {
	raw, err := c.client.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.PlanRecord{}, ErrCacheMiss
	}
	if err != nil {
		return store.PlanRecord{}, fmt.Errorf("cache get: %w", err)
	}
	var rec store.PlanRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return store.PlanRecord{}, fmt.Errorf("cache decode: %w", err)
	}
	return rec, nil
}

// GetPlan implements store.PlanRepo.
func (c *PlanCache) GetPlan(ctx context.Context, key store.PlanKey) (store.PlanRecord, error) {
	rec, err := c.Lookup(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn("plan cache read failed", "key", Key(key), "error", err)
	}

	rec, err = c.inner.GetPlan(ctx, key)
	if err != nil {
		return store.PlanRecord{}, err
	}
	c.put(ctx, rec)
	return rec, nil
}

// CreatePlan implements store.PlanRepo. Conflicts from the inner
// repository pass through unchanged and nothing is cached for them.
func (c *PlanCache) CreatePlan(ctx context.Context, rec store.PlanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := c.inner.CreatePlan(ctx, rec); err != nil {
		return err
	}
	c.put(ctx, rec)
	return nil
}

// Invalidate drops the cached record for key.
func (c *PlanCache) Invalidate(ctx context.Context, key store.PlanKey) error {
	if err := c.client.Del(ctx, Key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *PlanCache) put(ctx context.Context, rec store.PlanRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		c.log.Warn("plan cache encode failed", "id", rec.ID, "error", err)
		return
	}
	// SetNX keeps the first cached copy if two writers race.
	if err := c.client.SetNX(ctx, Key(rec.Key), raw, c.ttl).Err(); err != nil {
		c.log.Warn("plan cache write failed", "key", Key(rec.Key), "error", err)
	}
}
