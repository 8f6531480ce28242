// Package cache provides caching implementations for store interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/feature/user/usecase"
)

// CachingUserStore decorates a Store with Redis caching of FindByIdentity.
// Every mutating call goes to the inner store first and then drops the cached user.
// A per-user generation counter keeps a slow cache fill from restoring a user read before the write.
type CachingUserStore struct {
	inner     usecase.Store
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.Store = (*CachingUserStore)(nil)

// generationTTL only has to outlive a single store read.
const generationTTL = 24 * time.Hour

var errStaleFill = errors.New("cache: user changed during read")

// NewCachingUserStore decorates a Store with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "users".
// A nil client disables caching.
func NewCachingUserStore(rdb *redis.Client, ttl time.Duration, inner usecase.Store, namespace string) *CachingUserStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// FindByIdentity retrieves a user, checking the cache first then falling back to the store.
// Absent users are not cached.
func (c *CachingUserStore) FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByIdentity(ctx, clerkID)
	}

	key := c.cacheKey(clerkID)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var u entity.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// The generation is read before the store so that a write landing during the read is detected.
	gen, genErr := c.rdb.Get(ctx, c.genKey(clerkID)).Result()
	if genErr != nil && !errors.Is(genErr, redis.Nil) {
		log.Debug().Err(genErr).Str("clerk_id", clerkID).Msg("cache generation read failed")
	}

	u, err := c.inner.FindByIdentity(ctx, clerkID)
	if err != nil || u == nil {
		return u, err
	}

	if genErr == nil || errors.Is(genErr, redis.Nil) {
		if b, err := json.Marshal(u); err == nil {
			c.fill(ctx, clerkID, gen, b)
		}
	}
	return u, nil
}

// fill stores b only while the generation still equals gen.
// WATCH aborts the SET if an invalidation bumps the generation concurrently.
func (c *CachingUserStore) fill(ctx context.Context, clerkID, gen string, b []byte) {
	key, genKey := c.cacheKey(clerkID), c.genKey(clerkID)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, c.ttlFor(c.now()))
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		log.Debug().Str("key", key).Msg("cache fill skipped, user changed during read")
	default:
		log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (c *CachingUserStore) Create(ctx context.Context, u *entity.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, u.ClerkID)
	return nil
}

func (c *CachingUserStore) Save(ctx context.Context, u *entity.User) error {
	if err := c.inner.Save(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, u.ClerkID)
	return nil
}

func (c *CachingUserStore) IncrementUsage(ctx context.Context, clerkID string, day time.Time, limit int, metric entity.Metric) (entity.UsageResult, error) {
	res, err := c.inner.IncrementUsage(ctx, clerkID, day, limit, metric)
	if err != nil {
		return res, err
	}
	if res.Applied {
		c.invalidate(ctx, clerkID)
	}
	return res, nil
}

func (c *CachingUserStore) DecrementUsage(ctx context.Context, clerkID string, day time.Time, metric entity.Metric) error {
	if err := c.inner.DecrementUsage(ctx, clerkID, day, metric); err != nil {
		return err
	}
	c.invalidate(ctx, clerkID)
	return nil
}

func (c *CachingUserStore) ApplySubscription(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error) {
	u, err := c.inner.ApplySubscription(ctx, clerkID, plan, details)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, clerkID)
	return u, nil
}

// ttlFor caps the TTL at the next local midnight so that a cached count never crosses a day boundary.
func (c *CachingUserStore) ttlFor(now time.Time) time.Duration {
	return min(c.ttl, timeUntilNextMidnight(now))
}

// invalidate bumps the generation and drops the cached user.
// Best effort: the TTL bounds staleness if Redis is down.
func (c *CachingUserStore) invalidate(ctx context.Context, clerkID string) {
	if c.rdb == nil {
		return
	}
	genKey := c.genKey(clerkID)
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, generationTTL)
		p.Del(ctx, c.cacheKey(clerkID))
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("clerk_id", clerkID).Msg("cache invalidation failed")
	}
}

// cacheKey generates a cache key for a user.
func (c *CachingUserStore) cacheKey(clerkID string) string {
	return c.namespace + ":" + safe(clerkID)
}

// genKey is the key of the per-user write generation.
func (c *CachingUserStore) genKey(clerkID string) string {
	return c.namespace + ":gen:" + safe(clerkID)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
