// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"evolve_backend/internal/config"
	useradapters "evolve_backend/internal/feature/user/adapters"
	"evolve_backend/internal/feature/user/usecase"
	"evolve_backend/internal/platform/cache"
	platformdb "evolve_backend/internal/platform/db"
	"evolve_backend/internal/platform/http/handler"
	platformmongo "evolve_backend/internal/platform/mongo"
	platformredis "evolve_backend/internal/platform/redis"
)

// UserStore is the configured Store together with the connections it owns.
type UserStore struct {
	Store usecase.Store
	// Checks are readiness probes for each backing service.
	Checks map[string]handler.Check

	closers []func() error
}

// Close releases every connection opened by NewUserStore. Errors are logged.
func (s *UserStore) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Error().Err(err).Msg("failed to close store connection")
		}
	}
}

// NewUserStore opens the store selected by STORE_DRIVER.
// If Redis is configured and reachable, reads are cached in Redis.
// Otherwise it runs without cache.
func NewUserStore(ctx context.Context, cfg *config.Config) (*UserStore, error) {
	s := &UserStore{Checks: map[string]handler.Check{}}

	switch cfg.Store.Driver {
	case config.DriverMongo:
		db, err := platformmongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { return db.Client().Disconnect(context.Background()) })

		repo := useradapters.NewUserMongo(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		s.Store = repo
		s.Checks["store"] = func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }
	default:
		db, err := platformdb.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.attachGorm(db); err != nil {
			return nil, err
		}
	}

	if rdb := newRedis(ctx, cfg.Redis); rdb != nil {
		s.closers = append(s.closers, rdb.Close)
		s.Checks["cache"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		s.Store = cache.NewCachingUserStore(rdb, cfg.Redis.CacheTTL, s.Store, "users")
	}
	return s, nil
}

func (s *UserStore) attachGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	s.closers = append(s.closers, sqlDB.Close)
	s.Store = useradapters.NewUserGorm(db)
	s.Checks["store"] = sqlDB.PingContext
	return nil
}

// newRedis returns nil when Redis is not configured or unreachable.
func newRedis(ctx context.Context, cfg config.Redis) *redisv9.Client {
	if !cfg.Enabled() {
		log.Info().Msg("REDIS_HOST is not set. Running without cache.")
		return nil
	}
	rdb, err := platformredis.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable. Running without cache.")
		return nil
	}
	return rdb
}
