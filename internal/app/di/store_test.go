package di

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve_backend/internal/config"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/platform/cache"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:  config.Store{Driver: config.DriverSQLite, AutoMigrate: true},
		SQLite: config.SQLite{Path: filepath.Join(t.TempDir(), "evolve.db")},
		Redis:  config.Redis{CacheTTL: time.Minute},
	}
}

func TestNewUserStore_SQLiteWithoutCache(t *testing.T) {
	ctx := context.Background()
	s, err := NewUserStore(ctx, sqliteConfig(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, cached := s.Store.(*cache.CachingUserStore)
	assert.False(t, cached)
	assert.Contains(t, s.Checks, "store")
	assert.NotContains(t, s.Checks, "cache")
	assert.NoError(t, s.Checks["store"](ctx))

	require.NoError(t, s.Store.Create(ctx, entity.NewUser("u1", "u1@example.com", "", "", "")))
	u, err := s.Store.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, entity.PlanFree, u.SubscriptionPlan)
}

func TestNewUserStore_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := sqliteConfig(t)
	cfg.Redis.Host, cfg.Redis.Port = host, port

	ctx := context.Background()
	s, err := NewUserStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, cached := s.Store.(*cache.CachingUserStore)
	assert.True(t, cached)
	assert.NoError(t, s.Checks["cache"](ctx))

	require.NoError(t, s.Store.Create(ctx, entity.NewUser("u1", "u1@example.com", "", "", "")))
	_, err = s.Store.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("users:u1"))
}

func TestNewUserStore_UnreachableRedisFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	mr.Close()

	cfg := sqliteConfig(t)
	cfg.Redis.Host, cfg.Redis.Port = host, port

	s, err := NewUserStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, cached := s.Store.(*cache.CachingUserStore)
	assert.False(t, cached)
}

func TestNewAssistantHandler_DisabledWithoutKey(t *testing.T) {
	h, err := NewAssistantHandler(context.Background(), config.Gemini{})
	require.NoError(t, err)
	assert.Nil(t, h)
}
