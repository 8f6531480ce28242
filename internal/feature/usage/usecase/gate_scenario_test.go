package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	usagedomain "evolve_backend/internal/feature/usage/domain"
	"evolve_backend/internal/feature/user/adapters"
	"evolve_backend/internal/feature/user/domain/entity"
)

func setupGormStore(t *testing.T) UsageStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(adapters.Models()...))

	store := adapters.NewUserGorm(db)
	require.NoError(t, store.Create(context.Background(), entity.NewUser("u1", "u1@example.com", "", "", "")))
	return store
}

// TestGate_FiveThenBlocked tracks five times, then checks the sixth call is blocked without a write.
func TestGate_FiveThenBlocked(t *testing.T) {
	ctx := context.Background()
	store := setupGormStore(t)
	gate := NewGateUsecase(store)

	for i := 1; i <= 5; i++ {
		st, err := gate.Track(ctx, "u1")
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, i, st.TodayCount)
	}

	st, err := gate.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, st.TodayCount)
	assert.Equal(t, 0, st.Remaining)

	_, err = gate.Track(ctx, "u1")
	assert.ErrorIs(t, err, usagedomain.ErrQuotaExceeded)
	assert.ErrorIs(t, gate.CheckAndMaybeBlock(ctx, "u1"), usagedomain.ErrQuotaExceeded)

	st, err = gate.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, st.TodayCount, "blocked call must not change the count")
}

// TestGate_NextDay checks that yesterday's usage does not count once the day rolls over.
func TestGate_NextDay(t *testing.T) {
	ctx := context.Background()
	store := setupGormStore(t)
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)
	gate := NewGateUsecase(store, WithClock(func() time.Time { return now }))

	for i := 0; i < 5; i++ {
		_, err := gate.Track(ctx, "u1")
		require.NoError(t, err)
	}
	_, err := gate.Track(ctx, "u1")
	require.ErrorIs(t, err, usagedomain.ErrQuotaExceeded)

	now = now.Add(2 * time.Minute)
	st, err := gate.Track(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, 1, st.TodayCount)
}

// TestGate_ReleaseRestoresCount checks that a released reservation leaves stored usage unchanged.
func TestGate_ReleaseRestoresCount(t *testing.T) {
	ctx := context.Background()
	store := setupGormStore(t)
	gate := NewGateUsecase(store)

	r, err := gate.Reserve(ctx, "u1", entity.MetricConversations)
	require.NoError(t, err)
	require.NoError(t, gate.Release(ctx, r))

	u, err := store.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, u.CountOn(entity.StartOfDay(time.Now())))
	assert.Zero(t, u.Metrics.Conversations)
}
