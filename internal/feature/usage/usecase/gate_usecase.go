// Package usecase はFreeプランの1日あたりの利用回数制限(使用量ゲート)を実装します。
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	usagedomain "evolve_backend/internal/feature/usage/domain"
	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/platform/metrics"
)

// DailyFreeLimit はFreeプランで1日に実行できるAI機能の回数です。
const DailyFreeLimit = 5

// UsageStore はゲートが必要とするストア操作です。
// Goの慣例に従い、インターフェースはコンシューマー側で定義します。
type UsageStore interface {
	FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error)
	IncrementUsage(ctx context.Context, clerkID string, day time.Time, limit int, metric entity.Metric) (entity.UsageResult, error)
	DecrementUsage(ctx context.Context, clerkID string, day time.Time, metric entity.Metric) error
}

// Status は当日の利用状況です。有料プランではUnlimitedがtrueになります。
type Status struct {
	Plan       entity.Plan
	TodayCount int
	Remaining  int
	Unlimited  bool
}

// Reservation はReserveで確保した1回分の利用枠です。Releaseで取り消せます。
type Reservation struct {
	ClerkID string
	Day     time.Time
	Metric  entity.Metric
	// Applied は使用量が実際に加算された場合にtrueです。有料プランではfalseのままです。
	Applied bool
}

// Option はgateUsecaseの設定を変更します。
type Option func(*gateUsecase)

// WithClock はテスト用に現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(g *gateUsecase) { g.now = now }
}

// gateUsecase は使用量ゲートのユースケースです。
type gateUsecase struct {
	store UsageStore
	limit int
	now   func() time.Time
}

// NewGateUsecase はgateUsecaseの新しいインスタンスを生成します。
func NewGateUsecase(store UsageStore, opts ...Option) *gateUsecase {
	g := &gateUsecase{store: store, limit: DailyFreeLimit, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// today はローカル時刻の当日0時を返します。
func (g *gateUsecase) today() time.Time {
	return entity.StartOfDay(g.now().In(time.Local))
}

// CheckAndMaybeBlock は読み取りのみで判定します。上限に達していればErrQuotaExceededを返します。
// 判定と記録の間に他のリクエストが割り込めるため、HTTP層ではTrackまたはReserveを使用してください。
func (g *gateUsecase) CheckAndMaybeBlock(ctx context.Context, clerkID string) error {
	u, err := g.find(ctx, clerkID)
	if err != nil {
		return err
	}
	if u.SubscriptionPlan.IsPaid() {
		return nil
	}
	if u.CountOn(g.today()) >= g.limit {
		return usagedomain.ErrQuotaExceeded
	}
	return nil
}

// RecordUsage は上限を確認せずに当日の使用量を1件加算します。有料プランでは何もしません。
func (g *gateUsecase) RecordUsage(ctx context.Context, clerkID string) error {
	_, err := g.store.IncrementUsage(ctx, clerkID, g.today(), 0, entity.MetricNone)
	return err
}

// Track は判定と記録を1回のアトミックなストア操作で行います。
func (g *gateUsecase) Track(ctx context.Context, clerkID string) (Status, error) {
	_, st, err := g.reserve(ctx, clerkID, entity.MetricNone)
	return st, err
}

// Reserve はTrackと同様に1回分を確保し、指定されたメトリクスも同時に加算します。
func (g *gateUsecase) Reserve(ctx context.Context, clerkID string, metric entity.Metric) (Reservation, error) {
	r, _, err := g.reserve(ctx, clerkID, metric)
	return r, err
}

// Release はReserveで確保した枠を取り消します。加算されていない予約では何もしません。
func (g *gateUsecase) Release(ctx context.Context, r Reservation) error {
	if !r.Applied {
		return nil
	}
	if err := g.store.DecrementUsage(ctx, r.ClerkID, r.Day, r.Metric); err != nil {
		return err
	}
	metrics.RecordGateDecision(metrics.DecisionReleased, string(r.Metric))
	return nil
}

// Status は当日の利用回数と残り回数を返します。
func (g *gateUsecase) Status(ctx context.Context, clerkID string) (Status, error) {
	u, err := g.find(ctx, clerkID)
	if err != nil {
		return Status{}, err
	}
	if u.SubscriptionPlan.IsPaid() {
		return Status{Plan: u.SubscriptionPlan, Unlimited: true}, nil
	}
	return g.freeStatus(u.SubscriptionPlan, u.CountOn(g.today())), nil
}

func (g *gateUsecase) reserve(ctx context.Context, clerkID string, metric entity.Metric) (Reservation, Status, error) {
	day := g.today()
	res, err := g.store.IncrementUsage(ctx, clerkID, day, g.limit, metric)
	if err != nil {
		return Reservation{}, Status{}, err
	}

	if res.Unlimited() {
		metrics.RecordGateDecision(metrics.DecisionUnlimited, string(metric))
		return Reservation{ClerkID: clerkID, Day: day, Metric: metric},
			Status{Plan: res.Plan, Unlimited: true}, nil
	}

	st := g.freeStatus(res.Plan, res.Count)
	if !res.Applied {
		metrics.RecordGateDecision(metrics.DecisionBlocked, string(metric))
		log.Info().Str("clerk_id", clerkID).Int("count", res.Count).Msg("daily free limit reached")
		return Reservation{}, st, usagedomain.ErrQuotaExceeded
	}
	metrics.RecordGateDecision(metrics.DecisionAllowed, string(metric))
	return Reservation{ClerkID: clerkID, Day: day, Metric: metric, Applied: true}, st, nil
}

func (g *gateUsecase) freeStatus(plan entity.Plan, count int) Status {
	return Status{Plan: plan, TodayCount: count, Remaining: max(g.limit-count, 0)}
}

func (g *gateUsecase) find(ctx context.Context, clerkID string) (*entity.User, error) {
	u, err := g.store.FindByIdentity(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}
