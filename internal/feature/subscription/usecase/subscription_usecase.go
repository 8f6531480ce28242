// Package usecase はサブスクリプションプランの変更と参照を実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/platform/metrics"
)

// SubscriptionStore はプラン変更に必要なストア操作です。
type SubscriptionStore interface {
	FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error)
	ApplySubscription(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error)
}

// UpdateInput は決済完了後にフロントエンドから送られるプラン変更の内容です。
type UpdateInput struct {
	ClerkID         string
	Plan            string
	StartDate       *time.Time
	EndDate         *time.Time
	PaymentID       string
	PriceAtPurchase float64
}

// subscriptionUsecase はプラン変更のユースケースです。
type subscriptionUsecase struct {
	store SubscriptionStore
	now   func() time.Time
}

// NewSubscriptionUsecase はsubscriptionUsecaseの新しいインスタンスを生成します。
func NewSubscriptionUsecase(store SubscriptionStore) *subscriptionUsecase {
	return &subscriptionUsecase{store: store, now: time.Now}
}

// Update はプランを変更します。
// 有料プランでは契約情報をactiveで保存し、同じ操作で使用量とメトリクスをリセットします。
// Freeプランへの変更では契約情報を削除し、使用量は残します。
func (s *subscriptionUsecase) Update(ctx context.Context, in UpdateInput) (*entity.User, error) {
	plan, err := entity.ParsePlan(in.Plan)
	if err != nil {
		return nil, err
	}
	clerkID := strings.TrimSpace(in.ClerkID)
	if clerkID == "" {
		return nil, fmt.Errorf("%w: clerk id is required", domain.ErrValidation)
	}

	var details *entity.SubscriptionDetails
	if plan.IsPaid() {
		if details, err = s.paidDetails(in); err != nil {
			return nil, err
		}
	}

	user, err := s.store.ApplySubscription(ctx, clerkID, plan, details)
	if err != nil {
		return nil, err
	}
	metrics.RecordSubscriptionUpdate(string(plan))
	log.Info().Str("clerk_id", clerkID).Str("plan", string(plan)).Str("payment_id", in.PaymentID).Msg("subscription updated")
	return user, nil
}

// Status は現在のプランと契約情報を返します。
func (s *subscriptionUsecase) Status(ctx context.Context, clerkID string) (entity.Plan, *entity.SubscriptionDetails, error) {
	user, err := s.store.FindByIdentity(ctx, clerkID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, domain.ErrUserNotFound
	}
	return user.SubscriptionPlan, user.SubscriptionDetails, nil
}

// paidDetails は契約情報を組み立てます。開始日の既定値は現在時刻、終了日の既定値は開始日の1か月後です。
func (s *subscriptionUsecase) paidDetails(in UpdateInput) (*entity.SubscriptionDetails, error) {
	start := s.now()
	if in.StartDate != nil && !in.StartDate.IsZero() {
		start = *in.StartDate
	}
	end := start.AddDate(0, 1, 0)
	if in.EndDate != nil && !in.EndDate.IsZero() {
		end = *in.EndDate
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate is before startDate", domain.ErrValidation)
	}
	if in.PriceAtPurchase < 0 {
		return nil, fmt.Errorf("%w: priceAtPurchase must not be negative", domain.ErrValidation)
	}
	return &entity.SubscriptionDetails{
		StartDate:       start,
		EndDate:         end,
		Status:          entity.SubscriptionStatusActive,
		PaymentID:       in.PaymentID,
		PriceAtPurchase: in.PriceAtPurchase,
	}, nil
}
