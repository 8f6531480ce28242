package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
)

// mockSubscriptionStore is a mock implementation of the SubscriptionStore interface.
type mockSubscriptionStore struct {
	FindByIdentityFunc    func(ctx context.Context, clerkID string) (*entity.User, error)
	ApplySubscriptionFunc func(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error)

	ApplyCalls  int
	LastPlan    entity.Plan
	LastDetails *entity.SubscriptionDetails
}

func (m *mockSubscriptionStore) FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error) {
	if m.FindByIdentityFunc != nil {
		return m.FindByIdentityFunc(ctx, clerkID)
	}
	return nil, nil
}

func (m *mockSubscriptionStore) ApplySubscription(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error) {
	m.ApplyCalls++
	m.LastPlan = plan
	m.LastDetails = details
	if m.ApplySubscriptionFunc != nil {
		return m.ApplySubscriptionFunc(ctx, clerkID, plan, details)
	}
	u := entity.NewUser(clerkID, clerkID+"@example.com", "", "", "")
	u.SubscriptionPlan = plan
	u.SubscriptionDetails = details
	return u, nil
}

func TestSubscriptionUsecase_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		in          UpdateInput
		wantErr     error
		wantApply   bool
		wantDetails *entity.SubscriptionDetails
	}{
		{
			name:      "paid plan with explicit dates",
			in:        UpdateInput{ClerkID: "u1", Plan: "Starter", StartDate: &start, EndDate: &end, PaymentID: "pay_1", PriceAtPurchase: 9.99},
			wantApply: true,
			wantDetails: &entity.SubscriptionDetails{
				StartDate: start, EndDate: end, Status: "active", PaymentID: "pay_1", PriceAtPurchase: 9.99,
			},
		},
		{
			name:      "paid plan defaults to a one month term from now",
			in:        UpdateInput{ClerkID: "u1", Plan: "Pro"},
			wantApply: true,
			wantDetails: &entity.SubscriptionDetails{
				StartDate: now, EndDate: now.AddDate(0, 1, 0), Status: "active",
			},
		},
		{
			name:      "free plan clears details",
			in:        UpdateInput{ClerkID: "u1", Plan: "Free", StartDate: &start},
			wantApply: true,
		},
		{
			name:    "unknown plan is rejected before the store",
			in:      UpdateInput{ClerkID: "u1", Plan: "Enterprise"},
			wantErr: domain.ErrInvalidPlan,
		},
		{
			name:    "plan names are case sensitive",
			in:      UpdateInput{ClerkID: "u1", Plan: "pro"},
			wantErr: domain.ErrInvalidPlan,
		},
		{
			name:    "end before start",
			in:      UpdateInput{ClerkID: "u1", Plan: "Pro", StartDate: &end, EndDate: &start},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing clerk id",
			in:      UpdateInput{Plan: "Pro"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSubscriptionStore{}
			uc := NewSubscriptionUsecase(store)
			uc.now = func() time.Time { return now }

			user, err := uc.Update(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Zero(t, store.ApplyCalls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, store.ApplyCalls)
			assert.Equal(t, tt.wantDetails, store.LastDetails)
			assert.Equal(t, entity.Plan(tt.in.Plan), user.SubscriptionPlan)
		})
	}
}

func TestSubscriptionUsecase_Update_StoreError(t *testing.T) {
	store := &mockSubscriptionStore{
		ApplySubscriptionFunc: func(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := NewSubscriptionUsecase(store).Update(context.Background(), UpdateInput{ClerkID: "ghost", Plan: "Pro"})

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSubscriptionUsecase_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		details := &entity.SubscriptionDetails{Status: "active"}
		store := &mockSubscriptionStore{
			FindByIdentityFunc: func(ctx context.Context, clerkID string) (*entity.User, error) {
				u := entity.NewUser(clerkID, "u1@example.com", "", "", "")
				u.SubscriptionPlan = entity.PlanStarter
				u.SubscriptionDetails = details
				return u, nil
			},
		}

		plan, got, err := NewSubscriptionUsecase(store).Status(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, entity.PlanStarter, plan)
		assert.Same(t, details, got)
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := NewSubscriptionUsecase(&mockSubscriptionStore{}).Status(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
