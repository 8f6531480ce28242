package usecase

import (
	"context"
	"time"

	"evolve_backend/internal/feature/user/domain/entity"
)

// Store abstracts the persistence layer for user records.
// It is the full surface implemented by the gorm and MongoDB adapters;
// other features declare the narrower subsets they consume.
type Store interface {
	// FindByIdentity returns the user with the given identity key.
	// An absent user is reported as (nil, nil).
	FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error)

	// Create persists a new user.
	// It returns domain.ErrDuplicateIdentity if the identity key already exists.
	Create(ctx context.Context, user *entity.User) error

	// Save persists the mutable fields of an existing user.
	// It returns domain.ErrUserNotFound if the user no longer exists and
	// domain.ErrValidation if a constraint is violated.
	Save(ctx context.Context, user *entity.User) error

	// IncrementUsage atomically increments the Free-plan usage record of the given day,
	// creating it when absent, as long as the count stays below limit (limit <= 0 means no limit).
	// A valid metric is incremented in the same write. Paid plans are left untouched.
	IncrementUsage(ctx context.Context, clerkID string, day time.Time, limit int, metric entity.Metric) (entity.UsageResult, error)

	// DecrementUsage reverts one IncrementUsage. Counters never drop below zero.
	DecrementUsage(ctx context.Context, clerkID string, day time.Time, metric entity.Metric) error

	// ApplySubscription sets plan and details in one atomic update.
	// For paid plans usage is cleared and metrics are zeroed in the same update.
	ApplySubscription(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error)
}
