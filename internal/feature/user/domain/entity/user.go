// Package entity defines the domain entities for the user feature.
package entity

import (
	"fmt"
	"strings"
	"time"

	"evolve_backend/internal/feature/user/domain"
)

// Plan is a subscription plan.
type Plan string

const (
	PlanFree    Plan = "Free"
	PlanStarter Plan = "Starter"
	PlanPro     Plan = "Pro"
)

// SubscriptionStatusActive is the status stored with every paid plan purchase.
const SubscriptionStatusActive = "active"

// ParsePlan converts a raw value into a Plan.
// Only the exact names Free, Starter and Pro are accepted.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.TrimSpace(s))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlan, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro:
		return true
	}
	return false
}

// IsPaid reports whether p is a known non-Free plan. Paid plans have unlimited usage.
func (p Plan) IsPaid() bool {
	return p.Valid() && p != PlanFree
}

// SubscriptionDetails describes the paid plan currently in effect.
type SubscriptionDetails struct {
	StartDate       time.Time
	EndDate         time.Time
	Status          string
	PaymentID       string
	PriceAtPurchase float64
}

// UsageRecord is the number of gated transactions on one calendar day.
type UsageRecord struct {
	Date             time.Time // local midnight of the day
	TransactionCount int
}

// User is the per-user record: identity, plan, subscription and usage counters.
type User struct {
	// ClerkID is the identity key issued by the identity provider. Unique.
	ClerkID string

	Email     string
	FirstName string
	LastName  string
	Photo     string

	SubscriptionPlan    Plan
	SubscriptionDetails *SubscriptionDetails

	// Usage holds at most one record per calendar day.
	Usage   []UsageRecord
	Metrics Metrics

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser returns a Free user with empty usage and metrics.
func NewUser(clerkID, email, firstName, lastName, photo string) *User {
	return &User{
		ClerkID:          clerkID,
		Email:            email,
		FirstName:        firstName,
		LastName:         lastName,
		Photo:            photo,
		SubscriptionPlan: PlanFree,
	}
}

// UsageIndex returns the index of the usage record for the calendar day of day, or -1.
func (u *User) UsageIndex(day time.Time) int {
	for i, r := range u.Usage {
		if SameDay(r.Date, day) {
			return i
		}
	}
	return -1
}

// CountOn returns the transaction count recorded for the calendar day of day.
func (u *User) CountOn(day time.Time) int {
	if i := u.UsageIndex(day); i >= 0 {
		return u.Usage[i].TransactionCount
	}
	return 0
}

// Validate checks the constraints every store enforces on save.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ClerkID) == "" {
		return fmt.Errorf("%w: clerk id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if !u.SubscriptionPlan.Valid() {
		return fmt.Errorf("%w: plan %q", domain.ErrValidation, u.SubscriptionPlan)
	}
	seen := make(map[string]struct{}, len(u.Usage))
	for _, r := range u.Usage {
		if r.TransactionCount < 0 {
			return fmt.Errorf("%w: negative transaction count", domain.ErrValidation)
		}
		key := DayKey(r.Date)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate usage record for %s", domain.ErrValidation, key)
		}
		seen[key] = struct{}{}
	}
	if err := u.Metrics.validate(); err != nil {
		return err
	}
	return nil
}

// UsageResult is the outcome of an atomic usage increment.
type UsageResult struct {
	Plan    Plan
	Count   int  // today's count after the operation; always 0 for paid plans
	Applied bool // the increment was written
}

// Unlimited reports whether the user is on a plan without a daily limit.
func (r UsageResult) Unlimited() bool {
	return r.Plan.IsPaid()
}
