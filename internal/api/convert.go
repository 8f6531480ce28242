package api

import (
	"evolve_backend/internal/feature/user/domain/entity"
)

// Unlimited is reported as the remaining count for paid plans.
const Unlimited = "unlimited"

// NewSubscriptionDetails converts domain details into the response model. nil stays nil.
func NewSubscriptionDetails(d *entity.SubscriptionDetails) *SubscriptionDetails {
	if d == nil {
		return nil
	}
	return &SubscriptionDetails{
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		Status:          d.Status,
		PaymentId:       d.PaymentID,
		PriceAtPurchase: d.PriceAtPurchase,
	}
}

// NewUser converts a domain user into the response model.
func NewUser(u *entity.User) User {
	out := User{
		ClerkId:             u.ClerkID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Photo:               u.Photo,
		SubscriptionPlan:    string(u.SubscriptionPlan),
		SubscriptionDetails: NewSubscriptionDetails(u.SubscriptionDetails),
		Usage:               make([]UsageRecord, 0, len(u.Usage)),
		Metrics: Metrics{
			Conversations:      u.Metrics.Conversations,
			ImagesGenerated:    u.Metrics.ImagesGenerated,
			DictionarySearches: u.Metrics.DictionarySearches,
			AudioConversions:   u.Metrics.AudioConversions,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for _, r := range u.Usage {
		out.Usage = append(out.Usage, UsageRecord{Date: r.Date, TransactionCount: r.TransactionCount})
	}
	return out
}
