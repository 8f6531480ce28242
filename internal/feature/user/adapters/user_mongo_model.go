package adapters

import (
	"time"

	"evolve_backend/internal/feature/user/domain/entity"
)

// userDocument is the MongoDB representation of a user.
// Usage and metrics are embedded so that each write touches a single document.
type userDocument struct {
	ClerkID             string               `bson:"clerkId"`
	Email               string               `bson:"email"`
	FirstName           string               `bson:"firstName"`
	LastName            string               `bson:"lastName"`
	Photo               string               `bson:"photo"`
	SubscriptionPlan    string               `bson:"subscriptionPlan"`
	SubscriptionDetails *subscriptionDetails `bson:"subscriptionDetails,omitempty"`
	Usage               []usageDocument      `bson:"usage"`
	Metrics             metricsDocument      `bson:"metrics"`
	CreatedAt           time.Time            `bson:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt"`
}

type subscriptionDetails struct {
	StartDate       time.Time `bson:"startDate"`
	EndDate         time.Time `bson:"endDate"`
	Status          string    `bson:"status"`
	PaymentID       string    `bson:"paymentId,omitempty"`
	PriceAtPurchase float64   `bson:"priceAtPurchase,omitempty"`
}

// usageDocument keeps the day key next to the date so that matching never depends on the stored time zone.
type usageDocument struct {
	Day              string    `bson:"day"`
	Date             time.Time `bson:"date"`
	TransactionCount int       `bson:"transactionCount"`
}

type metricsDocument struct {
	Conversations      int `bson:"conversations"`
	ImagesGenerated    int `bson:"imagesGenerated"`
	DictionarySearches int `bson:"dictionarySearches"`
	AudioConversions   int `bson:"audioConversions"`
}

// metricFields maps metrics to their dotted path in a user document.
var metricFields = map[entity.Metric]string{
	entity.MetricConversations:      "metrics.conversations",
	entity.MetricImagesGenerated:    "metrics.imagesGenerated",
	entity.MetricDictionarySearches: "metrics.dictionarySearches",
	entity.MetricAudioConversions:   "metrics.audioConversions",
}

func (d *userDocument) toEntity() *entity.User {
	u := &entity.User{
		ClerkID:          d.ClerkID,
		Email:            d.Email,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Photo:            d.Photo,
		SubscriptionPlan: entity.Plan(d.SubscriptionPlan),
		Metrics: entity.Metrics{
			Conversations:      d.Metrics.Conversations,
			ImagesGenerated:    d.Metrics.ImagesGenerated,
			DictionarySearches: d.Metrics.DictionarySearches,
			AudioConversions:   d.Metrics.AudioConversions,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if s := d.SubscriptionDetails; s != nil {
		u.SubscriptionDetails = &entity.SubscriptionDetails{
			StartDate:       s.StartDate,
			EndDate:         s.EndDate,
			Status:          s.Status,
			PaymentID:       s.PaymentID,
			PriceAtPurchase: s.PriceAtPurchase,
		}
	}
	for _, r := range d.Usage {
		u.Usage = append(u.Usage, entity.UsageRecord{Date: r.Date.In(time.Local), TransactionCount: r.TransactionCount})
	}
	return u
}

// countOn returns the stored count for the given day key.
func (d *userDocument) countOn(key string) (int, bool) {
	for _, r := range d.Usage {
		if r.Day == key {
			return r.TransactionCount, true
		}
	}
	return 0, false
}

func documentFromEntity(u *entity.User) *userDocument {
	d := &userDocument{
		ClerkID:             u.ClerkID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Photo:               u.Photo,
		SubscriptionPlan:    string(u.SubscriptionPlan),
		SubscriptionDetails: detailsDocument(u.SubscriptionDetails),
		Usage:               make([]usageDocument, 0, len(u.Usage)),
		Metrics: metricsDocument{
			Conversations:      u.Metrics.Conversations,
			ImagesGenerated:    u.Metrics.ImagesGenerated,
			DictionarySearches: u.Metrics.DictionarySearches,
			AudioConversions:   u.Metrics.AudioConversions,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for _, r := range u.Usage {
		day := entity.StartOfDay(r.Date.In(time.Local))
		d.Usage = append(d.Usage, usageDocument{Day: entity.DayKey(day), Date: day, TransactionCount: r.TransactionCount})
	}
	return d
}

func detailsDocument(s *entity.SubscriptionDetails) *subscriptionDetails {
	if s == nil {
		return nil
	}
	return &subscriptionDetails{
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		Status:          s.Status,
		PaymentID:       s.PaymentID,
		PriceAtPurchase: s.PriceAtPurchase,
	}
}
