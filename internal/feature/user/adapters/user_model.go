package adapters

import (
	"time"

	"evolve_backend/internal/feature/user/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        uint   `gorm:"primaryKey"`
	ClerkID   string `gorm:"uniqueIndex;size:191;not null"`
	Email     string `gorm:"uniqueIndex;size:255;not null"`
	FirstName string `gorm:"size:255"`
	LastName  string `gorm:"size:255"`
	Photo     string `gorm:"size:1024"`

	SubscriptionPlan      string     `gorm:"size:16;not null;default:Free"`
	SubscriptionStartDate *time.Time // nil when no subscription details are stored
	SubscriptionEndDate   *time.Time
	SubscriptionStatus    string `gorm:"size:32"`
	PaymentID             string `gorm:"size:255"`
	PriceAtPurchase       float64

	Conversations      int `gorm:"not null;default:0"`
	ImagesGenerated    int `gorm:"not null;default:0"`
	DictionarySearches int `gorm:"not null;default:0"`
	AudioConversions   int `gorm:"not null;default:0"`

	Usage []UsageRecordModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// UsageRecordModel is the GORM model for the usage_records table.
// (user_id, day) is unique, which enforces one record per calendar day.
type UsageRecordModel struct {
	ID               uint      `gorm:"primaryKey"`
	UserID           uint      `gorm:"uniqueIndex:idx_usage_user_day;not null"`
	Day              string    `gorm:"uniqueIndex:idx_usage_user_day;size:10;not null"` // YYYY-MM-DD in server local time
	Date             time.Time `gorm:"not null"`
	TransactionCount int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM.
func (UsageRecordModel) TableName() string {
	return "usage_records"
}

// Models lists every model for AutoMigrate.
func Models() []any {
	return []any{&UserModel{}, &UsageRecordModel{}}
}

// metricColumns maps metrics to their column in the users table.
var metricColumns = map[entity.Metric]string{
	entity.MetricConversations:      "conversations",
	entity.MetricImagesGenerated:    "images_generated",
	entity.MetricDictionarySearches: "dictionary_searches",
	entity.MetricAudioConversions:   "audio_conversions",
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	u := &entity.User{
		ClerkID:          m.ClerkID,
		Email:            m.Email,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Photo:            m.Photo,
		SubscriptionPlan: entity.Plan(m.SubscriptionPlan),
		Metrics: entity.Metrics{
			Conversations:      m.Conversations,
			ImagesGenerated:    m.ImagesGenerated,
			DictionarySearches: m.DictionarySearches,
			AudioConversions:   m.AudioConversions,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.SubscriptionStartDate != nil {
		d := &entity.SubscriptionDetails{
			StartDate:       *m.SubscriptionStartDate,
			Status:          m.SubscriptionStatus,
			PaymentID:       m.PaymentID,
			PriceAtPurchase: m.PriceAtPurchase,
		}
		if m.SubscriptionEndDate != nil {
			d.EndDate = *m.SubscriptionEndDate
		}
		u.SubscriptionDetails = d
	}
	for _, r := range m.Usage {
		u.Usage = append(u.Usage, entity.UsageRecord{Date: r.Date.In(time.Local), TransactionCount: r.TransactionCount})
	}
	return u
}

// UserModelFromEntity converts a domain entity to a GORM model. Usage rows are built separately.
func UserModelFromEntity(u *entity.User) *UserModel {
	m := &UserModel{
		ClerkID:            u.ClerkID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Photo:              u.Photo,
		SubscriptionPlan:   string(u.SubscriptionPlan),
		Conversations:      u.Metrics.Conversations,
		ImagesGenerated:    u.Metrics.ImagesGenerated,
		DictionarySearches: u.Metrics.DictionarySearches,
		AudioConversions:   u.Metrics.AudioConversions,
	}
	if d := u.SubscriptionDetails; d != nil {
		start, end := d.StartDate, d.EndDate
		m.SubscriptionStartDate = &start
		m.SubscriptionEndDate = &end
		m.SubscriptionStatus = d.Status
		m.PaymentID = d.PaymentID
		m.PriceAtPurchase = d.PriceAtPurchase
	}
	return m
}

// usageRowsFromEntity builds one row per usage record, keyed by local calendar day.
func usageRowsFromEntity(userID uint, u *entity.User) []UsageRecordModel {
	rows := make([]UsageRecordModel, 0, len(u.Usage))
	for _, r := range u.Usage {
		day := entity.StartOfDay(r.Date.In(time.Local))
		rows = append(rows, UsageRecordModel{
			UserID:           userID,
			Day:              entity.DayKey(day),
			Date:             day,
			TransactionCount: r.TransactionCount,
		})
	}
	return rows
}

// detailsColumns returns the column updates for the subscription details.
func detailsColumns(d *entity.SubscriptionDetails) map[string]any {
	if d == nil {
		return map[string]any{
			"subscription_start_date": nil,
			"subscription_end_date":   nil,
			"subscription_status":     "",
			"payment_id":              "",
			"price_at_purchase":       0,
		}
	}
	return map[string]any{
		"subscription_start_date": d.StartDate,
		"subscription_end_date":   d.EndDate,
		"subscription_status":     d.Status,
		"payment_id":              d.PaymentID,
		"price_at_purchase":       d.PriceAtPurchase,
	}
}
