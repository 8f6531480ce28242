package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve_backend/internal/feature/user/domain"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in      string
		want    Plan
		wantErr bool
	}{
		{"Free", PlanFree, false},
		{"Starter", PlanStarter, false},
		{"Pro", PlanPro, false},
		{" Pro ", PlanPro, false},
		{"Enterprise", "", true},
		{"pro", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlan(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPlan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_IsPaid(t *testing.T) {
	assert.False(t, PlanFree.IsPaid())
	assert.True(t, PlanStarter.IsPaid())
	assert.True(t, PlanPro.IsPaid())
	assert.False(t, Plan("Enterprise").IsPaid(), "unknown plans are never treated as paid")
}

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	late := time.Date(2025, 3, 10, 23, 59, 59, 0, loc)
	early := time.Date(2025, 3, 11, 0, 0, 1, 0, loc)

	assert.False(t, SameDay(late, early), "adjacent seconds across midnight are different days")
	assert.True(t, SameDay(early, time.Date(2025, 3, 11, 18, 0, 0, 0, loc)))

	// 2025-03-10T15:30Z is 2025-03-11 00:30 in JST.
	utc := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	assert.True(t, SameDay(utc, early), "stored values are compared in the day's location")
}

func TestUser_Validate(t *testing.T) {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		mutate func(u *User)
		valid  bool
	}{
		{"valid free user", func(u *User) {}, true},
		{"missing clerk id", func(u *User) { u.ClerkID = "" }, false},
		{"missing email", func(u *User) { u.Email = " " }, false},
		{"unknown plan", func(u *User) { u.SubscriptionPlan = "Enterprise" }, false},
		{"negative count", func(u *User) { u.Usage = []UsageRecord{{Date: day, TransactionCount: -1}} }, false},
		{"negative metric", func(u *User) { u.Metrics.AudioConversions = -1 }, false},
		{"duplicate day", func(u *User) {
			u.Usage = []UsageRecord{{Date: day, TransactionCount: 1}, {Date: day.Add(3 * time.Hour), TransactionCount: 2}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUser("u1", "u1@example.com", "Ada", "Lovelace", "")
			tt.mutate(u)
			err := u.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrValidation)
			}
		})
	}
}

func TestMetric_Valid(t *testing.T) {
	assert.False(t, MetricNone.Valid())
	assert.False(t, Metric("tokens").Valid())
	for _, m := range []Metric{MetricConversations, MetricImagesGenerated, MetricDictionarySearches, MetricAudioConversions} {
		assert.True(t, m.Valid(), m)
	}
}
