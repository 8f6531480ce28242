package cache

import (
	"testing"
	"time"
)

func TestTimeUntilNextMidnight(t *testing.T) {
	t.Parallel()

	duration := timeUntilNextMidnight(time.Now())

	// Duration should always be positive and at most 24 hours (25 on DST changes)
	if duration <= 0 {
		t.Errorf("expected positive duration, got %v", duration)
	}
	if duration > 25*time.Hour {
		t.Errorf("expected duration less than a day, got %v", duration)
	}
}

func TestTimeUntilNextMidnight_FixedTimes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		now      time.Time
		expected time.Duration
	}{
		{"one minute before midnight", time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local), time.Minute},
		{"noon", time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local), 12 * time.Hour},
		{"month end", time.Date(2025, 1, 31, 18, 0, 0, 0, time.Local), 6 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := timeUntilNextMidnight(tt.now)
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
