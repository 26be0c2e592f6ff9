package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	assert.Equal(t, "2025-03-07", DateKey(time.Date(2025, 3, 7, 23, 59, 0, 0, loc)))
	assert.Equal(t, "2025-11-30", DateKey(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)))
}

func TestParseDurationDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4 weeks", 28},
		{"1 week", 7},
		{"2 Weeks", 14},
		{"10 days", 10},
		{"1 day", 1},
		{"  3 weeks progressive plan", 21},
		{"0 weeks", 7},  // floored to one week
		{"0 days", 1},   // floored to one day
		{"forever", 28}, // fallback
		{"", 28},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseDurationDays(tc.in, 28), "input %q", tc.in)
	}
	assert.Equal(t, 14, ParseDurationDays("gibberish", 14))
}

func TestWindowEnd(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := WindowEnd(start, 28)
	assert.Equal(t, start.Add(28*24*time.Hour-time.Millisecond), end)
	// the window is inclusive: the last day still counts as active
	assert.True(t, end.After(start.Add(27*24*time.Hour)))
}

func TestElapsedDays(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := WindowEnd(start, 28)

	// started today
	assert.Equal(t, 1, ElapsedDays(start, end, start.Add(10*time.Hour), 28))
	// midway
	assert.Equal(t, 5, ElapsedDays(start, end, start.Add(4*24*time.Hour+time.Hour), 28))
	// past the end the count caps at the window length
	assert.Equal(t, 28, ElapsedDays(start, end, start.Add(90*24*time.Hour), 28))
}
