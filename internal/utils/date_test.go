package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameDay(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Midday UTC",
			input:    time.Date(2024, 6, 1, 13, 45, 12, 0, time.UTC),
			expected: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Already midnight",
			input:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Non-UTC zone normalizes to UTC day",
			input:    time.Date(2024, 6, 1, 23, 30, 0, 0, time.FixedZone("CEST", 2*60*60)),
			expected: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GameDay(tt.input))
		})
	}
}

func TestDayWindow(t *testing.T) {
	start, end := DayWindow(time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC), 5)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), end)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	b := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	c := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}
