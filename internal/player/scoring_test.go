package player

import (
	"testing"
	"time"

	"multitunes/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRevealedStemsSchedule(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    []models.Stem
	}{
		{
			name:    "start",
			elapsed: 0,
			want:    []models.Stem{models.StemPiano, models.StemOther},
		},
		{
			name:    "just before bass",
			elapsed: 5*time.Second - time.Millisecond,
			want:    []models.Stem{models.StemPiano, models.StemOther},
		},
		{
			name:    "bass lands",
			elapsed: 5 * time.Second,
			want:    []models.Stem{models.StemPiano, models.StemOther, models.StemBass},
		},
		{
			name:    "drums land",
			elapsed: 10 * time.Second,
			want: []models.Stem{
				models.StemPiano, models.StemOther, models.StemBass, models.StemDrums,
			},
		},
		{
			name:    "guitar lands",
			elapsed: 15 * time.Second,
			want: []models.Stem{
				models.StemPiano, models.StemOther, models.StemBass,
				models.StemDrums, models.StemGuitar,
			},
		},
		{
			name:    "everything audible",
			elapsed: 25 * time.Second,
			want: []models.Stem{
				models.StemPiano, models.StemOther, models.StemBass,
				models.StemDrums, models.StemGuitar, models.StemVocals,
			},
		},
		{
			name:    "negative elapsed clamps to start",
			elapsed: -time.Second,
			want:    []models.Stem{models.StemPiano, models.StemOther},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, RevealedStems(tt.elapsed))
		})
	}
}

func TestRevealedStemsIsMonotonic(t *testing.T) {
	previous := 0
	for elapsed := time.Duration(0); elapsed <= 30*time.Second; elapsed += 100 * time.Millisecond {
		count := len(RevealedStems(elapsed))
		assert.GreaterOrEqual(t, count, previous, "reveal count shrank at %v", elapsed)
		previous = count
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		correct bool
		want    int
	}{
		{"instant correct", 0, true, 8},
		{"before bass", 4 * time.Second, true, 8},
		{"after bass", 5 * time.Second, true, 7},
		{"after drums", 12 * time.Second, true, 6},
		{"after guitar", 16 * time.Second, true, 5},
		{"after vocals", 20 * time.Second, true, 4},
		{"late but correct", 29 * time.Second, true, 4},
		{"instant wrong", 0, false, 0},
		{"late wrong", 25 * time.Second, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Points(tt.elapsed, tt.correct))
		})
	}
}
