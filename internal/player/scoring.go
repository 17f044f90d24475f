package player

import (
	"time"

	"multitunes/internal/models"
)

// Stems reveal progressively while a question plays. Piano and the
// other/backing channel are audible from the start; each later stem
// makes the track easier to name and lowers the attainable score.
const (
	RevealBass   = 5 * time.Second
	RevealDrums  = 10 * time.Second
	RevealGuitar = 15 * time.Second
	RevealVocals = 20 * time.Second

	// QuestionTimeout caps a question; expiry submits a zero-point
	// no-answer automatically.
	QuestionTimeout = 30 * time.Second

	maxPoints = 8
)

// revealSchedule is ordered by reveal time.
var revealSchedule = []struct {
	stem models.Stem
	at   time.Duration
}{
	{models.StemPiano, 0},
	{models.StemOther, 0},
	{models.StemBass, RevealBass},
	{models.StemDrums, RevealDrums},
	{models.StemGuitar, RevealGuitar},
	{models.StemVocals, RevealVocals},
}

// RevealedStems returns the stems audible after elapsed play time. The
// result is monotonic: a revealed stem never un-reveals.
func RevealedStems(elapsed time.Duration) []models.Stem {
	if elapsed < 0 {
		elapsed = 0
	}

	revealed := make([]models.Stem, 0, len(revealSchedule))
	for _, entry := range revealSchedule {
		if elapsed >= entry.at {
			revealed = append(revealed, entry.stem)
		}
	}
	return revealed
}

// Points returns the score for a correct answer after elapsed play
// time: 8 before the bass lands, then 7/6/5/4 as each stem reveals.
// Wrong answers and timeouts score zero regardless of timing.
func Points(elapsed time.Duration, correct bool) int {
	if !correct {
		return 0
	}

	switch {
	case elapsed < RevealBass:
		return maxPoints
	case elapsed < RevealDrums:
		return 7
	case elapsed < RevealGuitar:
		return 6
	case elapsed < RevealVocals:
		return 5
	default:
		return 4
	}
}
