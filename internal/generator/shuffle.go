package generator

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the uniform random source behind shuffling and distractor
// picks. Production uses a freshly seeded source per process; tests
// inject a fixed seed for reproducible games.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRand returns a concurrency-safe source seeded from the wall clock.
func NewRand() Rand {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRand returns a concurrency-safe source with a fixed seed.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

// Shuffle permutes items in place with a Fisher-Yates walk over r.
func Shuffle[T any](r Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
