package player

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"multitunes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStemSource struct {
	mu      sync.Mutex
	payload []byte
	fetched []int64

	// gates block fetches for a track until the channel closes.
	gates map[int64]chan struct{}

	failTrack int64
	failStem  models.Stem
	failErr   error
}

func newFakeStemSource(payload []byte) *fakeStemSource {
	return &fakeStemSource{
		payload: payload,
		gates:   make(map[int64]chan struct{}),
	}
}

func (f *fakeStemSource) Fetch(
	ctx context.Context,
	trackID int64,
	stem models.Stem,
) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, trackID)
	gate := f.gates[trackID]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}

	if f.failErr != nil && trackID == f.failTrack && stem == f.failStem {
		return nil, 0, f.failErr
	}

	return io.NopCloser(bytes.NewReader(f.payload)), int64(len(f.payload)), nil
}

func (f *fakeStemSource) fetchCount(trackID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, id := range f.fetched {
		if id == trackID {
			count++
		}
	}
	return count
}

func waitReady(t *testing.T, loader *Loader, question int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return loader.Ready(question)
	}, 2*time.Second, 5*time.Millisecond, "question %d never buffered", question)
}

func TestLoaderBuffersAllQuestions(t *testing.T) {
	game := testGame()
	payload := bytes.Repeat([]byte("audio"), 100)
	source := newFakeStemSource(payload)
	loader := NewLoader(source)

	loader.Start(context.Background(), game)
	for q := 0; q < len(game.Questions); q++ {
		waitReady(t, loader, q)
	}

	stems, err := loader.Stems(0)
	require.NoError(t, err)
	require.Len(t, stems, len(models.Stems))
	for _, stem := range models.Stems {
		assert.Equal(t, payload, stems[stem])
	}

	loaded, total := loader.Progress(0)
	want := int64(len(payload) * len(models.Stems))
	assert.Equal(t, want, loaded)
	assert.Equal(t, want, total)
}

func TestLoaderPrefetchesInOrder(t *testing.T) {
	game := testGame()
	source := newFakeStemSource([]byte("audio"))

	gate := make(chan struct{})
	source.gates[game.Questions[1].TrackID] = gate

	loader := NewLoader(source)
	loader.Start(context.Background(), game)

	// Question 0 finishes while question 1 sits at the gate.
	waitReady(t, loader, 0)
	assert.False(t, loader.Ready(1))
	assert.Zero(t, source.fetchCount(game.Questions[2].TrackID),
		"question 2 must not start before question 1 finishes")

	close(gate)
	for q := 1; q < len(game.Questions); q++ {
		waitReady(t, loader, q)
	}
}

func TestLoaderStemFailure(t *testing.T) {
	game := testGame()
	source := newFakeStemSource([]byte("audio"))
	source.failTrack = game.Questions[0].TrackID
	source.failStem = models.StemVocals
	source.failErr = errors.New("stem fetch failed")

	loader := NewLoader(source)
	loader.Start(context.Background(), game)

	// The failed question never reports ready, but the pipeline moves on.
	waitReady(t, loader, 1)
	assert.False(t, loader.Ready(0))

	_, err := loader.Stems(0)
	require.Error(t, err)
}

func TestLoaderCancellation(t *testing.T) {
	game := testGame()
	source := newFakeStemSource([]byte("audio"))
	source.gates[game.Questions[0].TrackID] = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	loader := NewLoader(source)
	loader.Start(ctx, game)

	require.Eventually(t, func() bool {
		return source.fetchCount(game.Questions[0].TrackID) == len(models.Stems)
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	require.Eventually(t, func() bool {
		_, err := loader.Stems(0)
		return errors.Is(err, context.Canceled)
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, loader.Ready(0))
	assert.Zero(t, source.fetchCount(game.Questions[1].TrackID))
}

func TestLoaderBoundsChecks(t *testing.T) {
	loader := NewLoader(newFakeStemSource(nil))

	assert.False(t, loader.Ready(-1))
	assert.False(t, loader.Ready(0))

	loaded, total := loader.Progress(3)
	assert.Zero(t, loaded)
	assert.Zero(t, total)

	stems, err := loader.Stems(3)
	assert.Nil(t, stems)
	assert.NoError(t, err)
}
