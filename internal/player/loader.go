package player

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"multitunes/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// StemSource fetches one stem's audio bytes. Implementations exist for
// the HTTP stem endpoint and for direct blob-store reads.
type StemSource interface {
	Fetch(ctx context.Context, trackID int64, stem models.Stem) (io.ReadCloser, int64, error)
}

// questionLoad tracks one question's six stem buffers.
type questionLoad struct {
	mu     sync.Mutex
	stems  map[models.Stem][]byte
	loaded atomic.Int64
	total  atomic.Int64
	done   atomic.Bool
	err    error
}

// Loader buffers a game's stems ahead of playback. Questions load as an
// ordered pipeline: each question's six stems fetch concurrently, and
// question i+1 starts as soon as i finishes, so it is prefetching while
// i plays. Cancelling the context passed to Start tears down in-flight
// fetches.
type Loader struct {
	source    StemSource
	questions []*questionLoad
	log       logger.Logger
}

func NewLoader(source StemSource) *Loader {
	return &Loader{
		source: source,
		log:    logger.New("player").File("loader"),
	}
}

// Start begins loading the game's stems in the background.
func (l *Loader) Start(ctx context.Context, game *models.Game) {
	l.questions = make([]*questionLoad, len(game.Questions))
	for i := range l.questions {
		l.questions[i] = &questionLoad{stems: make(map[models.Stem][]byte)}
	}

	go l.run(ctx, game)
}

func (l *Loader) run(ctx context.Context, game *models.Game) {
	log := l.log.Function("run")

	for i, question := range game.Questions {
		if ctx.Err() != nil {
			return
		}

		if err := l.loadQuestion(ctx, l.questions[i], question.TrackID); err != nil {
			log.Er("failed to load question stems", err, "question", i, "trackID", question.TrackID)
			l.questions[i].mu.Lock()
			l.questions[i].err = err
			l.questions[i].mu.Unlock()
			continue
		}

		l.questions[i].done.Store(true)
		log.Debug("Question stems buffered", "question", i, "bytes", l.questions[i].loaded.Load())
	}
}

func (l *Loader) loadQuestion(ctx context.Context, load *questionLoad, trackID int64) error {
	var (
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, stem := range models.Stems {
		wg.Add(1)
		go func(stem models.Stem) {
			defer wg.Done()

			data, err := l.fetchStem(ctx, load, trackID, stem)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}

			load.mu.Lock()
			load.stems[stem] = data
			load.mu.Unlock()
		}(stem)
	}

	wg.Wait()
	return firstErr
}

func (l *Loader) fetchStem(
	ctx context.Context,
	load *questionLoad,
	trackID int64,
	stem models.Stem,
) ([]byte, error) {
	body, size, err := l.source.Fetch(ctx, trackID, stem)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	if size > 0 {
		load.total.Add(size)
	}

	// Read in chunks so byte progress updates while the fetch streams.
	var data []byte
	buf := make([]byte, 32*1024)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			load.loaded.Add(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}

	if size <= 0 {
		load.total.Add(int64(len(data)))
	}

	return data, nil
}

// Ready reports whether every stem of the question is buffered.
func (l *Loader) Ready(question int) bool {
	if question < 0 || question >= len(l.questions) {
		return false
	}
	return l.questions[question].done.Load()
}

// Progress returns loaded and total bytes for the question. Total grows
// as fetches report their content lengths.
func (l *Loader) Progress(question int) (loaded, total int64) {
	if question < 0 || question >= len(l.questions) {
		return 0, 0
	}
	return l.questions[question].loaded.Load(), l.questions[question].total.Load()
}

// Stems returns the question's buffered audio, or the load error.
func (l *Loader) Stems(question int) (map[models.Stem][]byte, error) {
	if question < 0 || question >= len(l.questions) {
		return nil, nil
	}

	load := l.questions[question]
	load.mu.Lock()
	defer load.mu.Unlock()

	if load.err != nil {
		return nil, load.err
	}

	stems := make(map[models.Stem][]byte, len(load.stems))
	for stem, data := range load.stems {
		stems[stem] = data
	}
	return stems, nil
}
