package player

import (
	"errors"
	"time"

	"multitunes/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// State is the playback controller's lifecycle position.
type State int

const (
	StateUnknown State = iota
	StateLoading
	StateReady
	StatePlaying
	StateIntersong
	StateDone
	StateAlreadyPlayed
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateIntersong:
		return "intersong"
	case StateDone:
		return "done"
	case StateAlreadyPlayed:
		return "already_played"
	}
	return "invalid"
}

var (
	ErrNotPlaying   = errors.New("no question is playing")
	ErrWrongState   = errors.New("operation not valid in current state")
	ErrUnknownTrack = errors.New("answer is not one of the question's choices")
)

// TickInterval is the suggested poll rate for Tick. The controller only
// compares elapsed durations, so slower or irregular polling just
// coarsens reveal timing.
const TickInterval = 100 * time.Millisecond

// Readiness is the slice of the loader the controller needs.
type Readiness interface {
	Ready(question int) bool
}

// Controller drives one game session: stem reveal timing, answer
// scoring, the inter-question pause, and the already-played guard.
// It is single-goroutine by design, mirroring a UI event loop.
type Controller struct {
	game    *models.Game
	loader  Readiness
	history HistoryStore
	clock   Clock
	log     logger.Logger

	state         State
	question      int
	questionStart time.Time
	revealed      map[models.Stem]struct{}
	points        []int
}

func NewController(
	game *models.Game,
	loader Readiness,
	history HistoryStore,
	clock Clock,
) *Controller {
	return &Controller{
		game:     game,
		loader:   loader,
		history:  history,
		clock:    clock,
		log:      logger.New("player").File("controller"),
		state:    StateUnknown,
		revealed: make(map[models.Stem]struct{}),
	}
}

// Begin checks the history guard and moves to Loading. A game the
// player already finished is terminal immediately.
func (c *Controller) Begin() State {
	log := c.log.Function("Begin")

	if c.state != StateUnknown {
		return c.state
	}

	if record, played := c.history.HasPlayed(c.game); played {
		log.Info("Game already played", "gameID", c.game.ID, "score", record.Score)
		c.state = StateAlreadyPlayed
		return c.state
	}

	c.state = StateLoading
	return c.state
}

// Tick advances time-driven transitions and returns the current state.
// Call it on a ~100ms poll while the session is active.
func (c *Controller) Tick() State {
	switch c.state {
	case StateLoading:
		if c.loader.Ready(c.question) {
			if c.question == 0 && c.questionStart.IsZero() {
				// The opening question waits for an explicit Start.
				c.state = StateReady
			} else {
				// Mid-game buffering resumes play on its own.
				c.startQuestion()
			}
		}

	case StatePlaying:
		elapsed := c.elapsed()
		for _, stem := range RevealedStems(elapsed) {
			c.revealed[stem] = struct{}{}
		}

		if elapsed >= QuestionTimeout {
			// Out of time: a zero-point no-answer is submitted for the
			// player.
			c.log.Function("Tick").Info(
				"Question timed out",
				"question", c.question,
				"gameID", c.game.ID,
			)
			c.points = append(c.points, 0)
			c.state = StateIntersong
		}
	}

	return c.state
}

// Start begins the first question once Tick has reached Ready.
func (c *Controller) Start() error {
	if c.state != StateReady {
		return ErrWrongState
	}

	c.startQuestion()
	return nil
}

// Answer submits the player's choice for the playing question and
// returns the points earned. Scoring depends on how many stems had
// revealed when the answer landed.
func (c *Controller) Answer(trackID int64) (int, error) {
	log := c.log.Function("Answer")

	if c.state != StatePlaying {
		return 0, ErrNotPlaying
	}

	question := &c.game.Questions[c.question]
	valid := false
	for _, answer := range question.Answers {
		if answer.ID == trackID {
			valid = true
			break
		}
	}
	if !valid {
		return 0, ErrUnknownTrack
	}

	correct := trackID == question.TrackID
	earned := Points(c.elapsed(), correct)
	c.points = append(c.points, earned)
	c.state = StateIntersong

	log.Info(
		"Answer submitted",
		"question", c.question,
		"correct", correct,
		"points", earned,
	)
	return earned, nil
}

// Next leaves the inter-question pause: on to the next question, into
// Loading if its stems are still buffering, or Done past the last
// question. Done writes the played-game record.
func (c *Controller) Next() (State, error) {
	log := c.log.Function("Next")

	if c.state != StateIntersong {
		return c.state, ErrWrongState
	}

	c.question++
	if c.question >= len(c.game.Questions) {
		c.state = StateDone
		record := PlayedGameRecord{
			GameID:   c.game.ID,
			Date:     c.game.Date,
			Genre:    c.game.Genre,
			Points:   append([]int(nil), c.points...),
			Score:    c.Score(),
			PlayedAt: c.clock.Now(),
		}
		if err := c.history.RecordPlay(record); err != nil {
			log.Er("failed to record play", err, "gameID", c.game.ID)
		}
		log.Info("Game finished", "gameID", c.game.ID, "score", record.Score)
		return c.state, nil
	}

	if !c.loader.Ready(c.question) {
		c.state = StateLoading
		return c.state, nil
	}

	c.startQuestion()
	return c.state, nil
}

func (c *Controller) startQuestion() {
	c.state = StatePlaying
	c.questionStart = c.clock.Now()
	c.revealed = make(map[models.Stem]struct{})

	for _, stem := range RevealedStems(0) {
		c.revealed[stem] = struct{}{}
	}
}

func (c *Controller) elapsed() time.Duration {
	return c.clock.Now().Sub(c.questionStart)
}

// State returns the current lifecycle state without advancing it.
func (c *Controller) State() State {
	return c.state
}

// Question returns the index of the current question.
func (c *Controller) Question() int {
	return c.question
}

// CurrentQuestion returns the question being played, or nil outside an
// active session.
func (c *Controller) CurrentQuestion() *models.Question {
	if c.question >= len(c.game.Questions) {
		return nil
	}
	return &c.game.Questions[c.question]
}

// Revealed returns the stems audible right now. Once a stem reveals it
// stays in the set until the next question starts.
func (c *Controller) Revealed() []models.Stem {
	revealed := make([]models.Stem, 0, len(c.revealed))
	for _, stem := range models.Stems {
		if _, ok := c.revealed[stem]; ok {
			revealed = append(revealed, stem)
		}
	}
	return revealed
}

// Points returns the per-question scores so far.
func (c *Controller) Points() []int {
	return append([]int(nil), c.points...)
}

// Score is the running total.
func (c *Controller) Score() int {
	total := 0
	for _, p := range c.points {
		total += p
	}
	return total
}
