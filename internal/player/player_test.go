package player

import (
	"testing"
	"time"

	"multitunes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadiness struct {
	ready map[int]bool
}

func (f *fakeReadiness) Ready(question int) bool {
	return f.ready[question]
}

func allReady(questions int) *fakeReadiness {
	f := &fakeReadiness{ready: make(map[int]bool)}
	for i := 0; i < questions; i++ {
		f.ready[i] = true
	}
	return f
}

type memoryHistory struct {
	records []PlayedGameRecord
}

func (m *memoryHistory) HasPlayed(game *models.Game) (*PlayedGameRecord, bool) {
	for i := range m.records {
		if matches(m.records[i], game) {
			return &m.records[i], true
		}
	}
	return nil, false
}

func (m *memoryHistory) RecordPlay(record PlayedGameRecord) error {
	m.records = append([]PlayedGameRecord{record}, m.records...)
	return nil
}

func testGame() *models.Game {
	game := &models.Game{
		ID:    7,
		Date:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Genre: models.GenreRock,
	}

	for q := 0; q < models.QuestionsPerGame; q++ {
		target := int64(q*10 + 1)
		question := models.Question{TrackID: target}
		for a := 0; a < models.AnswersPerQuestion; a++ {
			question.Answers = append(question.Answers, models.Answer{
				ID:    int64(q*10 + 1 + a),
				Title: "answer",
			})
		}
		game.Questions = append(game.Questions, question)
	}

	return game
}

func newTestController(game *models.Game) (*Controller, *MockClock, *memoryHistory) {
	clock := &MockClock{MockTime: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	history := &memoryHistory{}
	controller := NewController(game, allReady(len(game.Questions)), history, clock)
	return controller, clock, history
}

func TestControllerHappyPath(t *testing.T) {
	game := testGame()
	controller, clock, history := newTestController(game)

	assert.Equal(t, StateLoading, controller.Begin())
	assert.Equal(t, StateReady, controller.Tick())
	require.NoError(t, controller.Start())
	assert.Equal(t, StatePlaying, controller.State())

	for q := 0; q < len(game.Questions); q++ {
		clock.Advance(3 * time.Second)
		controller.Tick()

		points, err := controller.Answer(game.Questions[q].TrackID)
		require.NoError(t, err)
		assert.Equal(t, 8, points, "fast correct answer scores full points")

		state, err := controller.Next()
		require.NoError(t, err)
		if q == len(game.Questions)-1 {
			assert.Equal(t, StateDone, state)
		} else {
			assert.Equal(t, StatePlaying, state)
		}
	}

	assert.Equal(t, 40, controller.Score())
	require.Len(t, history.records, 1)
	assert.Equal(t, game.ID, history.records[0].GameID)
	assert.Equal(t, 40, history.records[0].Score)
	assert.Equal(t, []int{8, 8, 8, 8, 8}, history.records[0].Points)
}

func TestControllerRevealIsMonotonicWithinQuestion(t *testing.T) {
	controller, clock, _ := newTestController(testGame())
	controller.Begin()
	controller.Tick()
	require.NoError(t, controller.Start())

	previous := 0
	for i := 0; i < 250; i++ {
		clock.Advance(100 * time.Millisecond)
		controller.Tick()
		if controller.State() != StatePlaying {
			break
		}

		count := len(controller.Revealed())
		assert.GreaterOrEqual(t, count, previous, "a revealed stem un-revealed")
		previous = count
	}

	assert.Len(t, controller.Revealed(), len(models.Stems))
}

func TestControllerRevealResetsBetweenQuestions(t *testing.T) {
	game := testGame()
	controller, clock, _ := newTestController(game)
	controller.Begin()
	controller.Tick()
	require.NoError(t, controller.Start())

	clock.Advance(12 * time.Second)
	controller.Tick()
	assert.Len(t, controller.Revealed(), 4) // piano, other, bass, drums

	_, err := controller.Answer(game.Questions[0].TrackID)
	require.NoError(t, err)
	_, err = controller.Next()
	require.NoError(t, err)

	controller.Tick()
	assert.ElementsMatch(t,
		[]models.Stem{models.StemPiano, models.StemOther},
		controller.Revealed(),
	)
}

func TestControllerScoringByRevealDepth(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		correct bool
		want    int
	}{
		{"before bass", 2 * time.Second, true, 8},
		{"bass revealed", 6 * time.Second, true, 7},
		{"drums revealed", 11 * time.Second, true, 6},
		{"guitar revealed", 17 * time.Second, true, 5},
		{"vocals revealed", 22 * time.Second, true, 4},
		{"wrong answer", 2 * time.Second, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := testGame()
			controller, clock, _ := newTestController(game)
			controller.Begin()
			controller.Tick()
			require.NoError(t, controller.Start())

			clock.Advance(tt.advance)
			controller.Tick()

			answerID := game.Questions[0].TrackID
			if !tt.correct {
				answerID = game.Questions[0].Answers[1].ID
			}

			points, err := controller.Answer(answerID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, points)
		})
	}
}

func TestControllerTimeoutSubmitsZero(t *testing.T) {
	game := testGame()
	controller, clock, _ := newTestController(game)
	controller.Begin()
	controller.Tick()
	require.NoError(t, controller.Start())

	clock.Advance(QuestionTimeout)
	assert.Equal(t, StateIntersong, controller.Tick())
	assert.Equal(t, []int{0}, controller.Points())

	// The question is over; a late answer is rejected.
	_, err := controller.Answer(game.Questions[0].TrackID)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestControllerRejectsAnswerOutsideChoices(t *testing.T) {
	game := testGame()
	controller, _, _ := newTestController(game)
	controller.Begin()
	controller.Tick()
	require.NoError(t, controller.Start())

	_, err := controller.Answer(999999)
	assert.ErrorIs(t, err, ErrUnknownTrack)
	assert.Equal(t, StatePlaying, controller.State(), "rejected answer does not advance")
}

func TestControllerAlreadyPlayedGuard(t *testing.T) {
	game := testGame()
	controller, _, history := newTestController(game)

	history.records = []PlayedGameRecord{{
		GameID: game.ID,
		Date:   game.Date,
		Genre:  game.Genre,
		Score:  31,
	}}

	assert.Equal(t, StateAlreadyPlayed, controller.Begin())

	// Terminal: nothing moves it.
	assert.Equal(t, StateAlreadyPlayed, controller.Tick())
	assert.ErrorIs(t, controller.Start(), ErrWrongState)
}

func TestControllerAlreadyPlayedMatchesDateAndGenre(t *testing.T) {
	game := testGame()
	controller, _, history := newTestController(game)

	// Same slot, different id: the game was regenerated server side.
	history.records = []PlayedGameRecord{{
		GameID: game.ID + 100,
		Date:   game.Date,
		Genre:  game.Genre,
	}}

	assert.Equal(t, StateAlreadyPlayed, controller.Begin())
}

func TestControllerEphemeralGameSkipsGuard(t *testing.T) {
	game := testGame()
	game.ID = 0 // fresh playlist game

	controller, _, history := newTestController(game)
	history.records = []PlayedGameRecord{{
		GameID: 42,
		Date:   game.Date,
		Genre:  game.Genre,
	}}

	assert.Equal(t, StateLoading, controller.Begin())
}

func TestControllerWaitsForSlowLoader(t *testing.T) {
	game := testGame()
	clock := &MockClock{MockTime: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	readiness := &fakeReadiness{ready: map[int]bool{0: true}}
	controller := NewController(game, readiness, &memoryHistory{}, clock)

	controller.Begin()
	controller.Tick()
	require.NoError(t, controller.Start())

	_, err := controller.Answer(game.Questions[0].TrackID)
	require.NoError(t, err)

	// Question 1 is still buffering: Next parks in Loading.
	state, err := controller.Next()
	require.NoError(t, err)
	assert.Equal(t, StateLoading, state)
	assert.Equal(t, StateLoading, controller.Tick())

	// Buffering finishes; play resumes without an explicit Start.
	readiness.ready[1] = true
	assert.Equal(t, StatePlaying, controller.Tick())
	assert.Equal(t, 1, controller.Question())
}
