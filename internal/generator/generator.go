package generator

import (
	"context"
	"errors"
	"sort"
	"time"

	"multitunes/internal/models"
	"multitunes/internal/repositories"
	"multitunes/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyExists guards generation idempotency: a game for the
	// requested (date, genre) is already persisted.
	ErrAlreadyExists = errors.New("game already exists for date and genre")

	// ErrInsufficientTracks means the eligible candidate pool cannot
	// fill five questions with five distinct answers each. Generation
	// fails outright rather than truncating the game.
	ErrInsufficientTracks = errors.New("not enough eligible tracks")

	// ErrUpstream wraps failures of the external catalog provider.
	ErrUpstream = errors.New("upstream catalog failure")
)

// Generator produces a Game for a date and genre. Two strategies
// implement it: Daily (persisted, with historical repeat avoidance) and
// Playlist (ephemeral, radio-sourced with pool top-up).
type Generator interface {
	Generate(ctx context.Context, date time.Time, genre models.Genre) (*models.Game, error)
}

// PreparedCatalog is the slice of the stem catalog the generators need.
type PreparedCatalog interface {
	TrackIDs(ctx context.Context) (map[int64]struct{}, error)
}

// Transactor runs a function within an atomic persistence scope.
type Transactor interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
}

// Daily builds the persisted calendar game. Track ids that appeared as
// any answer of a same-genre game within the ±5 day window are excluded
// from both the target and the distractor pools, so a recently featured
// song cannot resurface in either role.
type Daily struct {
	gameRepo  repositories.GameRepository
	trackRepo repositories.TrackRepository
	catalog   PreparedCatalog
	tx        Transactor
	rand      Rand
	log       logger.Logger
}

func NewDaily(
	gameRepo repositories.GameRepository,
	trackRepo repositories.TrackRepository,
	catalog PreparedCatalog,
	tx Transactor,
	rand Rand,
) *Daily {
	return &Daily{
		gameRepo:  gameRepo,
		trackRepo: trackRepo,
		catalog:   catalog,
		tx:        tx,
		rand:      rand,
		log:       logger.New("generator").File("daily"),
	}
}

func (d *Daily) Generate(
	ctx context.Context,
	date time.Time,
	genre models.Genre,
) (*models.Game, error) {
	log := d.log.Function("Generate")
	day := utils.GameDay(date)

	if _, err := d.gameRepo.GetByDateGenre(ctx, day, genre); err == nil {
		return nil, ErrAlreadyExists
	} else if err != gorm.ErrRecordNotFound {
		return nil, log.Err("failed to check for existing game", err, "date", day, "genre", genre)
	}

	forbidden, err := d.forbiddenIDs(ctx, day, genre)
	if err != nil {
		return nil, err
	}

	pool, err := d.candidatePool(ctx, forbidden)
	if err != nil {
		return nil, err
	}

	needed := models.QuestionsPerGame * models.AnswersPerQuestion
	if len(pool) < needed {
		log.Warn(
			"Candidate pool too small",
			"poolSize", len(pool),
			"needed", needed,
			"date", day,
			"genre", genre,
		)
		return nil, ErrInsufficientTracks
	}

	Shuffle(d.rand, pool)

	game, err := d.assemble(ctx, day, genre, pool)
	if err != nil {
		return nil, err
	}

	err = d.tx.Execute(ctx, func(txCtx context.Context) error {
		return d.gameRepo.Create(txCtx, game)
	})
	if err != nil {
		return nil, err
	}

	log.Info("Daily game generated", "gameID", game.ID, "date", day, "genre", genre)
	return game, nil
}

// forbiddenIDs collects every track id that appeared as an answer in a
// same-genre game inside the repeat window around day.
func (d *Daily) forbiddenIDs(
	ctx context.Context,
	day time.Time,
	genre models.Genre,
) (map[int64]struct{}, error) {
	start, end := utils.DayWindow(day, models.RepeatWindowDays)

	games, err := d.gameRepo.GetInRange(ctx, genre, start, end)
	if err != nil {
		return nil, err
	}

	forbidden := make(map[int64]struct{})
	for _, game := range games {
		for _, question := range game.Questions {
			for _, answer := range question.Answers {
				forbidden[answer.ID] = struct{}{}
			}
		}
	}

	return forbidden, nil
}

// candidatePool intersects catalog rows with prepared stem audio and
// removes the forbidden window. Sorted before shuffling so a seeded
// source yields reproducible games.
func (d *Daily) candidatePool(
	ctx context.Context,
	forbidden map[int64]struct{},
) ([]int64, error) {
	prepared, err := d.catalog.TrackIDs(ctx)
	if err != nil {
		return nil, err
	}

	known, err := d.trackRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]int64, 0, len(known))
	for _, id := range known {
		if _, ok := prepared[id]; !ok {
			continue
		}
		if _, ok := forbidden[id]; ok {
			continue
		}
		pool = append(pool, id)
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })
	return pool, nil
}

func (d *Daily) assemble(
	ctx context.Context,
	day time.Time,
	genre models.Genre,
	pool []int64,
) (*models.Game, error) {
	log := d.log.Function("assemble")

	needed := models.QuestionsPerGame * models.AnswersPerQuestion
	used := pool[:needed]

	tracks, err := d.trackRepo.GetByIDs(ctx, used)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.Track, len(tracks))
	for _, track := range tracks {
		byID[track.ID] = track
	}
	for _, id := range used {
		if _, ok := byID[id]; !ok {
			return nil, log.Error("catalog lists a track missing from the store", "trackID", id)
		}
	}

	game := &models.Game{Date: day, Genre: genre}

	// pool[0:5] are the targets; distractors are consumed sequentially
	// after them, so no id repeats anywhere in the game. The correct
	// answer is first; the client shuffles answer order for display.
	distractors := pool[models.QuestionsPerGame:]
	for i := 0; i < models.QuestionsPerGame; i++ {
		target := byID[pool[i]]

		question := models.Question{
			TrackID: target.ID,
			Answers: []models.Answer{{ID: target.ID, Title: target.Title}},
		}

		for j := 0; j < models.AnswersPerQuestion-1; j++ {
			distractor := byID[distractors[i*(models.AnswersPerQuestion-1)+j]]
			question.Answers = append(question.Answers, models.Answer{
				ID:    distractor.ID,
				Title: distractor.Title,
			})
		}

		game.Questions = append(game.Questions, question)
	}

	return game, nil
}
