package jobs

import (
	"context"
	"errors"
	"time"

	"multitunes/internal/events"
	"multitunes/internal/generator"
	"multitunes/internal/models"
	"multitunes/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type EventPublisher interface {
	PublishGameGenerated(gameID int, date time.Time, genre string) error
	PublishGameFailed(date time.Time, genre string, reason string) error
}

// DailyGameJob pre-generates tomorrow's game for every genre so players
// never hit an empty calendar slot. Genres that already have a game are
// skipped; genres without enough eligible tracks fail individually
// without aborting the rest of the run.
type DailyGameJob struct {
	generator generator.Generator
	eventBus  EventPublisher
	now       func() time.Time
	log       logger.Logger
}

func NewDailyGameJob(gen generator.Generator, eventBus EventPublisher) *DailyGameJob {
	return &DailyGameJob{
		generator: gen,
		eventBus:  eventBus,
		now:       time.Now,
		log:       logger.New("DailyGameJob"),
	}
}

func (j *DailyGameJob) Name() string {
	return "DailyGameGeneration"
}

func (j *DailyGameJob) Schedule() services.Schedule {
	return services.Daily
}

func (j *DailyGameJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	target := j.now().UTC().AddDate(0, 0, 1)
	log.Info("Generating daily games", "date", target.Format(time.DateOnly))

	var failures int
	for _, genre := range models.Genres {
		game, err := j.generator.Generate(ctx, target, genre)
		if err != nil {
			if errors.Is(err, generator.ErrAlreadyExists) {
				log.Debug("Game already exists, skipping", "genre", genre)
				continue
			}

			failures++
			log.Er("failed to generate game", err, "genre", genre)
			if pubErr := j.eventBus.PublishGameFailed(target, genre.String(), err.Error()); pubErr != nil {
				log.Er("failed to publish failure event", pubErr, "genre", genre)
			}
			continue
		}

		if err := j.eventBus.PublishGameGenerated(game.ID, game.Date, genre.String()); err != nil {
			log.Er("failed to publish generation event", err, "genre", genre)
		}
	}

	if failures > 0 {
		return log.Error("daily game generation had failures", "failures", failures)
	}

	log.Info("Daily game generation complete", "genres", len(models.Genres))
	return nil
}

var _ services.Job = (*DailyGameJob)(nil)
var _ EventPublisher = (*events.EventBus)(nil)
