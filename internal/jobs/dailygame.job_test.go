package jobs

import (
	"context"
	"testing"
	"time"

	"multitunes/internal/generator"
	"multitunes/internal/models"
	"multitunes/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	existing map[models.Genre]bool
	failing  map[models.Genre]error
	calls    []models.Genre
	nextID   int
}

func (f *fakeGenerator) Generate(
	ctx context.Context,
	date time.Time,
	genre models.Genre,
) (*models.Game, error) {
	f.calls = append(f.calls, genre)

	if f.existing[genre] {
		return nil, generator.ErrAlreadyExists
	}
	if err := f.failing[genre]; err != nil {
		return nil, err
	}

	f.nextID++
	return &models.Game{ID: f.nextID, Date: date, Genre: genre}, nil
}

type fakePublisher struct {
	generated []string
	failed    []string
}

func (f *fakePublisher) PublishGameGenerated(gameID int, date time.Time, genre string) error {
	f.generated = append(f.generated, genre)
	return nil
}

func (f *fakePublisher) PublishGameFailed(date time.Time, genre string, reason string) error {
	f.failed = append(f.failed, genre)
	return nil
}

func TestDailyGameJobName(t *testing.T) {
	job := NewDailyGameJob(&fakeGenerator{}, &fakePublisher{})
	assert.Equal(t, "DailyGameGeneration", job.Name())
	assert.Equal(t, services.Daily, job.Schedule())
}

func TestDailyGameJobGeneratesAllGenres(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{}
	job := NewDailyGameJob(gen, pub)

	err := job.Execute(context.Background())
	require.NoError(t, err)

	assert.Len(t, gen.calls, len(models.Genres))
	assert.Len(t, pub.generated, len(models.Genres))
	assert.Empty(t, pub.failed)
}

func TestDailyGameJobTargetsTomorrow(t *testing.T) {
	gen := &fakeGenerator{}
	job := NewDailyGameJob(gen, &fakePublisher{})
	job.now = func() time.Time {
		return time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	}

	var generatedFor time.Time
	job.generator = generateFunc(func(ctx context.Context, date time.Time, genre models.Genre) (*models.Game, error) {
		generatedFor = date
		return &models.Game{ID: 1, Date: date, Genre: genre}, nil
	})

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, "2026-03-15", generatedFor.Format(time.DateOnly))
}

func TestDailyGameJobSkipsExistingGames(t *testing.T) {
	gen := &fakeGenerator{
		existing: map[models.Genre]bool{models.GenreRock: true, models.GenrePop: true},
	}
	pub := &fakePublisher{}
	job := NewDailyGameJob(gen, pub)

	err := job.Execute(context.Background())
	require.NoError(t, err)

	assert.Len(t, pub.generated, len(models.Genres)-2)
	assert.Empty(t, pub.failed)
}

func TestDailyGameJobContinuesPastFailures(t *testing.T) {
	gen := &fakeGenerator{
		failing: map[models.Genre]error{models.GenreFolk: generator.ErrInsufficientTracks},
	}
	pub := &fakePublisher{}
	job := NewDailyGameJob(gen, pub)

	err := job.Execute(context.Background())
	assert.Error(t, err)

	// Every genre was still attempted.
	assert.Len(t, gen.calls, len(models.Genres))
	assert.Equal(t, []string{models.GenreFolk.String()}, pub.failed)
	assert.Len(t, pub.generated, len(models.Genres)-1)
}

type generateFunc func(ctx context.Context, date time.Time, genre models.Genre) (*models.Game, error)

func (f generateFunc) Generate(
	ctx context.Context,
	date time.Time,
	genre models.Genre,
) (*models.Game, error) {
	return f(ctx, date, genre)
}
