package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"multitunes/internal/models"
	"multitunes/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRadioCatalog struct {
	radios     []services.DeezerRadio
	tracklists map[string][]services.DeezerTrack
	chart      []services.DeezerTrack

	radiosErr    error
	emptyFirst   int
	fetchedURLs  []string
	chartFetches int
}

func (f *fakeRadioCatalog) Radios(ctx context.Context, genreID int) ([]services.DeezerRadio, error) {
	if f.radiosErr != nil {
		return nil, f.radiosErr
	}
	return f.radios, nil
}

func (f *fakeRadioCatalog) Tracklist(
	ctx context.Context,
	tracklistURL string,
) ([]services.DeezerTrack, error) {
	f.fetchedURLs = append(f.fetchedURLs, tracklistURL)
	if f.emptyFirst > 0 {
		f.emptyFirst--
		return nil, nil
	}
	tracks, ok := f.tracklists[tracklistURL]
	if !ok {
		return nil, errors.New("tracklist not found")
	}
	return tracks, nil
}

func (f *fakeRadioCatalog) GenreChart(
	ctx context.Context,
	genreID int,
) ([]services.DeezerTrack, error) {
	f.chartFetches++
	return f.chart, nil
}

func deezerTracks(from, to int64) []services.DeezerTrack {
	tracks := make([]services.DeezerTrack, 0, to-from+1)
	for id := from; id <= to; id++ {
		tracks = append(tracks, services.DeezerTrack{
			ID:     id,
			Title:  fmt.Sprintf("Track %d", id),
			Artist: services.DeezerArtist{ID: id, Name: fmt.Sprintf("Artist %d", id)},
		})
	}
	return tracks
}

func TestPlaylistGenerateShape(t *testing.T) {
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Rock Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 40),
		},
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 40)...), NewSeededRand(3))
	game, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	require.NoError(t, err)

	assert.Zero(t, game.ID, "fresh games are never persisted")
	require.Len(t, game.Questions, models.QuestionsPerGame)

	seen := make(map[int64]struct{})
	for _, question := range game.Questions {
		require.Len(t, question.Answers, models.AnswersPerQuestion)
		assert.Equal(t, question.TrackID, question.Answers[0].ID)

		// Ephemeral games carry the track inline so the client needs no
		// follow-up lookup.
		require.NotNil(t, question.Track)
		assert.NotEmpty(t, question.Track.Title)
		assert.NotEmpty(t, question.Track.Artist)

		for _, answer := range question.Answers {
			_, duplicate := seen[answer.ID]
			assert.False(t, duplicate, "track %d appears twice in game", answer.ID)
			seen[answer.ID] = struct{}{}
		}
	}

	assert.Zero(t, radio.chartFetches, "a full tracklist needs no chart top-up")
}

func TestPlaylistTopsUpThinTracklistFromChart(t *testing.T) {
	// The station yields exactly the five targets; every distractor has
	// to come from the chart.
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Tiny Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 5),
		},
		chart: deezerTracks(100, 160),
	}

	playlist := NewPlaylist(radio, newFakeCatalog(append(idRange(1, 5), idRange(100, 160)...)...), NewSeededRand(3))
	game, err := playlist.Generate(context.Background(), time.Now(), models.GenrePop)
	require.NoError(t, err)

	assert.Equal(t, 1, radio.chartFetches)
	require.Len(t, game.Questions, models.QuestionsPerGame)

	targets := make(map[int64]struct{})
	for _, question := range game.Questions {
		targets[question.TrackID] = struct{}{}
		require.Len(t, question.Answers, models.AnswersPerQuestion)
		for _, answer := range question.Answers[1:] {
			assert.GreaterOrEqual(t, answer.ID, int64(100),
				"distractors should come from the chart")
		}
	}
	assert.Len(t, targets, models.QuestionsPerGame)
}

func TestPlaylistInsufficientTracks(t *testing.T) {
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 30),
		},
	}

	// Only three of the station's tracks have prepared stems.
	playlist := NewPlaylist(radio, newFakeCatalog(1, 2, 3), NewSeededRand(3))
	_, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	assert.ErrorIs(t, err, ErrInsufficientTracks)
}

func TestPlaylistTopUpStillShort(t *testing.T) {
	// Eight station tracks plus a six-entry chart is nine distractor
	// candidates total, well under the pool floor.
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 8),
		},
		chart: deezerTracks(100, 105),
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 8)...), NewSeededRand(3))
	_, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	assert.ErrorIs(t, err, ErrInsufficientTracks)
}

func TestPlaylistTopUpAcceptsUnpreparedTracks(t *testing.T) {
	// Only the five targets carry stem audio; every distractor is a
	// known-but-unprepared chart track. Distractors are titles only, so
	// the game must still come together.
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 5),
		},
		chart: deezerTracks(100, 300),
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 5)...), NewSeededRand(3))
	game, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	require.NoError(t, err)

	require.Len(t, game.Questions, models.QuestionsPerGame)
	for _, question := range game.Questions {
		assert.LessOrEqual(t, question.TrackID, int64(5),
			"targets must have prepared stems")
		for _, answer := range question.Answers[1:] {
			assert.GreaterOrEqual(t, answer.ID, int64(100))
		}
	}
}

func TestPlaylistDeduplicatesTracklist(t *testing.T) {
	// Radio tracklists occasionally serve the same track twice.
	doubled := append(deezerTracks(1, 30), deezerTracks(1, 30)...)
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": doubled,
		},
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 30)...), NewSeededRand(3))
	game, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	require.NoError(t, err)

	seen := make(map[int64]int)
	for _, question := range game.Questions {
		for _, answer := range question.Answers {
			seen[answer.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "track %d appears %d times in one game", id, count)
	}
}

func TestPlaylistAllGenrePrefersRockAndPopStations(t *testing.T) {
	tracks := deezerTracks(1, 40)
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Smooth Jazz", Tracklist: "http://radio/jazz"},
			{ID: 2, Title: "Classic Rock", Tracklist: "http://radio/rock"},
			{ID: 3, Title: "Ambient Sleep", Tracklist: "http://radio/ambient"},
			{ID: 4, Title: "Pop Hits", Tracklist: "http://radio/pop"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/rock": tracks,
			"http://radio/pop":  tracks,
		},
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 40)...), NewSeededRand(3))
	_, err := playlist.Generate(context.Background(), time.Now(), models.GenreAll)
	require.NoError(t, err)

	require.Len(t, radio.fetchedURLs, 1)
	assert.Contains(t,
		[]string{"http://radio/rock", "http://radio/pop"},
		radio.fetchedURLs[0],
	)
}

func TestPlaylistRetriesEmptyTracklist(t *testing.T) {
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Rock Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 40),
		},
		emptyFirst: 2,
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 40)...), NewSeededRand(3))
	game, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	require.NoError(t, err)
	require.Len(t, game.Questions, models.QuestionsPerGame)
	assert.Len(t, radio.fetchedURLs, 3, "two empty polls then the real tracklist")
}

func TestPlaylistGivesUpAfterEmptyTracklists(t *testing.T) {
	radio := &fakeRadioCatalog{
		radios: []services.DeezerRadio{
			{ID: 1, Title: "Rock Station", Tracklist: "http://radio/1"},
		},
		tracklists: map[string][]services.DeezerTrack{
			"http://radio/1": deezerTracks(1, 40),
		},
		emptyFirst: tracklistAttempts,
	}

	playlist := NewPlaylist(radio, newFakeCatalog(idRange(1, 40)...), NewSeededRand(3))
	_, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestPlaylistUpstreamFailure(t *testing.T) {
	radio := &fakeRadioCatalog{radiosErr: errors.New("boom")}

	playlist := NewPlaylist(radio, newFakeCatalog(1, 2, 3), NewSeededRand(3))
	_, err := playlist.Generate(context.Background(), time.Now(), models.GenreRock)
	assert.ErrorIs(t, err, ErrUpstream)
}
