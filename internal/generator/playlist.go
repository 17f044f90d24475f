package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"multitunes/internal/models"
	"multitunes/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
)

const (
	// radioPickLimit caps how deep into the radio listing a random pick
	// goes, keeping fresh games on the provider's featured stations.
	radioPickLimit = 10

	// minDistractorPool is the floor for the wrong-answer pool. A thin
	// tracklist is topped up from the genre chart before assembly.
	minDistractorPool = 20

	// tracklistAttempts bounds the re-poll loop; radio tracklists are
	// occasionally served empty and come back on the next request.
	tracklistAttempts = 3
)

// RadioCatalog is the slice of the external provider the playlist
// generator needs. DeezerService satisfies it.
type RadioCatalog interface {
	Radios(ctx context.Context, genreID int) ([]services.DeezerRadio, error)
	Tracklist(ctx context.Context, tracklistURL string) ([]services.DeezerTrack, error)
	GenreChart(ctx context.Context, genreID int) ([]services.DeezerTrack, error)
}

// Playlist builds an ephemeral game from a randomly picked radio
// station. Nothing is persisted: the game carries its full track
// metadata inline and is discarded once played.
type Playlist struct {
	radio   RadioCatalog
	catalog PreparedCatalog
	rand    Rand
	log     logger.Logger
}

func NewPlaylist(radio RadioCatalog, catalog PreparedCatalog, rand Rand) *Playlist {
	return &Playlist{
		radio:   radio,
		catalog: catalog,
		rand:    rand,
		log:     logger.New("generator").File("playlist"),
	}
}

func (p *Playlist) Generate(
	ctx context.Context,
	date time.Time,
	genre models.Genre,
) (*models.Game, error) {
	log := p.log.Function("Generate")

	prepared, err := p.catalog.TrackIDs(ctx)
	if err != nil {
		return nil, err
	}

	station, err := p.pickRadio(ctx, genre)
	if err != nil {
		return nil, err
	}

	tracks, err := p.fetchTracklist(ctx, station)
	if err != nil {
		return nil, err
	}

	// Radio tracklists can serve the same track twice; one id must not
	// surface twice in a game.
	playable := dedupeByID(filterPrepared(tracks, prepared))
	Shuffle(p.rand, playable)

	if len(playable) < models.QuestionsPerGame {
		log.Warn(
			"Radio tracklist has too few prepared tracks",
			"radio", station.Title,
			"prepared", len(playable),
		)
		return nil, ErrInsufficientTracks
	}

	targets := playable[:models.QuestionsPerGame]
	pool := playable[models.QuestionsPerGame:]

	pool, err = p.topUpPool(ctx, genre, pool, targets)
	if err != nil {
		return nil, err
	}

	game := p.assemble(date, genre, targets, pool)
	log.Info("Fresh game generated", "radio", station.Title, "genre", genre)
	return game, nil
}

// fetchTracklist re-polls the station until it returns tracks or the
// attempts run out.
func (p *Playlist) fetchTracklist(
	ctx context.Context,
	station *services.DeezerRadio,
) ([]services.DeezerTrack, error) {
	log := p.log.Function("fetchTracklist")

	var lastErr error
	for attempt := 1; attempt <= tracklistAttempts; attempt++ {
		tracks, err := p.radio.Tracklist(ctx, station.Tracklist)
		if err != nil {
			lastErr = err
			log.Warn("Tracklist fetch failed", "radio", station.Title, "attempt", attempt, "error", err)
			continue
		}
		if len(tracks) > 0 {
			return tracks, nil
		}
		log.Warn("Tracklist came back empty", "radio", station.Title, "attempt", attempt)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, lastErr)
	}
	return nil, log.ErrorWithType(ErrUpstream, "tracklist empty after retries", "radio", station.Title)
}

// pickRadio chooses a random station from the head of the provider's
// listing. The global radio list is noisy, so for the all-genres game
// it is narrowed to rock and pop stations first.
func (p *Playlist) pickRadio(ctx context.Context, genre models.Genre) (*services.DeezerRadio, error) {
	log := p.log.Function("pickRadio")

	radios, err := p.radio.Radios(ctx, int(genre))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if genre == models.GenreAll {
		filtered := make([]services.DeezerRadio, 0, len(radios))
		for _, radio := range radios {
			title := strings.ToLower(radio.Title)
			if strings.Contains(title, "rock") || strings.Contains(title, "pop") {
				filtered = append(filtered, radio)
			}
		}
		if len(filtered) > 0 {
			radios = filtered
		}
	}

	if len(radios) == 0 {
		return nil, log.ErrorWithType(ErrUpstream, "provider returned no radios", "genre", genre)
	}

	limit := len(radios)
	if limit > radioPickLimit {
		limit = radioPickLimit
	}

	return &radios[p.rand.Intn(limit)], nil
}

// topUpPool pads a thin distractor pool from the genre chart.
// Distractors are rendered as titles only and never play audio, so
// chart tracks qualify whether or not their stems are prepared. Tracks
// already serving as a target or already in the pool are skipped.
func (p *Playlist) topUpPool(
	ctx context.Context,
	genre models.Genre,
	pool []services.DeezerTrack,
	targets []services.DeezerTrack,
) ([]services.DeezerTrack, error) {
	if len(pool) >= minDistractorPool {
		return pool, nil
	}

	log := p.log.Function("topUpPool")
	log.Debug("Topping up distractor pool from chart", "poolSize", len(pool), "genre", genre)

	chart, err := p.radio.GenreChart(ctx, int(genre))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	seen := make(map[int64]struct{}, len(pool)+len(targets))
	for _, track := range targets {
		seen[track.ID] = struct{}{}
	}
	for _, track := range pool {
		seen[track.ID] = struct{}{}
	}

	extra := make([]services.DeezerTrack, 0, len(chart))
	for _, track := range chart {
		if _, ok := seen[track.ID]; ok {
			continue
		}
		seen[track.ID] = struct{}{}
		extra = append(extra, track)
	}

	Shuffle(p.rand, extra)
	pool = append(pool, extra...)

	if len(pool) < models.QuestionsPerGame*(models.AnswersPerQuestion-1) {
		log.Warn("Distractor pool still too small after top-up", "poolSize", len(pool))
		return nil, ErrInsufficientTracks
	}

	return pool, nil
}

// assemble builds the in-memory game graph. Distractors are consumed
// sequentially from the pool, so no track id repeats within the game.
func (p *Playlist) assemble(
	date time.Time,
	genre models.Genre,
	targets []services.DeezerTrack,
	pool []services.DeezerTrack,
) *models.Game {
	game := &models.Game{Date: date, Genre: genre}

	poolIndex := 0
	for _, target := range targets {
		track := trackFromDeezer(target)

		question := models.Question{
			TrackID: track.ID,
			Track:   track,
			Answers: []models.Answer{{ID: track.ID, Title: track.Title}},
		}

		for j := 0; j < models.AnswersPerQuestion-1; j++ {
			distractor := pool[poolIndex]
			poolIndex++
			question.Answers = append(question.Answers, models.Answer{
				ID:    distractor.ID,
				Title: distractor.Title,
			})
		}

		game.Questions = append(game.Questions, question)
	}

	return game
}

func filterPrepared(
	tracks []services.DeezerTrack,
	prepared map[int64]struct{},
) []services.DeezerTrack {
	filtered := make([]services.DeezerTrack, 0, len(tracks))
	for _, track := range tracks {
		if _, ok := prepared[track.ID]; ok {
			filtered = append(filtered, track)
		}
	}
	return filtered
}

// dedupeByID keeps the first occurrence of each track id.
func dedupeByID(tracks []services.DeezerTrack) []services.DeezerTrack {
	seen := make(map[int64]struct{}, len(tracks))
	unique := make([]services.DeezerTrack, 0, len(tracks))
	for _, track := range tracks {
		if _, ok := seen[track.ID]; ok {
			continue
		}
		seen[track.ID] = struct{}{}
		unique = append(unique, track)
	}
	return unique
}

// trackFromDeezer converts provider metadata into the local track shape
// so ephemeral games serialize the same way persisted ones do.
func trackFromDeezer(dt services.DeezerTrack) *models.Track {
	track := &models.Track{
		ID:     dt.ID,
		Title:  dt.Title,
		Artist: dt.Artist.Name,
	}

	if dt.Preview != "" {
		preview := dt.Preview
		track.Preview = &preview
	}
	if dt.Album.CoverBig != "" {
		cover := dt.Album.CoverBig
		track.Cover = &cover
	}
	if dt.BPM != 0 {
		bpm := decimal.NewFromFloat(dt.BPM)
		track.BPM = &bpm
	}
	if dt.Gain != 0 {
		gain := decimal.NewFromFloat(dt.Gain)
		track.Gain = &gain
	}

	return track
}
