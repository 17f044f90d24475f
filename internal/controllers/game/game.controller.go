package gameController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"multitunes/config"
	"multitunes/internal/catalog"
	"multitunes/internal/database"
	"multitunes/internal/events"
	"multitunes/internal/generator"
	. "multitunes/internal/models"
	"multitunes/internal/repositories"
	"multitunes/internal/services"
	"multitunes/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidGenre = errors.New("invalid genre")
)

const dailyCacheTTL = 15 * time.Minute

// GameResponse is the full game payload plus the previous-game link the
// client uses to offer "play the one you missed".
type GameResponse struct {
	*Game
	PreviousGameID *int `json:"previousGameId,omitempty"`
}

type GenerateRequest struct {
	Date  string `json:"date"  validate:"required"`
	Genre Genre  `json:"genre"`
}

type GameControllerInterface interface {
	GetAvailable(ctx context.Context) ([]AvailableGame, error)
	GetDaily(ctx context.Context, genre Genre) (*GameResponse, error)
	GetByID(ctx context.Context, id int) (*GameResponse, error)
	GenerateDaily(ctx context.Context, date time.Time, genre Genre) (*Game, error)
	GenerateFresh(ctx context.Context, genre Genre) (*Game, error)
}

type GameController struct {
	gameRepo repositories.GameRepository
	daily    generator.Generator
	playlist generator.Generator
	eventBus *events.EventBus
	db       database.DB
	Config   config.Config
	now      func() time.Time
	log      logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	prepared *catalog.Prepared,
	config config.Config,
	db database.DB,
) GameControllerInterface {
	rand := generator.NewRand()

	return &GameController{
		gameRepo: repos.Game,
		daily: generator.NewDaily(
			repos.Game,
			repos.Track,
			prepared,
			services.Transaction,
			rand,
		),
		playlist: generator.NewPlaylist(services.Deezer, prepared, rand),
		eventBus: eventBus,
		db:       db,
		Config:   config,
		now:      time.Now,
		log:      logger.New("gameController"),
	}
}

func (c *GameController) GetAvailable(ctx context.Context) ([]AvailableGame, error) {
	log := c.log.Function("GetAvailable")

	available, err := c.gameRepo.GetAvailable(ctx, c.now().UTC())
	if err != nil {
		return nil, log.Err("failed to get available games", err)
	}

	return available, nil
}

func (c *GameController) GetDaily(ctx context.Context, genre Genre) (*GameResponse, error) {
	log := c.log.Function("GetDaily")

	if !genre.Valid() {
		return nil, ErrInvalidGenre
	}

	day := utils.GameDay(c.now())
	cacheKey := dailyCacheKey(day, genre)

	var cached GameResponse
	found, err := database.NewCacheBuilder(c.db.Caches.Games, cacheKey).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("Daily game cache read failed", "error", err, "key", cacheKey)
	}
	if found {
		return &cached, nil
	}

	game, err := c.gameRepo.GetByDateGenre(ctx, day, genre)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrGameNotFound
		}
		return nil, log.Err("failed to get daily game", err, "date", day, "genre", genre)
	}

	response, err := c.withPreviousGame(ctx, game)
	if err != nil {
		return nil, err
	}

	if err := database.NewCacheBuilder(c.db.Caches.Games, cacheKey).
		WithContext(ctx).
		WithStruct(response).
		WithTTL(dailyCacheTTL).
		Set(); err != nil {
		log.Warn("Daily game cache write failed", "error", err, "key", cacheKey)
	}

	return response, nil
}

func (c *GameController) GetByID(ctx context.Context, id int) (*GameResponse, error) {
	log := c.log.Function("GetByID")

	game, err := c.gameRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrGameNotFound
		}
		return nil, log.Err("failed to get game", err, "id", id)
	}

	return c.withPreviousGame(ctx, game)
}

func (c *GameController) GenerateDaily(
	ctx context.Context,
	date time.Time,
	genre Genre,
) (*Game, error) {
	log := c.log.Function("GenerateDaily")

	if !genre.Valid() {
		return nil, ErrInvalidGenre
	}

	game, err := c.daily.Generate(ctx, date, genre)
	if err != nil {
		return nil, err
	}

	if err := c.eventBus.PublishGameGenerated(game.ID, game.Date, genre.String()); err != nil {
		log.Er("failed to publish generation event", err, "gameID", game.ID)
	}

	// Drop any stale cache entry for the slot.
	if err := database.NewCacheBuilder(c.db.Caches.Games, dailyCacheKey(game.Date, genre)).
		WithContext(ctx).
		Delete(); err != nil {
		log.Warn("Failed to invalidate daily game cache", "error", err, "gameID", game.ID)
	}

	return game, nil
}

func (c *GameController) GenerateFresh(ctx context.Context, genre Genre) (*Game, error) {
	if !genre.Valid() {
		return nil, ErrInvalidGenre
	}

	return c.playlist.Generate(ctx, c.now().UTC(), genre)
}

func (c *GameController) withPreviousGame(
	ctx context.Context,
	game *Game,
) (*GameResponse, error) {
	log := c.log.Function("withPreviousGame")

	previousID, err := c.gameRepo.GetPreviousGameID(ctx, game.ID)
	if err != nil {
		// The link is a convenience; serve the game without it.
		log.Warn("Failed to resolve previous game", "error", err, "gameID", game.ID)
		previousID = nil
	}

	return &GameResponse{Game: game, PreviousGameID: previousID}, nil
}

func dailyCacheKey(day time.Time, genre Genre) string {
	return fmt.Sprintf("daily:%s:%d", day.Format(time.DateOnly), genre)
}
