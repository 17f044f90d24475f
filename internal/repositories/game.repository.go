package repositories

import (
	"context"
	contextutil "multitunes/internal/context"
	"multitunes/internal/database"
	. "multitunes/internal/models"
	"multitunes/internal/utils"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type GameRepository interface {
	GetByID(ctx context.Context, id int) (*Game, error)
	GetByDateGenre(ctx context.Context, date time.Time, genre Genre) (*Game, error)
	GetInRange(ctx context.Context, genre Genre, start, end time.Time) ([]*Game, error)
	GetAvailable(ctx context.Context, now time.Time) ([]AvailableGame, error)
	GetPreviousGameID(ctx context.Context, gameID int) (*int, error)
	Create(ctx context.Context, game *Game) error
}

type gameRepository struct {
	db  database.DB
	log logger.Logger
}

func NewGameRepository(db database.DB) GameRepository {
	return &gameRepository{
		db:  db,
		log: logger.New("gameRepository"),
	}
}

func (g *gameRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return g.db.SQLWithContext(ctx)
}

func (g *gameRepository) GetByID(ctx context.Context, id int) (*Game, error) {
	log := g.log.Function("GetByID")

	var game Game
	err := g.getDB(ctx).
		Preload("Questions").
		Preload("Questions.Answers").
		Preload("Questions.Track").
		First(&game, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get game by ID", err, "id", id)
	}

	return &game, nil
}

func (g *gameRepository) GetByDateGenre(
	ctx context.Context,
	date time.Time,
	genre Genre,
) (*Game, error) {
	log := g.log.Function("GetByDateGenre")

	var game Game
	err := g.getDB(ctx).
		Preload("Questions").
		Preload("Questions.Answers").
		Preload("Questions.Track").
		Where("date = ? AND genre = ?", utils.GameDay(date), genre).
		First(&game).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get game by date and genre", err, "date", date, "genre", genre)
	}

	return &game, nil
}

func (g *gameRepository) GetInRange(
	ctx context.Context,
	genre Genre,
	start, end time.Time,
) ([]*Game, error) {
	log := g.log.Function("GetInRange")

	var games []*Game
	err := g.getDB(ctx).
		Preload("Questions").
		Preload("Questions.Answers").
		Where("genre = ? AND date BETWEEN ? AND ?", genre, utils.GameDay(start), utils.GameDay(end)).
		Order("date ASC").
		Find(&games).Error
	if err != nil {
		return nil, log.Err("failed to get games in range", err, "genre", genre)
	}

	return games, nil
}

func (g *gameRepository) GetAvailable(ctx context.Context, now time.Time) ([]AvailableGame, error) {
	log := g.log.Function("GetAvailable")

	var available []AvailableGame
	err := g.getDB(ctx).
		Model(&Game{}).
		Select("id", "date", "genre").
		Where("date <= ?", now).
		Order("date DESC").
		Find(&available).Error
	if err != nil {
		return nil, log.Err("failed to get available games", err)
	}

	return available, nil
}

func (g *gameRepository) GetPreviousGameID(ctx context.Context, gameID int) (*int, error) {
	log := g.log.Function("GetPreviousGameID")

	var previous PreviousGame
	err := g.getDB(ctx).First(&previous, "game_id = ?", gameID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to get previous game ID", err, "gameID", gameID)
	}

	return previous.PreviousGameID, nil
}

// Create persists the full Game/Question/Answer graph. Callers wanting
// atomicity run this inside TransactionService.Execute so the graph
// commits or rolls back as a whole.
func (g *gameRepository) Create(ctx context.Context, game *Game) error {
	log := g.log.Function("Create")

	game.Date = utils.GameDay(game.Date)
	if err := g.getDB(ctx).Create(game).Error; err != nil {
		return log.Err("failed to create game", err, "date", game.Date, "genre", game.Genre)
	}

	log.Info("Game created successfully", "gameID", game.ID, "date", game.Date, "genre", game.Genre)
	return nil
}
