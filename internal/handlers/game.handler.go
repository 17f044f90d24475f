package handlers

import (
	"errors"
	"strconv"
	"time"

	"multitunes/internal/app"
	gameController "multitunes/internal/controllers/game"
	"multitunes/internal/generator"
	"multitunes/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type GameHandler struct {
	Handler
	gameController gameController.GameControllerInterface
}

func NewGameHandler(app app.App, router fiber.Router) *GameHandler {
	log := logger.New("handlers").File("game_handler")
	return &GameHandler{
		gameController: app.Controllers.Game,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *GameHandler) Register() {
	games := h.router.Group("/game")

	games.Get("/available", h.getAvailableGames)
	games.Get("/daily/:genre?", h.getDailyGame)
	games.Post("/generate", h.middleware.RequireAdmin(), h.generateGame)
	games.Post("/fresh", h.generateFreshGame)
	games.Get("/:id", h.getGame)
}

func (h *GameHandler) getAvailableGames(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("getAvailableGames")

	games, err := h.gameController.GetAvailable(c.Context())
	if err != nil {
		_ = log.Err("Failed to retrieve available games", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve available games",
		})
	}

	return c.JSON(fiber.Map{
		"games": games,
	})
}

func (h *GameHandler) getDailyGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("getDailyGame")

	genre := models.GenreAll
	if genreParam := c.Params("genre"); genreParam != "" {
		parsed, err := strconv.Atoi(genreParam)
		if err != nil {
			log.Warn("Invalid genre", "genre", genreParam)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid genre",
			})
		}
		genre = models.Genre(parsed)
	}

	game, err := h.gameController.GetDaily(c.Context(), genre)
	if err != nil {
		return h.mapGameError(c, log, err, "Failed to retrieve daily game")
	}

	return c.JSON(fiber.Map{
		"game": game,
	})
}

func (h *GameHandler) getGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("getGame")

	idParam := c.Params("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		log.Warn("Invalid game ID", "id", idParam)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid game ID",
		})
	}

	game, err := h.gameController.GetByID(c.Context(), id)
	if err != nil {
		return h.mapGameError(c, log, err, "Failed to retrieve game")
	}

	return c.JSON(fiber.Map{
		"game": game,
	})
}

func (h *GameHandler) generateGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("generateGame")

	var req gameController.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		log.Warn("Invalid date", "date", req.Date)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	game, err := h.gameController.GenerateDaily(c.Context(), date, req.Genre)
	if err != nil {
		return h.mapGameError(c, log, err, "Failed to generate game")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"game": game,
	})
}

func (h *GameHandler) generateFreshGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("generateFreshGame")

	var req struct {
		Genre models.Genre `json:"genre"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	game, err := h.gameController.GenerateFresh(c.Context(), req.Genre)
	if err != nil {
		return h.mapGameError(c, log, err, "Failed to generate fresh game")
	}

	return c.JSON(fiber.Map{
		"game": game,
	})
}

func (h *GameHandler) mapGameError(
	c *fiber.Ctx,
	log logger.Logger,
	err error,
	fallback string,
) error {
	switch {
	case errors.Is(err, gameController.ErrGameNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Game not found",
		})
	case errors.Is(err, gameController.ErrInvalidGenre):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid genre",
		})
	case errors.Is(err, generator.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Game already exists for date and genre",
		})
	case errors.Is(err, generator.ErrInsufficientTracks):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Not enough eligible tracks",
		})
	case errors.Is(err, generator.ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Upstream catalog failure",
		})
	default:
		_ = log.Err(fallback, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
