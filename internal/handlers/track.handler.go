package handlers

import (
	"errors"
	"strconv"

	"multitunes/internal/app"
	trackController "multitunes/internal/controllers/tracks"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type TrackHandler struct {
	Handler
	trackController trackController.TrackControllerInterface
}

func NewTrackHandler(app app.App, router fiber.Router) *TrackHandler {
	log := logger.New("handlers").File("track_handler")
	return &TrackHandler{
		trackController: app.Controllers.Track,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TrackHandler) Register() {
	tracks := h.router.Group("/tracks")

	tracks.Post("", h.middleware.RequireAdmin(), h.ingestTracks)
	tracks.Get("/:id", h.getTrack)
}

func (h *TrackHandler) getTrack(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("track_handler").Function("getTrack")

	idParam := c.Params("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		log.Warn("Invalid track ID", "id", idParam)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid track ID",
		})
	}

	track, err := h.trackController.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, trackController.ErrTrackNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Track not found",
			})
		}
		_ = log.Err("Failed to retrieve track", err, "id", id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve track",
		})
	}

	return c.JSON(fiber.Map{
		"track": track,
	})
}

// ingestTracks accepts either a single track object or an array of them.
func (h *TrackHandler) ingestTracks(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("track_handler").Function("ingestTracks")

	var batch []*trackController.IngestTrackRequest
	if err := c.BodyParser(&batch); err == nil && len(batch) > 0 {
		count, err := h.trackController.IngestBatch(c.Context(), batch)
		if err != nil {
			return h.mapTrackError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"ingested": count,
		})
	}

	var req trackController.IngestTrackRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	track, err := h.trackController.Ingest(c.Context(), &req)
	if err != nil {
		return h.mapTrackError(c, log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"track": track,
	})
}

func (h *TrackHandler) mapTrackError(c *fiber.Ctx, log logger.Logger, err error) error {
	if errors.Is(err, trackController.ErrInvalidTrack) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid track: id, title and artist are required",
		})
	}

	_ = log.Err("Failed to ingest tracks", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to ingest tracks",
	})
}
