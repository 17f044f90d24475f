package handlers

import (
	"errors"
	"strconv"

	"multitunes/internal/app"
	"multitunes/internal/models"
	"multitunes/internal/storage"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type StemHandler struct {
	Handler
	storage storage.Provider
	prefix  string
}

func NewStemHandler(app app.App, router fiber.Router) *StemHandler {
	log := logger.New("handlers").File("stem_handler")
	return &StemHandler{
		storage: app.Storage,
		prefix:  app.Config.StemPrefix,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *StemHandler) Register() {
	stems := h.router.Group("/stems")

	stems.Get("/:trackId/:stem", h.getStem)
}

// getStem streams one stem's audio. Content-Length is always set so the
// player can report byte-level load progress.
func (h *StemHandler) getStem(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("stem_handler").Function("getStem")

	trackIDParam := c.Params("trackId")
	trackID, err := strconv.ParseInt(trackIDParam, 10, 64)
	if err != nil || trackID <= 0 {
		log.Warn("Invalid track ID", "trackId", trackIDParam)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid track ID",
		})
	}

	stem := models.Stem(c.Params("stem"))
	if !stem.Valid() {
		log.Warn("Invalid stem name", "stem", c.Params("stem"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stem name",
		})
	}

	key := storage.StemKey(h.prefix, trackID, stem)
	object, err := h.storage.Get(c.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Stem not found",
			})
		}
		_ = log.Err("Failed to fetch stem", err, "key", key)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stem",
		})
	}

	contentType := object.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400, immutable")

	return c.SendStream(object.Body, int(object.ContentLength))
}
