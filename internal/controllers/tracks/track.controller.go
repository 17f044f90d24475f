package trackController

import (
	"context"
	"encoding/json"
	"errors"

	"multitunes/config"
	"multitunes/internal/database"
	. "multitunes/internal/models"
	"multitunes/internal/repositories"
	"multitunes/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrInvalidTrack  = errors.New("invalid track")
)

type IngestTrackRequest struct {
	ID      int64            `json:"id"                validate:"required"`
	Title   string           `json:"title"             validate:"required"`
	Artist  string           `json:"artist"            validate:"required"`
	Preview *string          `json:"preview,omitempty"`
	Cover   *string          `json:"cover,omitempty"`
	BPM     *decimal.Decimal `json:"bpm,omitempty"`
	Gain    *decimal.Decimal `json:"gain,omitempty"`
	Genres  []int            `json:"genres,omitempty"`
}

type TrackControllerInterface interface {
	GetByID(ctx context.Context, id int64) (*Track, error)
	Ingest(ctx context.Context, request *IngestTrackRequest) (*Track, error)
	IngestBatch(ctx context.Context, requests []*IngestTrackRequest) (int, error)
}

type TrackController struct {
	trackRepo          repositories.TrackRepository
	transactionService *services.TransactionService
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) TrackControllerInterface {
	return &TrackController{
		trackRepo:          repos.Track,
		transactionService: services.Transaction,
		db:                 db,
		Config:             config,
		log:                logger.New("trackController"),
	}
}

func (c *TrackController) GetByID(ctx context.Context, id int64) (*Track, error) {
	log := c.log.Function("GetByID")

	track, err := c.trackRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTrackNotFound
		}
		return nil, log.Err("failed to get track", err, "id", id)
	}

	return track, nil
}

func (c *TrackController) Ingest(
	ctx context.Context,
	request *IngestTrackRequest,
) (*Track, error) {
	log := c.log.Function("Ingest")

	track, err := trackFromRequest(request)
	if err != nil {
		return nil, err
	}

	if err := c.trackRepo.Upsert(ctx, track); err != nil {
		return nil, log.Err("failed to upsert track", err, "id", track.ID)
	}

	log.Info("Track ingested", "id", track.ID, "title", track.Title)
	return track, nil
}

// IngestBatch upserts a chart dump atomically: either the whole batch
// lands or none of it does.
func (c *TrackController) IngestBatch(
	ctx context.Context,
	requests []*IngestTrackRequest,
) (int, error) {
	log := c.log.Function("IngestBatch")

	tracks := make([]*Track, 0, len(requests))
	for _, request := range requests {
		track, err := trackFromRequest(request)
		if err != nil {
			return 0, err
		}
		tracks = append(tracks, track)
	}

	err := c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		return c.trackRepo.UpsertBatch(txCtx, tracks)
	})
	if err != nil {
		return 0, log.Err("failed to upsert track batch", err, "count", len(tracks))
	}

	log.Info("Track batch ingested", "count", len(tracks))
	return len(tracks), nil
}

func trackFromRequest(request *IngestTrackRequest) (*Track, error) {
	if request.ID <= 0 || request.Title == "" || request.Artist == "" {
		return nil, ErrInvalidTrack
	}

	track := &Track{
		ID:      request.ID,
		Title:   request.Title,
		Artist:  request.Artist,
		Preview: request.Preview,
		Cover:   request.Cover,
		BPM:     request.BPM,
		Gain:    request.Gain,
	}

	if len(request.Genres) > 0 {
		genres, err := json.Marshal(request.Genres)
		if err != nil {
			return nil, ErrInvalidTrack
		}
		track.Genres = datatypes.JSON(genres)
	}

	return track, nil
}
