package repositories

import (
	"context"
	contextutil "multitunes/internal/context"
	"multitunes/internal/database"
	. "multitunes/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	TRACK_BATCH_SIZE = 500
)

type TrackRepository interface {
	GetByID(ctx context.Context, id int64) (*Track, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Track, error)
	ListIDs(ctx context.Context) ([]int64, error)
	Create(ctx context.Context, track *Track) (*Track, error)
	Upsert(ctx context.Context, track *Track) error
	UpsertBatch(ctx context.Context, tracks []*Track) error
	Delete(ctx context.Context, id int64) error
}

type trackRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTrackRepository(db database.DB) TrackRepository {
	return &trackRepository{
		db:  db,
		log: logger.New("trackRepository"),
	}
}

func (t *trackRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return t.db.SQLWithContext(ctx)
}

func (t *trackRepository) GetByID(ctx context.Context, id int64) (*Track, error) {
	log := t.log.Function("GetByID")

	var track Track
	if err := t.getDB(ctx).Preload("Source").First(&track, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get track by ID", err, "id", id)
	}

	return &track, nil
}

func (t *trackRepository) GetByIDs(ctx context.Context, ids []int64) ([]*Track, error) {
	log := t.log.Function("GetByIDs")

	if len(ids) == 0 {
		return nil, nil
	}

	var tracks []*Track
	if err := t.getDB(ctx).Where("id IN ?", ids).Find(&tracks).Error; err != nil {
		return nil, log.Err("failed to get tracks by IDs", err, "count", len(ids))
	}

	return tracks, nil
}

func (t *trackRepository) ListIDs(ctx context.Context) ([]int64, error) {
	log := t.log.Function("ListIDs")

	var ids []int64
	if err := t.getDB(ctx).Model(&Track{}).Distinct("id").Pluck("id", &ids).Error; err != nil {
		return nil, log.Err("failed to list track IDs", err)
	}

	return ids, nil
}

func (t *trackRepository) Create(ctx context.Context, track *Track) (*Track, error) {
	log := t.log.Function("Create")

	if err := t.getDB(ctx).Create(track).Error; err != nil {
		return nil, log.Err("failed to create track", err, "trackID", track.ID)
	}

	log.Info("Track created successfully", "trackID", track.ID, "title", track.Title)
	return track, nil
}

func (t *trackRepository) Upsert(ctx context.Context, track *Track) error {
	log := t.log.Function("Upsert")

	err := t.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "artist", "preview", "cover", "bpm", "gain", "genres", "updated_at"}),
	}).Create(track).Error
	if err != nil {
		return log.Err("failed to upsert track", err, "trackID", track.ID)
	}

	return nil
}

func (t *trackRepository) UpsertBatch(ctx context.Context, tracks []*Track) error {
	log := t.log.Function("UpsertBatch")

	if len(tracks) == 0 {
		return nil
	}

	for i := 0; i < len(tracks); i += TRACK_BATCH_SIZE {
		end := min(i+TRACK_BATCH_SIZE, len(tracks))

		batch := tracks[i:end]
		err := t.getDB(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "artist", "preview", "cover", "bpm", "gain", "genres", "updated_at"}),
		}).CreateInBatches(batch, TRACK_BATCH_SIZE).Error
		if err != nil {
			return log.Err("failed to upsert track batch", err, "batchStart", i, "batchSize", len(batch))
		}
	}

	log.Info("All track batches upserted successfully", "totalTracks", len(tracks))
	return nil
}

func (t *trackRepository) Delete(ctx context.Context, id int64) error {
	log := t.log.Function("Delete")

	if err := t.getDB(ctx).Delete(&Track{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete track", err, "id", id)
	}

	log.Info("Track deleted successfully", "trackID", id)
	return nil
}
