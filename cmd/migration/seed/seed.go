package seed

import (
	"bufio"
	"encoding/json"
	"os"

	"multitunes/config"
	. "multitunes/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultTracksFile = "cmd/migration/seed/tracks.jsonl"
	seedBatchSize     = 500
)

// Seed loads track metadata from a JSONL chart dump, one track object
// per line. The file path can be overridden with SEED_TRACKS_FILE.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding track catalog")

	path := os.Getenv("SEED_TRACKS_FILE")
	if path == "" {
		path = defaultTracksFile
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("No seed file found, skipping track seed", "path", path)
			return nil
		}
		return log.Err("failed to open seed file", err, "path", path)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Er("failed to close seed file", closeErr)
		}
	}()

	var (
		batch []*Track
		total int
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var track Track
		if err := json.Unmarshal(line, &track); err != nil {
			log.Warn("Skipping malformed seed line", "error", err)
			continue
		}
		if track.ID <= 0 || track.Title == "" || track.Artist == "" {
			log.Warn("Skipping invalid track", "id", track.ID)
			continue
		}

		batch = append(batch, &track)
		if len(batch) >= seedBatchSize {
			if err := upsertTracks(db, batch); err != nil {
				return log.Err("failed to upsert seed batch", err)
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return log.Err("failed to read seed file", err, "path", path)
	}

	if len(batch) > 0 {
		if err := upsertTracks(db, batch); err != nil {
			return log.Err("failed to upsert seed batch", err)
		}
		total += len(batch)
	}

	log.Info("Track seed complete", "tracks", total)
	return nil
}

func upsertTracks(db *gorm.DB, tracks []*Track) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"title", "artist", "preview", "cover", "bpm", "gain", "genres", "updated_at"},
		),
	}).Create(&tracks).Error
}
