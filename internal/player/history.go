package player

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"multitunes/internal/models"
	"multitunes/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

// historyCap bounds the local history file; the oldest records fall off.
const historyCap = 100

// PlayedGameRecord is the client-local proof that a game was completed.
type PlayedGameRecord struct {
	GameID   int          `json:"gameId"`
	Date     time.Time    `json:"date"`
	Genre    models.Genre `json:"genre"`
	Points   []int        `json:"points"`
	Score    int          `json:"score"`
	PlayedAt time.Time    `json:"playedAt"`
}

// HistoryStore guards against replaying a finished game. Daily games
// match on (date, genre) as well as id, so regenerating a game server
// side does not reopen it for a player who already finished the slot.
type HistoryStore interface {
	HasPlayed(game *models.Game) (*PlayedGameRecord, bool)
	RecordPlay(record PlayedGameRecord) error
}

// FileHistoryStore keeps records most-recent-first in a single JSON
// file, rewritten whole on every update. A single player per file is
// assumed; the mutex only guards in-process callers.
type FileHistoryStore struct {
	path string
	mu   sync.Mutex
	log  logger.Logger
}

func NewFileHistoryStore(path string) *FileHistoryStore {
	return &FileHistoryStore{
		path: path,
		log:  logger.New("player").File("history"),
	}
}

func (s *FileHistoryStore) HasPlayed(game *models.Game) (*PlayedGameRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.read() {
		if matches(record, game) {
			return &record, true
		}
	}
	return nil, false
}

func (s *FileHistoryStore) RecordPlay(record PlayedGameRecord) error {
	log := s.log.Function("RecordPlay")

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.PlayedAt.IsZero() {
		record.PlayedAt = time.Now()
	}

	records := append([]PlayedGameRecord{record}, s.read()...)
	if len(records) > historyCap {
		records = records[:historyCap]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return log.Err("failed to marshal history", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return log.Err("failed to create history directory", err, "dir", dir)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return log.Err("failed to write history", err, "path", s.path)
	}

	return nil
}

func (s *FileHistoryStore) read() []PlayedGameRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var records []PlayedGameRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Function("read").Warn("Corrupt history file, starting fresh", "path", s.path)
		return nil
	}
	return records
}

// matches applies only to persisted daily games: ephemeral playlist
// games (id 0) are always replayable, and records of ephemeral plays
// never block a daily slot. The date+genre fallback covers a daily
// game whose id changed through regeneration.
func matches(record PlayedGameRecord, game *models.Game) bool {
	if game.ID == 0 {
		return false
	}
	if record.GameID == game.ID {
		return true
	}
	return record.GameID != 0 && record.Genre == game.Genre && utils.SameDay(record.Date, game.Date)
}
