package database

import (
	"multitunes/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.Track{},
		&models.TrackSource{},
		&models.Game{},
		&models.Question{},
		&models.Answer{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_games_genre_date ON games(genre, date)",
		"CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
