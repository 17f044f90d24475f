package repositories

import (
	"multitunes/internal/database"
)

type Repository struct {
	Track TrackRepository
	Game  GameRepository
}

func New(db database.DB) Repository {
	return Repository{
		Track: NewTrackRepository(db),
		Game:  NewGameRepository(db),
	}
}
