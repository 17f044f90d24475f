package controllers

import (
	"multitunes/config"
	"multitunes/internal/catalog"
	"multitunes/internal/database"
	"multitunes/internal/events"
	"multitunes/internal/repositories"
	"multitunes/internal/services"

	gameController "multitunes/internal/controllers/game"
	trackController "multitunes/internal/controllers/tracks"
)

type Controllers struct {
	Game  gameController.GameControllerInterface
	Track trackController.TrackControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	prepared *catalog.Prepared,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Game:  gameController.New(repos, services, eventBus, prepared, config, db),
		Track: trackController.New(repos, services, config, db),
	}
}
