package app

import (
	"context"
	"time"

	"multitunes/config"
	"multitunes/internal/catalog"
	"multitunes/internal/controllers"
	"multitunes/internal/database"
	"multitunes/internal/events"
	"multitunes/internal/generator"
	"multitunes/internal/handlers/middleware"
	"multitunes/internal/jobs"
	"multitunes/internal/repositories"
	"multitunes/internal/services"
	"multitunes/internal/storage"
	"multitunes/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Storage     storage.Provider
	Catalog     *catalog.Prepared
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Caches.Events)

	stemStore, err := storage.NewS3Provider(context.Background(), config)
	if err != nil {
		return &App{}, log.Err("failed to create stem store", err)
	}

	prepared := catalog.NewPrepared(
		stemStore,
		db.Caches.Catalog,
		config.StemPrefix,
		time.Duration(config.CatalogTTLMinutes)*time.Minute,
	)

	repos := repositories.New(db)
	svcs := services.New(db, config)

	websocket, err := websockets.New(eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	mw := middleware.New(db, eventBus, config)
	ctrls := controllers.New(svcs, repos, eventBus, prepared, config, db)

	if config.SchedulerEnabled {
		dailyGameJob := jobs.NewDailyGameJob(
			generator.NewDaily(
				repos.Game,
				repos.Track,
				prepared,
				svcs.Transaction,
				generator.NewRand(),
			),
			eventBus,
		)
		if err := svcs.Scheduler.AddJob(dailyGameJob); err != nil {
			return &App{}, log.Err("failed to register daily game job", err)
		}
		log.Info("Registered daily game job with scheduler")
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  mw,
		Websocket:   websocket,
		EventBus:    eventBus,
		Storage:     stemStore,
		Catalog:     prepared,
		Services:    svcs,
		Repos:       repos,
		Controllers: ctrls,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Storage,
		a.Catalog,
		a.Services.Transaction,
		a.Services.Deezer,
		a.Services.Scheduler,
		a.Repos.Game,
		a.Repos.Track,
		a.Controllers.Game,
		a.Controllers.Track,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
