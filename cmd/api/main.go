package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multitunes/internal/app"
	"multitunes/internal/server"

	logger "github.com/Bparsons0904/goLogger"
)

func gracefulShutdown(
	app *app.App,
	appServer *server.AppServer,
	done chan bool,
	log logger.Logger,
) {
	log = log.Function("gracefulShutdown")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := appServer.FiberApp.ShutdownWithContext(ctx); err != nil {
		log.Er("Server forced to shutdown", err)
	}

	if err := app.Database.Close(); err != nil {
		log.Er("failed to close database", err)
	}

	log.Info("Server exiting")
	done <- true
}

func main() {
	log := logger.New("main")

	app, err := app.New()
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	// Warm the prepared-track catalog so the first generation request
	// doesn't pay for the bucket listing.
	if err := app.Catalog.Refresh(context.Background()); err != nil {
		log.Er("failed to warm stem catalog", err)
	}

	if app.Config.SchedulerEnabled {
		if err := app.Services.Scheduler.Start(context.Background()); err != nil {
			log.Er("failed to start scheduler", err)
		}
	}

	server, err := server.New(app)
	if err != nil {
		os.Exit(1)
	}

	done := make(chan bool, 1)

	go func() {
		err := server.Listen(app.Config.ServerPort)
		if err != nil {
			os.Exit(1)
		}
	}()

	go gracefulShutdown(app, server, done, log)

	<-done
	log.Info("Graceful shutdown complete.")
}
