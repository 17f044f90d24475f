package database

import (
	"context"
	"fmt"
	"multitunes/config"
	"time"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/valkey-io/valkey-go"
)

type CacheClient = valkey.Client

type Caches struct {
	General CacheClient
	Games   CacheClient
	Catalog CacheClient
	Events  CacheClient
}

// Valkey database index organization. Each index provides logical
// separation for one cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) - miscellaneous cache operations
	GENERAL_CACHE_INDEX = iota

	// GAMES_CACHE_INDEX (DB 1) - ephemeral game state: daily game ids,
	// fresh playlist games awaiting play
	GAMES_CACHE_INDEX

	// CATALOG_CACHE_INDEX (DB 2) - prepared-track-id set mirrored from
	// the stem blob store listing
	CATALOG_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) - pub/sub for game generation events
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	newClient := func(index int) (valkey.Client, error) {
		return valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    index,
		})
	}

	var caches Caches
	var err error

	if caches.General, err = newClient(GENERAL_CACHE_INDEX); err != nil {
		return log.Err("failed to create general valkey client", err)
	}
	if caches.Games, err = newClient(GAMES_CACHE_INDEX); err != nil {
		return log.Err("failed to create games valkey client", err)
	}
	if caches.Catalog, err = newClient(CATALOG_CACHE_INDEX); err != nil {
		return log.Err("failed to create catalog valkey client", err)
	}
	if caches.Events, err = newClient(EVENTS_CACHE_INDEX); err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Caches = caches

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, caches)
	}

	return nil
}

// FlushAllCaches clears every logical cache database. Used by the seed
// path to get a fully fresh state.
func (s *DB) FlushAllCaches() error {
	log := s.log.Function("FlushAllCaches")
	log.Info("Flushing all cache databases")

	for index := GENERAL_CACHE_INDEX; index <= EVENTS_CACHE_INDEX; index++ {
		clearCacheDB(index, s.Caches)
	}

	return nil
}

func clearCacheDB(index int, caches Caches) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var client CacheClient
	var dbName string

	switch index {
	case GENERAL_CACHE_INDEX:
		client = caches.General
		dbName = "General"
	case GAMES_CACHE_INDEX:
		client = caches.Games
		dbName = "Games"
	case CATALOG_CACHE_INDEX:
		client = caches.Catalog
		dbName = "Catalog"
	case EVENTS_CACHE_INDEX:
		client = caches.Events
		dbName = "Events"
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}
