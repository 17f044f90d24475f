package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	GAME_CHANNEL    Channel = "game.events"
	CATALOG_CHANNEL Channel = "catalog.events"
)

type MessageType string

const (
	PING              MessageType = "ping"
	PONG              MessageType = "pong"
	ERROR             MessageType = "error"
	GAME_GENERATED    MessageType = "game_generated"
	GAME_FAILED       MessageType = "game_generation_failed"
	CATALOG_REFRESHED MessageType = "catalog_refreshed"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

// EventBus fans events out over valkey pubsub so every API instance
// sees generation results, and to in-process handlers (the websocket
// hub) on the publishing instance.
type EventBus struct {
	client   valkey.Client
	logger   logger.Logger
	handlers map[Channel][]EventHandler
	mutex    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(client valkey.Client) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:   client,
		logger:   logger.New("EventBus"),
		handlers: make(map[Channel][]EventHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.logger.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err(
			"failed to publish event to valkey",
			err,
			"channel",
			channel,
			"eventID",
			event.ID,
		)
	}

	log.Info("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)

	// Also notify local handlers
	eb.notifyLocalHandlers(channel, event)

	return nil
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	go eb.listenToChannel(channel)

	return nil
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers, exists := eb.handlers[channel]
	eb.mutex.RUnlock()

	if !exists || len(handlers) == 0 {
		return
	}

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er(
					"handler failed",
					err,
					"channel",
					channel,
					"eventID",
					event.ID,
					"handlerIndex",
					handlerIndex,
				)
			}
		}(handler, i)
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")

	ctx, cancel := context.WithCancel(eb.ctx)
	defer cancel()

	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel, "message", msg.Message)
				return
			}

			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	log := eb.logger.Function("Close")

	eb.cancel()

	log.Info("EventBus closed")
	return nil
}

// PublishGameGenerated announces a freshly persisted daily game.
func (eb *EventBus) PublishGameGenerated(gameID int, date time.Time, genre string) error {
	return eb.Publish(GAME_CHANNEL, Event{
		Type: GAME_GENERATED,
		Data: map[string]any{
			"gameId": gameID,
			"date":   date.Format(time.DateOnly),
			"genre":  genre,
		},
	})
}

// PublishGameFailed records a generation failure so operators watching
// the channel see gaps before players do.
func (eb *EventBus) PublishGameFailed(date time.Time, genre string, reason string) error {
	return eb.Publish(GAME_CHANNEL, Event{
		Type: GAME_FAILED,
		Data: map[string]any{
			"date":   date.Format(time.DateOnly),
			"genre":  genre,
			"reason": reason,
		},
	})
}

// PublishCatalogRefreshed announces a stem catalog re-list.
func (eb *EventBus) PublishCatalogRefreshed(trackCount int) error {
	return eb.Publish(CATALOG_CHANNEL, Event{
		Type: CATALOG_REFRESHED,
		Data: map[string]any{
			"trackCount": trackCount,
		},
	})
}
