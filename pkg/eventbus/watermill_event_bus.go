package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// WatermillEventBus adapts any watermill publisher/subscriber pair (in-memory
// gochannel, Kafka) to the EventBus interface.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger

	mu            sync.RWMutex
	subscriptions map[string]Handler
}

// NewWatermillEventBus creates an event bus over the given channel.
func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber, logger *slog.Logger) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		logger:        logger.With("module", "eventbus"),
		subscriptions: make(map[string]Handler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

// Publish emits one named event.
func (eb *WatermillEventBus) Publish(_ context.Context, eventName string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), data)
	msg.Metadata.Set(EventNameMetadataKey, eventName)

	return eb.publisher.Publish(Topic, msg)
}

// Handle registers the handler for one event name.
func (eb *WatermillEventBus) Handle(eventName string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscriptions[eventName] = handler
}

// Subscribe starts the consume loop. Events with no registered handler are
// acked and dropped; a handler error nacks the message for redelivery.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eventName := msg.Metadata.Get(EventNameMetadataKey)

			eb.mu.RLock()
			handler, exists := eb.subscriptions[eventName]
			eb.mu.RUnlock()

			if !exists {
				msg.Ack()

				continue
			}

			var payload map[string]any
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				eb.logger.Error("Dropping undecodable event",
					"event_name", eventName,
					"error", err)
				msg.Nack()

				continue
			}

			if err := handler(ctx, eventName, payload); err != nil {
				eb.logger.Error("Event handler failed",
					"event_name", eventName,
					"error", err)
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
