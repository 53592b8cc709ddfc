// Package eventbus carries named system events between platform subsystems
// and the trigger dispatcher.
package eventbus

import "context"

// Topic is the single message topic all system events travel on.
const Topic = "automata.events"

// EventNameMetadataKey is the message metadata key holding the event name.
const EventNameMetadataKey = "event_name"

// Handler processes one delivered event.
type Handler func(ctx context.Context, eventName string, payload map[string]any) error

// EventBus publishes and consumes named system events. Events are emitted by
// unrelated subsystems (payment completion, module updates); the dispatcher
// is the main consumer.
type EventBus interface {
	// Publish emits an event with a JSON-serializable payload.
	Publish(ctx context.Context, eventName string, payload map[string]any) error

	// Handle registers the handler for one event name. Must be called
	// before Subscribe.
	Handle(eventName string, handler Handler)

	// Subscribe starts consuming; delivery runs until ctx is done.
	Subscribe(ctx context.Context) error

	Close() error
	GenerateID() string
}
