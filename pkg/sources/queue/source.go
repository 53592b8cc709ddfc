// Package queue bridges a Redis list onto the event bus. Platform services
// that cannot publish to the bus directly push JSON envelopes onto the list
// instead.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/givehub/automata/pkg/eventbus"
)

const (
	popTimeout     = 1 * time.Second
	connectTimeout = 5 * time.Second
	retryBackoff   = 1 * time.Second
)

// envelope is the message format expected on the list.
type envelope struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// Source consumes a Redis list and republishes each envelope as a named
// event on the bus.
type Source struct {
	redisURL string
	queue    string
	bus      eventbus.EventBus
	logger   *slog.Logger

	client redis.UniversalClient
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSource creates a queue source. redisURL is a redis:// connection URL;
// queue is the list key to consume.
func NewSource(redisURL, queue string, bus eventbus.EventBus, logger *slog.Logger) (*Source, error) {
	if queue == "" {
		return nil, errors.New("queue source list name is required")
	}

	return &Source{
		redisURL: redisURL,
		queue:    queue,
		bus:      bus,
		stopCh:   make(chan struct{}),
		logger: logger.With(
			"module", "queue_source",
			"queue", queue,
		),
	}, nil
}

// Start connects to Redis and begins consuming until Stop or ctx cancel.
func (s *Source) Start(ctx context.Context) error {
	opts, err := redis.ParseURL(s.redisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}

	s.client = redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	s.wg.Add(1)

	go s.consume(ctx)

	return nil
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	s.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-s.stopCh:
			s.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			if err := s.processMessage(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Error processing queue message", "error", err)
				time.Sleep(retryBackoff)
			}
		}
	}
}

func (s *Source) processMessage(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, popTimeout, s.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	return s.forward(ctx, result[1])
}

// forward decodes one envelope and republishes it on the bus. Malformed
// messages and messages without an event name are dropped with a warning;
// only a publish failure is an error.
func (s *Source) forward(ctx context.Context, message string) error {
	var env envelope
	if err := json.Unmarshal([]byte(message), &env); err != nil {
		s.logger.WarnContext(ctx, "Dropping malformed queue message", "error", err)

		return nil
	}

	if env.Event == "" {
		s.logger.WarnContext(ctx, "Dropping queue message without event name")

		return nil
	}

	payload := env.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	if payload["timestamp"] == nil {
		payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.bus.Publish(ctx, env.Event, payload); err != nil {
		return fmt.Errorf("failed to publish event %q: %w", env.Event, err)
	}

	s.logger.InfoContext(ctx, "Forwarded queue message to event bus", "event_name", env.Event)

	return nil
}

// Stop halts consumption and closes the Redis connection.
func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping queue source")

	close(s.stopCh)
	s.wg.Wait()

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
