package eventbus_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	wm "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/automata/pkg/eventbus"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            10,
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: true,
		},
		wm.NopLogger{},
	)

	bus := eventbus.NewWatermillEventBus(pubSub, pubSub, slog.Default())
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishReachesHandler(t *testing.T) {
	bus := newTestBus(t)
	ctx := t.Context()

	received := make(chan map[string]any, 1)
	bus.Handle("donation.completed", func(_ context.Context, _ string, payload map[string]any) error {
		received <- payload

		return nil
	})

	require.NoError(t, bus.Subscribe(ctx))
	require.NoError(t, bus.Publish(ctx, "donation.completed", map[string]any{"amount": 25.5}))

	select {
	case payload := <-received:
		assert.Equal(t, 25.5, payload["amount"])
	case <-time.After(3 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledEventDropped(t *testing.T) {
	bus := newTestBus(t)
	ctx := t.Context()

	var handled atomic.Int32

	bus.Handle("campaign.created", func(_ context.Context, _ string, _ map[string]any) error {
		handled.Add(1)

		return nil
	})

	require.NoError(t, bus.Subscribe(ctx))
	require.NoError(t, bus.Publish(ctx, "donation.completed", map[string]any{}))
	require.NoError(t, bus.Publish(ctx, "campaign.created", map[string]any{}))

	require.Eventually(t, func() bool {
		return handled.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	assert.NotEmpty(t, bus.GenerateID())
	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
