package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/conditions"
	"github.com/givehub/automata/pkg/eventbus"
	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence/file"
	"github.com/givehub/automata/pkg/runlog"
	"github.com/givehub/automata/pkg/scheduler"

	wm "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type countingAction struct {
	fired *atomic.Int32
	err   error
}

func (a *countingAction) Execute(_ context.Context, _ map[string]any, _ *slog.Logger) (any, error) {
	a.fired.Add(1)

	return "done", a.err
}

type countingFactory struct {
	actionType models.ActionType
	action     actions.Action
}

func (f *countingFactory) Create(_ map[string]any) (actions.Action, error) {
	return f.action, nil
}

func (f *countingFactory) Type() models.ActionType {
	return f.actionType
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	store      *file.Persistence
	bus        eventbus.EventBus
	fired      *atomic.Int32
	failFired  *atomic.Int32
}

func newFixture(t *testing.T, eventNames []string) *dispatcherFixture {
	t.Helper()

	logger := slog.Default()
	store := file.NewPersistence(t.TempDir())
	fired := &atomic.Int32{}
	failFired := &atomic.Int32{}

	actionRegistry := actions.NewRegistry()
	actionRegistry.Register(&countingFactory{
		actionType: models.ActionTypeEmailNotification,
		action:     &countingAction{fired: fired},
	})
	actionRegistry.Register(&countingFactory{
		actionType: models.ActionTypeWebhook,
		action:     &countingAction{fired: failFired, err: errors.New("webhook down")},
	})

	registry := scheduler.NewScheduleRegistry(logger)
	t.Cleanup(registry.StopAll)

	executor := actions.NewExecutor(actionRegistry, logger)
	runLogger := runlog.NewLogger(store.RunLogs(), logger)
	sched := scheduler.NewScheduler(store.Automations(), registry, executor, runLogger, logger)

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            10,
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: true,
		},
		wm.NopLogger{},
	)

	bus := eventbus.NewWatermillEventBus(pubSub, pubSub, logger)
	t.Cleanup(func() { _ = bus.Close() })

	evaluator := conditions.NewEvaluator()

	return &dispatcherFixture{
		dispatcher: NewDispatcher(store.Automations(), evaluator, sched, bus, eventNames, logger),
		store:      store,
		bus:        bus,
		fired:      fired,
		failFired:  failFired,
	}
}

func triggerAutomation(id, event string, conds []models.Condition, actionType models.ActionType) *models.Automation {
	return &models.Automation{
		ID:       id,
		Name:     "Automation " + id,
		Type:     models.AutomationTypeTrigger,
		IsActive: true,
		Config: models.AutomationConfig{
			Trigger: &models.TriggerConfig{
				Event:      event,
				Conditions: conds,
				Actions: []models.ActionDescriptor{
					{Type: actionType, Config: map[string]any{}},
				},
			},
		},
	}
}

func TestDispatcher_RunsMatchingAutomation(t *testing.T) {
	fx := newFixture(t, []string{"donation.completed"})
	ctx := t.Context()

	require.NoError(t, fx.store.Automations().Save(ctx,
		triggerAutomation("a-1", "donation.completed", nil, models.ActionTypeEmailNotification)))

	require.NoError(t, fx.dispatcher.Start(ctx))
	require.NoError(t, fx.bus.Publish(ctx, "donation.completed", map[string]any{"amount": 25}))

	require.Eventually(t, func() bool {
		return fx.fired.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestDispatcher_ConditionGatesExecution(t *testing.T) {
	fx := newFixture(t, []string{"donation.completed"})
	ctx := t.Context()

	conds := []models.Condition{
		{Field: "amount", Operator: models.OperatorGreaterThan, Value: 100},
	}
	require.NoError(t, fx.store.Automations().Save(ctx,
		triggerAutomation("a-1", "donation.completed", conds, models.ActionTypeEmailNotification)))

	require.NoError(t, fx.dispatcher.Start(ctx))

	require.NoError(t, fx.bus.Publish(ctx, "donation.completed", map[string]any{"amount": 50}))
	time.Sleep(200 * time.Millisecond)
	require.Zero(t, fx.fired.Load())

	require.NoError(t, fx.bus.Publish(ctx, "donation.completed", map[string]any{"amount": 150}))
	require.Eventually(t, func() bool {
		return fx.fired.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestDispatcher_IgnoresOtherEvents(t *testing.T) {
	fx := newFixture(t, []string{"donation.completed"})
	ctx := t.Context()

	require.NoError(t, fx.store.Automations().Save(ctx,
		triggerAutomation("a-1", "donation.completed", nil, models.ActionTypeEmailNotification)))

	require.NoError(t, fx.dispatcher.Start(ctx))
	require.NoError(t, fx.bus.Publish(ctx, "campaign.updated", map[string]any{}))

	time.Sleep(200 * time.Millisecond)
	require.Zero(t, fx.fired.Load())
}

func TestDispatcher_FailureIsolation(t *testing.T) {
	fx := newFixture(t, []string{"donation.completed"})
	ctx := t.Context()

	require.NoError(t, fx.store.Automations().Save(ctx,
		triggerAutomation("a-fail", "donation.completed", nil, models.ActionTypeWebhook)))
	require.NoError(t, fx.store.Automations().Save(ctx,
		triggerAutomation("a-ok", "donation.completed", nil, models.ActionTypeEmailNotification)))

	require.NoError(t, fx.dispatcher.Start(ctx))
	require.NoError(t, fx.bus.Publish(ctx, "donation.completed", map[string]any{"amount": 10}))

	// The failing automation must not prevent the healthy one from running.
	require.Eventually(t, func() bool {
		return fx.fired.Load() == 1 && fx.failFired.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)

	logs, err := fx.store.RunLogs().ListByAutomation(ctx, "a-fail", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, models.RunStatusError, logs[0].Status)
}

func TestDispatcher_InactiveAutomationSkipped(t *testing.T) {
	fx := newFixture(t, []string{"donation.completed"})
	ctx := t.Context()

	automation := triggerAutomation("a-1", "donation.completed", nil, models.ActionTypeEmailNotification)
	automation.IsActive = false
	require.NoError(t, fx.store.Automations().Save(ctx, automation))

	require.NoError(t, fx.dispatcher.Start(ctx))
	require.NoError(t, fx.bus.Publish(ctx, "donation.completed", map[string]any{}))

	time.Sleep(200 * time.Millisecond)
	require.Zero(t, fx.fired.Load())
}
