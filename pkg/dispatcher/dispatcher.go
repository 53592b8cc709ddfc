// Package dispatcher routes named system events to the trigger automations
// listening for them.
package dispatcher

import (
	"context"
	"log/slog"

	"github.com/givehub/automata/pkg/conditions"
	"github.com/givehub/automata/pkg/eventbus"
	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence"
	"github.com/givehub/automata/pkg/scheduler"
)

// Dispatcher subscribes to the event bus and, for every delivered event,
// runs the active trigger automations bound to that event name whose
// conditions match the payload.
type Dispatcher struct {
	store     persistence.AutomationStore
	evaluator *conditions.Evaluator
	scheduler *scheduler.Scheduler
	bus       eventbus.EventBus
	logger    *slog.Logger

	eventNames []string
}

// NewDispatcher creates a dispatcher bound to the given event names. Only
// events in the list are consumed; everything else on the topic is ignored.
func NewDispatcher(
	store persistence.AutomationStore,
	evaluator *conditions.Evaluator,
	sched *scheduler.Scheduler,
	bus eventbus.EventBus,
	eventNames []string,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:      store,
		evaluator:  evaluator,
		scheduler:  sched,
		bus:        bus,
		logger:     logger.With("module", "dispatcher"),
		eventNames: eventNames,
	}
}

// Start registers the event handlers and begins consuming.
func (d *Dispatcher) Start(ctx context.Context) error {
	for _, name := range d.eventNames {
		d.bus.Handle(name, d.handleEvent)
	}

	d.logger.InfoContext(ctx, "Dispatcher listening", "events", d.eventNames)

	return d.bus.Subscribe(ctx)
}

// handleEvent fans one event out to every matching trigger automation. A
// failing automation is logged and does not stop delivery to the others, so
// the handler never reports an error back to the bus.
func (d *Dispatcher) handleEvent(ctx context.Context, eventName string, payload map[string]any) error {
	automations, err := d.store.LoadActive(ctx, models.AutomationTypeTrigger)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to load trigger automations",
			"event_name", eventName,
			"error", err)

		return err
	}

	for _, automation := range automations {
		trigger := automation.Config.Trigger
		if trigger == nil || trigger.Event != eventName {
			continue
		}

		if !d.evaluator.Evaluate(trigger.Conditions, payload) {
			d.logger.DebugContext(ctx, "Conditions not met, skipping",
				"automation_id", automation.ID,
				"event_name", eventName)

			continue
		}

		if _, err := d.scheduler.ExecuteAutomation(ctx, automation, payload); err != nil {
			d.logger.ErrorContext(ctx, "Triggered automation failed",
				"automation_id", automation.ID,
				"event_name", eventName,
				"error", err)
		}
	}

	return nil
}
