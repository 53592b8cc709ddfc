// Package scheduler owns cron-based registration and execution of
// schedule-type automations.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/givehub/automata/pkg/models"
)

// ErrInvalidScheduleExpression indicates a cron expression that failed to parse.
var ErrInvalidScheduleExpression = errors.New("invalid schedule expression")

// ScheduleRegistry maps automation ids to their live cron timers. The
// mapping is private state; registration, replacement and stopping all go
// through this type.
type ScheduleRegistry struct {
	mu      sync.Mutex
	entries map[string]*cron.Cron
	logger  *slog.Logger
}

// NewScheduleRegistry creates an empty registry.
func NewScheduleRegistry(logger *slog.Logger) *ScheduleRegistry {
	return &ScheduleRegistry{
		entries: make(map[string]*cron.Cron),
		logger:  logger.With("module", "schedule_registry"),
	}
}

// Register validates the cron expression and starts a timer firing onFire.
// An invalid expression fails with ErrInvalidScheduleExpression and leaves
// the registry untouched. Registering an id that already has a timer stops
// the old one first: replace semantics, never duplicate fires.
func (r *ScheduleRegistry) Register(automationID, cronExpression string, onFire func()) error {
	schedule, err := models.CronParser.Parse(cronExpression)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidScheduleExpression, cronExpression, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.entries[automationID]; ok {
		old.Stop()
		delete(r.entries, automationID)
		r.logger.Info("Replacing existing timer", "automation_id", automationID)
	}

	timer := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	timer.Schedule(schedule, cron.FuncJob(onFire))
	timer.Start()

	r.entries[automationID] = timer
	r.logger.Info("Timer registered", "automation_id", automationID, "cron", cronExpression)

	return nil
}

// Stop halts and removes the timer for an automation. No-op when absent.
func (r *ScheduleRegistry) Stop(automationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.entries[automationID]; ok {
		timer.Stop()
		delete(r.entries, automationID)
		r.logger.Info("Timer stopped", "automation_id", automationID)
	}
}

// StopAll halts every timer and clears the registry. Used at shutdown.
func (r *ScheduleRegistry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, timer := range r.entries {
		timer.Stop()
		delete(r.entries, id)
	}

	r.logger.Info("All timers stopped")
}

// Registered reports whether a live timer exists for the automation.
func (r *ScheduleRegistry) Registered(automationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[automationID]

	return ok
}

// Count returns the number of live timers.
func (r *ScheduleRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
