// Package persistence provides the storage abstraction for automations and run logs.
package persistence

import (
	"context"

	"github.com/givehub/automata/pkg/models"
)

// AutomationStore is the persistence collaborator for automation definitions.
// The scheduler core reads active automations at boot and per event, and
// writes back stats, last-run and next-run after each execution. Each Save
// must be atomic for that automation's row; no cross-automation locking is
// expected from implementations.
type AutomationStore interface {
	// LoadActive returns all active automations of the given type.
	LoadActive(ctx context.Context, automationType models.AutomationType) ([]*models.Automation, error)

	// FindByID returns the automation, or ErrAutomationNotFound.
	FindByID(ctx context.Context, id string) (*models.Automation, error)

	// Save persists the automation, creating or overwriting it.
	Save(ctx context.Context, automation *models.Automation) error

	// Delete removes an automation definition. Callers owning live timers
	// must deregister them as well.
	Delete(ctx context.Context, id string) error
}

// RunLogStore is the append-only store for execution records.
type RunLogStore interface {
	// Append persists one run log entry. Entries are never mutated.
	Append(ctx context.Context, entry *models.AutomationLog) error

	// ListByAutomation returns entries for one automation, newest first.
	// A limit of 0 means no limit.
	ListByAutomation(ctx context.Context, automationID string, limit int) ([]*models.AutomationLog, error)

	// Prune drops all but the newest keep entries for an automation.
	// This is the retention hook; the policy deciding when to call it
	// lives outside the scheduler core.
	Prune(ctx context.Context, automationID string, keep int) (int, error)
}

// Persistence bundles the stores behind one connection-owning handle.
type Persistence interface {
	Automations() AutomationStore
	RunLogs() RunLogStore
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
