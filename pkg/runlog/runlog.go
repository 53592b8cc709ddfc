// Package runlog records automation executions and maintains rolling run
// statistics.
package runlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence"
)

// Logger persists one run record per execution and rolls results into the
// automation's statistics.
type Logger struct {
	store  persistence.RunLogStore
	logger *slog.Logger

	// Per-automation locks around the stats read-modify-write. Concurrent
	// runs of the same automation are not otherwise serialized; without
	// this, simultaneous updates could drop counts.
	mu         sync.Mutex
	statsLocks map[string]*sync.Mutex
}

// NewLogger creates a run logger over the given store.
func NewLogger(store persistence.RunLogStore, logger *slog.Logger) *Logger {
	return &Logger{
		store:      store,
		logger:     logger.With("module", "runlog"),
		statsLocks: make(map[string]*sync.Mutex),
	}
}

// Record appends one durable execution record. A store failure here is a
// failure of the scheduler's auditability guarantee: it is logged at Error
// severity and returned, never silently swallowed. The constructed entry is
// returned even then, so callers always see what the run produced.
func (l *Logger) Record(
	ctx context.Context,
	automationID string,
	status models.RunStatus,
	executionTime time.Duration,
	details string,
	runErr error,
	input map[string]any,
	output any,
) (*models.AutomationLog, error) {
	entry := &models.AutomationLog{
		ID:            uuid.New().String(),
		AutomationID:  automationID,
		Status:        status,
		ExecutionTime: executionTime.Milliseconds(),
		Details:       details,
		Input:         input,
		Output:        output,
		CreatedAt:     time.Now().UTC(),
	}

	if runErr != nil {
		entry.Error = runErr.Error()
	}

	if err := l.store.Append(ctx, entry); err != nil {
		l.logger.Error("Failed to persist run log entry",
			"automation_id", automationID,
			"status", status,
			"error", err)

		return entry, err
	}

	return entry, nil
}

// UpdateStats rolls one run outcome into the automation's statistics and
// returns them. The average is recomputed incrementally from the previous
// average and count, keeping the update O(1):
//
//	avg' = (avg * (total-1) + elapsed) / total
//
// On failure LastError is set to the failure's message; on success it is
// left untouched so the most recent error stays visible as a diagnostic
// breadcrumb.
func (l *Logger) UpdateStats(automation *models.Automation, success bool, executionTime time.Duration, runErr error) models.AutomationStats {
	lock := l.lockFor(automation.ID)
	lock.Lock()
	defer lock.Unlock()

	stats := &automation.Stats
	stats.TotalRuns++

	if success {
		stats.SuccessfulRuns++
	} else {
		stats.FailedRuns++

		if runErr != nil {
			stats.LastError = runErr.Error()
		}
	}

	elapsed := float64(executionTime.Milliseconds())
	stats.AverageExecutionTime = (stats.AverageExecutionTime*float64(stats.TotalRuns-1) + elapsed) / float64(stats.TotalRuns)

	return *stats
}

// Prune exposes the retention hook of the underlying store.
func (l *Logger) Prune(ctx context.Context, automationID string, keep int) (int, error) {
	return l.store.Prune(ctx, automationID, keep)
}

func (l *Logger) lockFor(automationID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.statsLocks[automationID]
	if !ok {
		lock = &sync.Mutex{}
		l.statsLocks[automationID] = lock
	}

	return lock
}
