package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/otelhelper"
	"github.com/givehub/automata/pkg/persistence"
	"github.com/givehub/automata/pkg/runlog"
)

// Scheduler drives the automation lifecycle: at boot it registers a timer
// for every active schedule automation, and every execution, whether timer
// fired, event dispatched or webhook received, flows through
// ExecuteAutomation.
//
// In-flight runs cannot be cancelled; stopping an automation only prevents
// future fires.
type Scheduler struct {
	store     persistence.AutomationStore
	registry  *ScheduleRegistry
	executor  *actions.Executor
	runLogger *runlog.Logger
	logger    *slog.Logger
}

// NewScheduler wires the scheduler core.
func NewScheduler(
	store persistence.AutomationStore,
	registry *ScheduleRegistry,
	executor *actions.Executor,
	runLogger *runlog.Logger,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		store:     store,
		registry:  registry,
		executor:  executor,
		runLogger: runLogger,
		logger:    logger.With("module", "scheduler"),
	}
}

// Start loads all active schedule automations and registers their timers.
// A failure for one automation is logged and never aborts startup for the
// others; only failing to reach the store at all is fatal.
func (s *Scheduler) Start(ctx context.Context) error {
	automations, err := s.store.LoadActive(ctx, models.AutomationTypeSchedule)
	if err != nil {
		return err
	}

	s.logger.Info("Registering schedule automations", "count", len(automations))

	for _, automation := range automations {
		if err := s.ScheduleAutomation(ctx, automation); err != nil {
			s.logger.Error("Failed to schedule automation, continuing",
				"automation_id", automation.ID,
				"error", err)
		}
	}

	return nil
}

// Stop halts all timers. Part of graceful shutdown.
func (s *Scheduler) Stop() {
	s.registry.StopAll()
}

// StopAutomation deregisters one automation's timer. Called when an
// automation is deleted or deactivated mid-cycle.
func (s *Scheduler) StopAutomation(automationID string) {
	s.registry.Stop(automationID)
}

// ScheduleAutomation registers a timer for a schedule automation. Non-
// schedule types are skipped with a log; an invalid cron expression is
// returned as ErrInvalidScheduleExpression. Neither is fatal to the process.
func (s *Scheduler) ScheduleAutomation(_ context.Context, automation *models.Automation) error {
	if automation.Type != models.AutomationTypeSchedule || automation.Config.Schedule == nil {
		s.logger.Warn("Skipping non-schedule automation",
			"automation_id", automation.ID,
			"type", automation.Type)

		return nil
	}

	if !automation.IsActive {
		s.logger.Info("Skipping inactive automation", "automation_id", automation.ID)

		return nil
	}

	id := automation.ID

	return s.registry.Register(id, automation.Config.Schedule.CronExpression, func() {
		// Run off the cron dispatch goroutine so one slow automation
		// never delays unrelated timers.
		go s.onTimerFire(id)
	})
}

// onTimerFire reloads the automation so each run sees current config and
// stats, deregisters automations deactivated or deleted since registration,
// and executes. Runs in its own goroutine outside the cron recover chain,
// so it carries its own recover; nothing may escape a timer callback.
func (s *Scheduler) onTimerFire(automationID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic in timer callback",
				"automation_id", automationID,
				"panic", r)
		}
	}()

	ctx := context.Background()

	automation, err := s.store.FindByID(ctx, automationID)
	if err != nil {
		if persistence.IsAutomationNotFound(err) {
			s.logger.Info("Automation removed, stopping timer", "automation_id", automationID)
			s.registry.Stop(automationID)

			return
		}

		s.logger.Error("Failed to load automation for scheduled run",
			"automation_id", automationID,
			"error", err)

		return
	}

	if !automation.IsActive {
		s.logger.Info("Automation deactivated, stopping timer", "automation_id", automationID)
		s.registry.Stop(automationID)

		return
	}

	triggerData := map[string]any{
		"source":    "schedule",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := s.ExecuteAutomation(ctx, automation, triggerData); err != nil {
		s.logger.Error("Scheduled run failed",
			"automation_id", automationID,
			"error", err)
	}
}

// ExecuteAutomation runs the automation's action pipeline with triggerData
// as event context. Success or failure, the run is rolled into the stats
// and recorded as a log entry, and last/next run are written back through
// the store. The
// returned error reports the action failure, already logged and recorded;
// callers must not treat it as fatal.
func (s *Scheduler) ExecuteAutomation(ctx context.Context, automation *models.Automation, triggerData map[string]any) (*models.AutomationLog, error) {
	tracer := otel.Tracer("automata/scheduler")
	ctx, span := otelhelper.StartSpan(ctx, tracer, "automation.execute",
		attribute.String(otelhelper.AutomationIDKey, automation.ID),
		attribute.String(otelhelper.AutomationNameKey, automation.Name),
		attribute.String(otelhelper.AutomationTypeKey, string(automation.Type)),
	)
	defer span.End()

	logger := s.logger.With("automation_id", automation.ID)
	logger.Info("Executing automation", "actions", len(automation.Actions()))

	start := time.Now()
	output, execErr := s.executor.ExecutePipeline(ctx, automation.Actions(), triggerData)
	elapsed := time.Since(start)

	success := execErr == nil

	status := models.RunStatusSuccess
	details := "completed"

	if !success {
		status = models.RunStatusError
		details = "failed"

		span.SetStatus(codes.Error, execErr.Error())
	}

	s.runLogger.UpdateStats(automation, success, elapsed, execErr)

	entry, logErr := s.runLogger.Record(ctx, automation.ID, status, elapsed, details, execErr, triggerData, output)
	if logErr != nil {
		// Losing run history is worse than a failed action; keep the
		// scheduler alive but say so loudly.
		logger.Error("Run completed but could not be recorded",
			"status", status,
			"error", logErr)
	}

	now := time.Now().UTC()
	automation.LastRun = &now
	automation.NextRun = s.CalculateNextRun(automation)

	if err := s.store.Save(ctx, automation); err != nil {
		logger.Error("Failed to persist automation state after run", "error", err)
	}

	logger.Info("Automation run finished",
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"total_runs", automation.Stats.TotalRuns)

	return entry, execErr
}

// CalculateNextRun returns the next fire time after now for a schedule
// automation, nil for any other type or an unparseable expression. Never
// panics out of a timer path.
func (s *Scheduler) CalculateNextRun(automation *models.Automation) *time.Time {
	if automation.Type != models.AutomationTypeSchedule || automation.Config.Schedule == nil {
		return nil
	}

	schedule, err := models.CronParser.Parse(automation.Config.Schedule.CronExpression)
	if err != nil {
		s.logger.Warn("Cannot compute next run for invalid cron expression",
			"automation_id", automation.ID,
			"cron", automation.Config.Schedule.CronExpression,
			"error", err)

		return nil
	}

	next := schedule.Next(time.Now().UTC())

	return &next
}
