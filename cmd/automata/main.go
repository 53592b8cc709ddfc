package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/cmd"
	"github.com/givehub/automata/pkg/conditions"
	"github.com/givehub/automata/pkg/dispatcher"
	"github.com/givehub/automata/pkg/log"
	"github.com/givehub/automata/pkg/otelhelper"
	"github.com/givehub/automata/pkg/receiver"
	"github.com/givehub/automata/pkg/runlog"
	"github.com/givehub/automata/pkg/scheduler"
	"github.com/givehub/automata/pkg/sources/queue"
)

// defaultEvents are the platform events the dispatcher listens for out of
// the box. The --events flag replaces the list.
var defaultEvents = []string{
	"donation.completed",
	"donation.refunded",
	"campaign.created",
	"campaign.goal_reached",
	"member.registered",
}

func main() {
	command := &cli.Command{
		Name:                  "automata",
		Usage:                 "Start the GiveHub automation engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine-id",
				Aliases: []string{"id"},
				Usage:   "Custom engine ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("ENGINE_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.IntFlag{
				Name:    "webhook-port",
				Usage:   "Port for the webhook receiver",
				Value:   8085,
				Sources: cli.EnvVars("WEBHOOK_PORT"),
			},
			&cli.StringFlag{
				Name:    "queue-url",
				Usage:   "Redis URL for the queue event source (disabled if empty)",
				Value:   "",
				Sources: cli.EnvVars("QUEUE_URL"),
			},
			&cli.StringFlag{
				Name:    "queue-name",
				Usage:   "Redis list the queue event source consumes",
				Value:   "automata:events",
				Sources: cli.EnvVars("QUEUE_NAME"),
			},
			&cli.StringSliceFlag{
				Name:    "events",
				Usage:   "Event names the dispatcher listens for",
				Value:   defaultEvents,
				Sources: cli.EnvVars("DISPATCHER_EVENTS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	tracerProvider, err := otelhelper.NewTracerProvider(ctx, "automata")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown tracer provider", "error", err)
		}
	}()

	engineID := command.String("engine-id")
	if engineID == "" {
		engineID = fmt.Sprintf("engine-%s", uuid.New().String()[:8])
	}

	logger := log.WithModule("automata").With("engine_id", engineID)
	logger.Info("Initializing automation engine")

	persistence := cmd.NewPersistence(command.String("database-url"))
	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)

	handlerRegistry := cmd.NewHandlerRegistry(logger, cmd.Collaborators{})
	executor := actions.NewExecutor(handlerRegistry, logger)

	scheduleRegistry := scheduler.NewScheduleRegistry(logger)
	runLogger := runlog.NewLogger(persistence.RunLogs(), logger)
	sched := scheduler.NewScheduler(persistence.Automations(), scheduleRegistry, executor, runLogger, logger)

	disp := dispatcher.NewDispatcher(
		persistence.Automations(),
		conditions.NewEvaluator(),
		sched,
		eventBus,
		command.StringSlice("events"),
		logger,
	)

	rec := receiver.NewReceiver(persistence.Automations(), sched, logger)

	var queueSource *queue.Source

	if queueURL := command.String("queue-url"); queueURL != "" {
		queueSource, err = queue.NewSource(queueURL, command.String("queue-name"), eventBus, logger)
		if err != nil {
			return fmt.Errorf("failed to create queue source: %w", err)
		}
	}

	engine := NewEngine(
		engineID,
		persistence,
		eventBus,
		sched,
		disp,
		rec,
		queueSource,
		command.Int("webhook-port"),
		logger,
	)

	return engine.Start(ctx)
}
