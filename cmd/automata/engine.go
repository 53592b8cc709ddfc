package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/givehub/automata/pkg/dispatcher"
	"github.com/givehub/automata/pkg/eventbus"
	"github.com/givehub/automata/pkg/persistence"
	"github.com/givehub/automata/pkg/receiver"
	"github.com/givehub/automata/pkg/scheduler"
	"github.com/givehub/automata/pkg/sources/queue"
)

const shutdownTimeout = 5 * time.Second

// Engine runs the whole automation core in one process: schedule timers,
// the trigger dispatcher, the webhook receiver and the optional Redis queue
// source.
type Engine struct {
	id          string
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	scheduler   *scheduler.Scheduler
	dispatcher  *dispatcher.Dispatcher
	receiver    *receiver.Receiver
	queueSource *queue.Source
	webhookPort int
	logger      *slog.Logger

	app *fiber.App
}

// NewEngine assembles the engine from its wired components. queueSource may
// be nil when no queue URL is configured.
func NewEngine(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	sched *scheduler.Scheduler,
	disp *dispatcher.Dispatcher,
	rec *receiver.Receiver,
	queueSource *queue.Source,
	webhookPort int,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		id:          id,
		persistence: persistence,
		eventBus:    eventBus,
		scheduler:   sched,
		dispatcher:  disp,
		receiver:    rec,
		queueSource: queueSource,
		webhookPort: webhookPort,
		logger:      logger.With("module", "engine"),
	}
}

// Start runs the engine until SIGINT or SIGTERM.
func (e *Engine) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.logger.Info("Starting automation engine", "engine_id", e.id)

	if err := e.scheduler.Start(runCtx); err != nil {
		return err
	}

	if err := e.dispatcher.Start(runCtx); err != nil {
		return err
	}

	if e.queueSource != nil {
		if err := e.queueSource.Start(runCtx); err != nil {
			return err
		}
	}

	e.app = e.receiver.App()

	go func() {
		if err := e.receiver.Start(e.app, e.webhookPort); err != nil {
			e.logger.Error("Webhook receiver stopped", "error", err)
			cancel()
		}
	}()

	e.handleSignals(cancel)

	<-runCtx.Done()
	e.logger.Info("Engine context cancelled, stopping...")
	e.stop()

	return nil
}

func (e *Engine) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		e.logger.Info("Received signal", "signal", sig)
		cancel()
	}()
}

// stop shuts everything down in dependency order: inbound surfaces first,
// then timers, then the bus and the store.
func (e *Engine) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if e.app != nil {
		if err := e.app.ShutdownWithContext(shutdownCtx); err != nil {
			e.logger.Error("Failed to shut down webhook receiver", "error", err)
		}
	}

	if e.queueSource != nil {
		if err := e.queueSource.Stop(shutdownCtx); err != nil {
			e.logger.Error("Failed to stop queue source", "error", err)
		}
	}

	e.scheduler.Stop()

	if err := e.eventBus.Close(); err != nil {
		e.logger.Error("Failed to close event bus", "error", err)
	}

	if err := e.persistence.Close(shutdownCtx); err != nil {
		e.logger.Error("Failed to close persistence", "error", err)
	}

	e.logger.Info("Engine stopped")
}
