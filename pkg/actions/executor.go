package actions

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/otelhelper"
)

// Executor dispatches action descriptors to the handlers registered for
// their type and runs multi-action pipelines sequentially.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewExecutor creates an executor over the given handler registry.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger.With("module", "action_executor"),
	}
}

// Execute runs one action with the event payload as context. Failures come
// back as *ExecutionError carrying the action type.
func (e *Executor) Execute(ctx context.Context, action models.ActionDescriptor, eventData map[string]any) (any, error) {
	tracer := otel.Tracer("automata/actions")
	ctx, span := otelhelper.StartSpan(ctx, tracer, "action.execute",
		attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
	)
	defer span.End()

	logger := e.logger.With("action_type", action.Type)

	handler, err := e.registry.Create(action.Type, action.Config)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, &ExecutionError{ActionType: action.Type, Err: err}
	}

	output, err := safeExecute(ctx, handler, eventData, logger)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Action failed", "error", err)

		return nil, &ExecutionError{ActionType: action.Type, Err: err}
	}

	logger.Debug("Action completed")

	return output, nil
}

// safeExecute contains a panicking handler: the panic becomes an ordinary
// action failure instead of taking down the scheduler process.
func safeExecute(ctx context.Context, handler Action, eventData map[string]any, logger *slog.Logger) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action handler panicked: %v", r)
		}
	}()

	return handler.Execute(ctx, eventData, logger)
}

// ExecutePipeline runs actions sequentially in declaration order, stopping
// at the first failure. The pipeline's output is the output of the last
// action executed; intermediate outputs are discarded.
func (e *Executor) ExecutePipeline(ctx context.Context, descriptors []models.ActionDescriptor, eventData map[string]any) (any, error) {
	var output any

	for _, descriptor := range descriptors {
		result, err := e.Execute(ctx, descriptor, eventData)
		if err != nil {
			return nil, err
		}

		output = result
	}

	return output, nil
}
