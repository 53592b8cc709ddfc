package actions

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/automata/pkg/models"
)

// Mock factory and action for testing.
type mockAction struct {
	output any
	err    error
	runs   *[]string
	name   string
}

func (m *mockAction) Execute(_ context.Context, _ map[string]any, _ *slog.Logger) (any, error) {
	if m.runs != nil {
		*m.runs = append(*m.runs, m.name)
	}

	return m.output, m.err
}

type mockFactory struct {
	actionType models.ActionType
	action     Action
	createErr  error
}

func (m *mockFactory) Create(_ map[string]any) (Action, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	return m.action, nil
}

func (m *mockFactory) Type() models.ActionType {
	return m.actionType
}

func TestExecutor_Execute_DispatchesByType(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockFactory{
		actionType: models.ActionTypeCreateRecord,
		action:     &mockAction{output: "created"},
	})

	executor := NewExecutor(registry, slog.Default())

	output, err := executor.Execute(context.Background(),
		models.ActionDescriptor{Type: models.ActionTypeCreateRecord}, nil)
	require.NoError(t, err)
	assert.Equal(t, "created", output)
}

func TestExecutor_Execute_UnknownType(t *testing.T) {
	executor := NewExecutor(NewRegistry(), slog.Default())

	_, err := executor.Execute(context.Background(),
		models.ActionDescriptor{Type: "teleport"}, nil)
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, models.ActionType("teleport"), execErr.ActionType)
	assert.ErrorIs(t, err, ErrUnknownActionType)
}

func TestExecutor_Execute_WrapsHandlerFailure(t *testing.T) {
	boom := errors.New("smtp unreachable")

	registry := NewRegistry()
	registry.Register(&mockFactory{
		actionType: models.ActionTypeEmailNotification,
		action:     &mockAction{err: boom},
	})

	executor := NewExecutor(registry, slog.Default())

	_, err := executor.Execute(context.Background(),
		models.ActionDescriptor{Type: models.ActionTypeEmailNotification}, nil)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, models.ActionTypeEmailNotification, execErr.ActionType)
	assert.ErrorIs(t, err, boom)
}

type panickingAction struct{}

func (p *panickingAction) Execute(_ context.Context, _ map[string]any, _ *slog.Logger) (any, error) {
	panic("handler lost its mind")
}

func TestExecutor_Execute_ContainsHandlerPanic(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockFactory{
		actionType: models.ActionTypeModuleFunction,
		action:     &panickingAction{},
	})

	executor := NewExecutor(registry, slog.Default())

	_, err := executor.Execute(context.Background(),
		models.ActionDescriptor{Type: models.ActionTypeModuleFunction}, nil)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, err.Error(), "handler lost its mind")
}

func TestExecutor_ExecutePipeline_FailFast(t *testing.T) {
	var runs []string

	registry := NewRegistry()
	registry.Register(&mockFactory{
		actionType: models.ActionTypeCreateRecord,
		action:     &mockAction{name: "ok", runs: &runs, output: "first"},
	})
	registry.Register(&mockFactory{
		actionType: models.ActionTypeHTTPRequest,
		action:     &mockAction{name: "failing", runs: &runs, err: errors.New("boom")},
	})
	registry.Register(&mockFactory{
		actionType: models.ActionTypeWebhook,
		action:     &mockAction{name: "neverRun", runs: &runs},
	})

	executor := NewExecutor(registry, slog.Default())

	_, err := executor.ExecutePipeline(context.Background(), []models.ActionDescriptor{
		{Type: models.ActionTypeCreateRecord},
		{Type: models.ActionTypeHTTPRequest},
		{Type: models.ActionTypeWebhook},
	}, nil)

	require.Error(t, err)
	assert.Equal(t, []string{"ok", "failing"}, runs, "actions after the failure must not run")
}

func TestExecutor_ExecutePipeline_LastOutputWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockFactory{
		actionType: models.ActionTypeCreateRecord,
		action:     &mockAction{output: "intermediate"},
	})
	registry.Register(&mockFactory{
		actionType: models.ActionTypeHTTPRequest,
		action:     &mockAction{output: "final"},
	})

	executor := NewExecutor(registry, slog.Default())

	output, err := executor.ExecutePipeline(context.Background(), []models.ActionDescriptor{
		{Type: models.ActionTypeCreateRecord},
		{Type: models.ActionTypeHTTPRequest},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "final", output)
}

func TestExecutor_ExecutePipeline_Empty(t *testing.T) {
	executor := NewExecutor(NewRegistry(), slog.Default())

	output, err := executor.ExecutePipeline(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, output)
}
