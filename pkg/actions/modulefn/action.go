// Package modulefn implements the moduleFunction action handler: invoking a
// named function exported by a platform extension module.
package modulefn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Func is one registered module function. It receives the action's static
// args plus the triggering event payload.
type Func func(ctx context.Context, args map[string]any, eventData map[string]any) (any, error)

// Funcs is the injected catalog of callable module functions, keyed by
// "<module>.<function>" or a bare function name.
type Funcs map[string]Func

// Action invokes one module function.
type Action struct {
	funcs Funcs
	name  string
	args  map[string]any
}

// NewAction builds a moduleFunction action from a descriptor config.
func NewAction(funcs Funcs, config map[string]any) (*Action, error) {
	name, _ := config["function"].(string)
	if name == "" {
		return nil, errors.New("moduleFunction action requires a function name")
	}

	args, _ := config["args"].(map[string]any)

	return &Action{funcs: funcs, name: name, args: args}, nil
}

func (a *Action) Execute(ctx context.Context, eventData map[string]any, logger *slog.Logger) (any, error) {
	fn, ok := a.funcs[a.name]
	if !ok {
		return nil, fmt.Errorf("module function %q is not registered", a.name)
	}

	output, err := fn(ctx, a.args, eventData)
	if err != nil {
		return nil, fmt.Errorf("module function %q failed: %w", a.name, err)
	}

	logger.Info("Module function completed", "function", a.name)

	return output, nil
}
