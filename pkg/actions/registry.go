package actions

import (
	"fmt"

	"github.com/givehub/automata/pkg/models"
)

// Registry maps action types to their factories. Registration happens once
// during wiring; lookups after that are read-only.
type Registry struct {
	factories map[models.ActionType]Factory
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[models.ActionType]Factory)}
}

// Register adds a factory, replacing any previous one for the same type.
func (r *Registry) Register(factory Factory) {
	r.factories[factory.Type()] = factory
}

// Create builds an action for the given type, or fails with
// ErrUnknownActionType.
func (r *Registry) Create(actionType models.ActionType, config map[string]any) (Action, error) {
	factory, ok := r.factories[actionType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, actionType)
	}

	return factory.Create(config)
}
