// Package actions dispatches automation action descriptors to pluggable handlers.
package actions

import (
	"context"
	"log/slog"

	"github.com/givehub/automata/pkg/models"
)

// Action is one configured, executable step. Implementations perform the
// actual side effect (HTTP call, email send, record write) and return an
// output value consumed by the run log.
type Action interface {
	Execute(ctx context.Context, eventData map[string]any, logger *slog.Logger) (any, error)
}

// Factory builds actions of one type from descriptor configs. Collaborators
// a handler needs (mailer, record store, module functions) are injected into
// the factory at construction.
type Factory interface {
	// Create builds an action from the descriptor's config.
	Create(config map[string]any) (Action, error)

	// Type returns the descriptor type this factory serves.
	Type() models.ActionType
}
