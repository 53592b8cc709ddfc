package webhook

import (
	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/models"
)

// Factory creates outbound webhook actions.
type Factory struct{}

// NewFactory creates the webhook action factory.
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config map[string]any) (actions.Action, error) {
	return NewAction(config)
}

func (f *Factory) Type() models.ActionType {
	return models.ActionTypeWebhook
}
