package httprequest

import (
	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/models"
)

// Factory creates httpRequest actions.
type Factory struct{}

// NewFactory creates the httpRequest action factory.
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config map[string]any) (actions.Action, error) {
	return NewAction(config)
}

func (f *Factory) Type() models.ActionType {
	return models.ActionTypeHTTPRequest
}
