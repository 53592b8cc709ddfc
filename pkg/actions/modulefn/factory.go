package modulefn

import (
	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/models"
)

// Factory creates moduleFunction actions bound to one function catalog.
type Factory struct {
	funcs Funcs
}

// NewFactory creates the moduleFunction action factory.
func NewFactory(funcs Funcs) *Factory {
	return &Factory{funcs: funcs}
}

func (f *Factory) Create(config map[string]any) (actions.Action, error) {
	return NewAction(f.funcs, config)
}

func (f *Factory) Type() models.ActionType {
	return models.ActionTypeModuleFunction
}
