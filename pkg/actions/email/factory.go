package email

import (
	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/models"
)

// Factory creates emailNotification actions bound to one mailer.
type Factory struct {
	mailer Mailer
}

// NewFactory creates the email action factory.
func NewFactory(mailer Mailer) *Factory {
	return &Factory{mailer: mailer}
}

func (f *Factory) Create(config map[string]any) (actions.Action, error) {
	return NewAction(f.mailer, config)
}

func (f *Factory) Type() models.ActionType {
	return models.ActionTypeEmailNotification
}
