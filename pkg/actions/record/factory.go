package record

import (
	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/models"
)

// CreateFactory creates createRecord actions bound to one record store.
type CreateFactory struct {
	store Store
}

// NewCreateFactory creates the createRecord action factory.
func NewCreateFactory(store Store) *CreateFactory {
	return &CreateFactory{store: store}
}

func (f *CreateFactory) Create(config map[string]any) (actions.Action, error) {
	return NewCreateAction(f.store, config)
}

func (f *CreateFactory) Type() models.ActionType {
	return models.ActionTypeCreateRecord
}

// UpdateFactory creates updateRecord actions bound to one record store.
type UpdateFactory struct {
	store Store
}

// NewUpdateFactory creates the updateRecord action factory.
func NewUpdateFactory(store Store) *UpdateFactory {
	return &UpdateFactory{store: store}
}

func (f *UpdateFactory) Create(config map[string]any) (actions.Action, error) {
	return NewUpdateAction(f.store, config)
}

func (f *UpdateFactory) Type() models.ActionType {
	return models.ActionTypeUpdateRecord
}
