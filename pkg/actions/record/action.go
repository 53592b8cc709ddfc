// Package record implements the createRecord and updateRecord action
// handlers. Record storage belongs to the platform's CRUD layer and is
// reached through the injected Store.
package record

import (
	"context"
	"errors"
	"log/slog"
)

// Store is the record CRUD seam: the platform's module/record service.
type Store interface {
	CreateRecord(ctx context.Context, module string, fields map[string]any) (string, error)
	UpdateRecord(ctx context.Context, module, recordID string, fields map[string]any) error
}

// CreateAction creates one record in a platform module.
type CreateAction struct {
	store  Store
	module string
	fields map[string]any
}

// NewCreateAction builds a createRecord action from a descriptor config.
func NewCreateAction(store Store, config map[string]any) (*CreateAction, error) {
	module, _ := config["module"].(string)
	if module == "" {
		return nil, errors.New("createRecord action requires a module")
	}

	fields, _ := config["fields"].(map[string]any)

	return &CreateAction{store: store, module: module, fields: fields}, nil
}

func (a *CreateAction) Execute(ctx context.Context, _ map[string]any, logger *slog.Logger) (any, error) {
	id, err := a.store.CreateRecord(ctx, a.module, a.fields)
	if err != nil {
		return nil, err
	}

	logger.Info("Record created", "record_module", a.module, "record_id", id)

	return map[string]any{"record_id": id, "module": a.module}, nil
}

// UpdateAction updates one record in a platform module.
type UpdateAction struct {
	store    Store
	module   string
	recordID string
	fields   map[string]any
}

// NewUpdateAction builds an updateRecord action from a descriptor config.
func NewUpdateAction(store Store, config map[string]any) (*UpdateAction, error) {
	module, _ := config["module"].(string)
	if module == "" {
		return nil, errors.New("updateRecord action requires a module")
	}

	recordID, _ := config["record_id"].(string)
	if recordID == "" {
		return nil, errors.New("updateRecord action requires a record_id")
	}

	fields, _ := config["fields"].(map[string]any)

	return &UpdateAction{store: store, module: module, recordID: recordID, fields: fields}, nil
}

func (a *UpdateAction) Execute(ctx context.Context, _ map[string]any, logger *slog.Logger) (any, error) {
	if err := a.store.UpdateRecord(ctx, a.module, a.recordID, a.fields); err != nil {
		return nil, err
	}

	logger.Info("Record updated", "record_module", a.module, "record_id", a.recordID)

	return map[string]any{"record_id": a.recordID, "module": a.module, "updated": true}, nil
}
