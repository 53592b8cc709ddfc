package cmd

import (
	"context"
	"log/slog"

	"github.com/givehub/automata/pkg/actions"
	"github.com/givehub/automata/pkg/actions/email"
	"github.com/givehub/automata/pkg/actions/httprequest"
	"github.com/givehub/automata/pkg/actions/modulefn"
	"github.com/givehub/automata/pkg/actions/record"
	"github.com/givehub/automata/pkg/actions/webhook"
)

// Collaborators are the platform services action handlers delegate to. The
// zero value is usable: missing collaborators fall back to log-only stubs so
// the engine can run standalone.
type Collaborators struct {
	Mailer      email.Mailer
	RecordStore record.Store
	ModuleFuncs modulefn.Funcs
}

// NewHandlerRegistry builds the action handler registry with every native
// handler registered.
func NewHandlerRegistry(logger *slog.Logger, collab Collaborators) *actions.Registry {
	if collab.Mailer == nil {
		collab.Mailer = &logMailer{logger: logger}
	}

	if collab.RecordStore == nil {
		collab.RecordStore = &logRecordStore{logger: logger}
	}

	if collab.ModuleFuncs == nil {
		collab.ModuleFuncs = modulefn.Funcs{}
	}

	registry := actions.NewRegistry()
	registry.Register(httprequest.NewFactory())
	registry.Register(webhook.NewFactory())
	registry.Register(email.NewFactory(collab.Mailer))
	registry.Register(record.NewCreateFactory(collab.RecordStore))
	registry.Register(record.NewUpdateFactory(collab.RecordStore))
	registry.Register(modulefn.NewFactory(collab.ModuleFuncs))

	return registry
}

// logMailer records the notification instead of delivering it. Used when no
// real notification service is wired in.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) Send(_ context.Context, msg email.Message) error {
	m.logger.Info("Email delivery is not configured, logging instead",
		"to", msg.To,
		"subject", msg.Subject)

	return nil
}

// logRecordStore records CRUD calls instead of writing anywhere.
type logRecordStore struct {
	logger *slog.Logger
}

func (s *logRecordStore) CreateRecord(_ context.Context, module string, _ map[string]any) (string, error) {
	s.logger.Info("Record storage is not configured, logging create instead", "record_module", module)

	return "unsaved", nil
}

func (s *logRecordStore) UpdateRecord(_ context.Context, module, recordID string, _ map[string]any) error {
	s.logger.Info("Record storage is not configured, logging update instead",
		"record_module", module,
		"record_id", recordID)

	return nil
}
