// Package email implements the emailNotification action handler. Actual
// delivery happens through an injected Mailer; the platform's notification
// service provides the implementation.
package email

import (
	"context"
	"errors"
	"log/slog"
)

// Message is one outbound notification.
type Message struct {
	To       string
	Subject  string
	Body     string
	Template string
	Data     map[string]any
}

// Mailer is the delivery seam. Implementations live outside this core.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Action sends one email notification per execution.
type Action struct {
	mailer Mailer
	msg    Message
}

// NewAction builds an email notification action from a descriptor config.
func NewAction(mailer Mailer, config map[string]any) (*Action, error) {
	to, _ := config["to"].(string)
	if to == "" {
		return nil, errors.New("email notification action requires a recipient")
	}

	subject, _ := config["subject"].(string)
	body, _ := config["body"].(string)
	template, _ := config["template"].(string)

	if body == "" && template == "" {
		return nil, errors.New("email notification action requires a body or template")
	}

	return &Action{
		mailer: mailer,
		msg: Message{
			To:       to,
			Subject:  subject,
			Body:     body,
			Template: template,
		},
	}, nil
}

// Execute delivers the message, handing the event payload to the mailer as
// template data.
func (a *Action) Execute(ctx context.Context, eventData map[string]any, logger *slog.Logger) (any, error) {
	msg := a.msg
	msg.Data = eventData

	if err := a.mailer.Send(ctx, msg); err != nil {
		return nil, err
	}

	logger.Info("Email notification sent", "to", msg.To, "subject", msg.Subject)

	return map[string]any{"delivered": true, "to": msg.To}, nil
}
