// Package models defines the core domain models for donation-platform automations.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// AutomationType determines which config variant an automation requires
// and how it is activated at runtime.
type AutomationType string

const (
	AutomationTypeTrigger  AutomationType = "trigger"  // Activated by a named system event
	AutomationTypeSchedule AutomationType = "schedule" // Activated by cron timing
	AutomationTypeWebhook  AutomationType = "webhook"  // Activated by an inbound HTTP call
)

// CronParser is the single parser used everywhere a cron expression is read:
// config validation, timer registration and next-run computation.
// Accepts standard 5-field expressions plus an optional leading seconds field
// and @every/@daily style descriptors.
var CronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Automation is a stored job definition: a set of actions activated either by
// cron timing, a named system event with passing conditions, or an inbound webhook.
type Automation struct {
	ID          string           `json:"id"          validate:"required"`
	Name        string           `json:"name"        validate:"required,min=3"`
	Description string           `json:"description"`
	Type        AutomationType   `json:"type"        validate:"required,oneof=trigger schedule webhook"`
	ModuleID    string           `json:"module_id"`
	Config      AutomationConfig `json:"config"`
	IsActive    bool             `json:"is_active"`
	LastRun     *time.Time       `json:"last_run,omitempty"`
	NextRun     *time.Time       `json:"next_run,omitempty"`
	Stats       AutomationStats  `json:"stats"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// AutomationConfig is a discriminated union keyed by Automation.Type.
// Exactly one variant must be set, and it must match the automation's type.
type AutomationConfig struct {
	Schedule *ScheduleConfig `json:"schedule,omitempty"`
	Trigger  *TriggerConfig  `json:"trigger,omitempty"`
	Webhook  *WebhookConfig  `json:"webhook,omitempty"`
}

// ScheduleConfig configures a cron-activated automation.
type ScheduleConfig struct {
	CronExpression string             `json:"cron_expression" validate:"required"`
	Actions        []ActionDescriptor `json:"actions"         validate:"required,min=1,dive"`
}

// TriggerConfig configures an event-activated automation. Conditions gate
// execution with AND semantics; an empty list always passes.
type TriggerConfig struct {
	Event      string             `json:"event"                validate:"required"`
	Conditions []Condition        `json:"conditions,omitempty" validate:"dive"`
	Actions    []ActionDescriptor `json:"actions"              validate:"required,min=1,dive"`
}

// WebhookConfig configures an automation activated by an inbound HTTP call.
// Schema, when present, is a JSON Schema the request payload must satisfy.
type WebhookConfig struct {
	Endpoint string             `json:"endpoint"         validate:"required,startswith=/"`
	Method   string             `json:"method"           validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Schema   map[string]any     `json:"schema,omitempty"`
	Actions  []ActionDescriptor `json:"actions"          validate:"required,min=1,dive"`
}

// AutomationStats carries rolling run statistics. Counters are monotonic;
// LastError keeps the most recent failure message even after later successes.
type AutomationStats struct {
	TotalRuns            int64   `json:"total_runs"`
	SuccessfulRuns       int64   `json:"successful_runs"`
	FailedRuns           int64   `json:"failed_runs"`
	LastError            string  `json:"last_error,omitempty"`
	AverageExecutionTime float64 `json:"average_execution_time"` // milliseconds
}

var (
	// ErrConfigMismatch is returned when the config variant does not match the
	// automation's type, or more than one variant is set.
	ErrConfigMismatch = errors.New("automation config does not match automation type")
)

var validate = validator.New()

// Validate checks structural validity: required fields, a config variant
// matching the automation type, and a parseable cron expression for schedules.
// Called before persistence; a failing automation must never be stored.
func (a *Automation) Validate() error {
	if err := validate.Struct(a); err != nil {
		return err
	}

	set := 0
	for _, present := range []bool{a.Config.Schedule != nil, a.Config.Trigger != nil, a.Config.Webhook != nil} {
		if present {
			set++
		}
	}

	if set != 1 {
		return ErrConfigMismatch
	}

	switch a.Type {
	case AutomationTypeSchedule:
		if a.Config.Schedule == nil {
			return ErrConfigMismatch
		}

		if err := validate.Struct(a.Config.Schedule); err != nil {
			return err
		}

		if _, err := CronParser.Parse(a.Config.Schedule.CronExpression); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", a.Config.Schedule.CronExpression, err)
		}
	case AutomationTypeTrigger:
		if a.Config.Trigger == nil {
			return ErrConfigMismatch
		}

		if err := validate.Struct(a.Config.Trigger); err != nil {
			return err
		}
	case AutomationTypeWebhook:
		if a.Config.Webhook == nil {
			return ErrConfigMismatch
		}

		if err := validate.Struct(a.Config.Webhook); err != nil {
			return err
		}
	}

	return nil
}

// Actions returns the action pipeline of whichever config variant is set.
func (a *Automation) Actions() []ActionDescriptor {
	switch {
	case a.Config.Schedule != nil:
		return a.Config.Schedule.Actions
	case a.Config.Trigger != nil:
		return a.Config.Trigger.Actions
	case a.Config.Webhook != nil:
		return a.Config.Webhook.Actions
	default:
		return nil
	}
}
