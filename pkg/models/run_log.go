package models

import "time"

// RunStatus is the recorded outcome of one automation run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
	RunStatusWarning RunStatus = "warning"
)

// AutomationLog records one execution attempt of an automation.
// Entries are append-only and never mutated after creation; retention is
// handled externally through RunLogStore.Prune.
type AutomationLog struct {
	ID            string         `json:"id"             validate:"required"`
	AutomationID  string         `json:"automation_id"  validate:"required"`
	Status        RunStatus      `json:"status"         validate:"required,oneof=success error warning"`
	ExecutionTime int64          `json:"execution_time" validate:"gte=0"` // milliseconds
	Details       string         `json:"details,omitempty"`
	Error         string         `json:"error,omitempty"`
	Input         map[string]any `json:"input,omitempty"`
	Output        any            `json:"output,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
