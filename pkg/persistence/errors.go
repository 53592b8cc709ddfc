// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrAutomationNotFound indicates no automation exists for the given identifier.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrAutomationAlreadyExists indicates an automation with the same identifier already exists.
	ErrAutomationAlreadyExists = errors.New("automation already exists")

	// ErrInvalidAutomation indicates the automation failed validation before persistence.
	ErrInvalidAutomation = errors.New("invalid automation")
)

// StoreError wraps storage failures with the operation and automation context.
// Losing the ability to persist runs undermines auditability, so callers in
// the execution path log these at Error severity.
type StoreError struct {
	Op           string // Operation being performed (e.g., "Save", "Append")
	AutomationID string
	Err          error
}

func (e *StoreError) Error() string {
	if e.AutomationID != "" {
		return fmt.Sprintf("%s failed for automation %s: %v", e.Op, e.AutomationID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a store error with context.
func NewStoreError(op, automationID string, err error) *StoreError {
	return &StoreError{Op: op, AutomationID: automationID, Err: err}
}

// IsAutomationNotFound checks if an error indicates a missing automation.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}
