package actions

import (
	"errors"
	"fmt"

	"github.com/givehub/automata/pkg/models"
)

// ErrUnknownActionType indicates a descriptor named a type with no
// registered handler.
var ErrUnknownActionType = errors.New("unknown action type")

// ExecutionError wraps a failed action with its type. It is caught inside
// the scheduler's execution path and converted into an error-status run;
// it never propagates past the run.
type ExecutionError struct {
	ActionType models.ActionType
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.ActionType, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
