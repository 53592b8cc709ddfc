// Package file provides file-based persistence for automations and run logs.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/givehub/automata/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of the file system.
// Intended for development and tests; every entity is one JSON file under
// the root directory.
type Persistence struct {
	root           string
	automationRepo *AutomationRepository
	runLogRepo     *RunLogRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts both plain paths and file:// URLs.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		automationRepo: NewAutomationRepository(cleanRoot),
		runLogRepo:     NewRunLogRepository(cleanRoot),
	}
}

func (fp *Persistence) Automations() persistence.AutomationStore {
	return fp.automationRepo
}

func (fp *Persistence) RunLogs() persistence.RunLogStore {
	return fp.runLogRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for file persistence.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
