package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence"
)

const dirPerm = 0o755
const filePerm = 0o644

// AutomationRepository stores one JSON file per automation under
// <root>/automations. A single mutex serializes writes, which gives the
// per-automation atomicity the scheduler's stats updates rely on.
type AutomationRepository struct {
	root string
	mu   sync.Mutex
}

// NewAutomationRepository creates an automation repository.
func NewAutomationRepository(root string) *AutomationRepository {
	return &AutomationRepository{root: root}
}

func (ar *AutomationRepository) dir() string {
	return filepath.Join(ar.root, "automations")
}

func (ar *AutomationRepository) path(id string) string {
	return filepath.Join(ar.dir(), id+".json")
}

// LoadActive returns all active automations of the given type.
func (ar *AutomationRepository) LoadActive(ctx context.Context, automationType models.AutomationType) ([]*models.Automation, error) {
	root := os.DirFS(ar.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, persistence.NewStoreError("LoadActive", "", err)
	}

	automations := make([]*models.Automation, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		automation, err := ar.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load automation %s: %w", id, err)
		}

		if automation.IsActive && automation.Type == automationType {
			automations = append(automations, automation)
		}
	}

	return automations, nil
}

// FindByID returns the automation, or persistence.ErrAutomationNotFound.
func (ar *AutomationRepository) FindByID(_ context.Context, id string) (*models.Automation, error) {
	data, err := os.ReadFile(ar.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrAutomationNotFound
		}

		return nil, persistence.NewStoreError("FindByID", id, err)
	}

	var automation models.Automation
	if err := json.Unmarshal(data, &automation); err != nil {
		return nil, persistence.NewStoreError("FindByID", id, err)
	}

	return &automation, nil
}

// Save validates and persists the automation, creating or overwriting it.
func (ar *AutomationRepository) Save(_ context.Context, automation *models.Automation) error {
	if err := automation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", persistence.ErrInvalidAutomation, err)
	}

	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := os.MkdirAll(ar.dir(), dirPerm); err != nil {
		return persistence.NewStoreError("Save", automation.ID, err)
	}

	automation.UpdatedAt = time.Now().UTC()
	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = automation.UpdatedAt
	}

	data, err := json.MarshalIndent(automation, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Save", automation.ID, err)
	}

	if err := os.WriteFile(ar.path(automation.ID), data, filePerm); err != nil {
		return persistence.NewStoreError("Save", automation.ID, err)
	}

	return nil
}

// Delete removes an automation definition.
func (ar *AutomationRepository) Delete(_ context.Context, id string) error {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if err := os.Remove(ar.path(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.ErrAutomationNotFound
		}

		return persistence.NewStoreError("Delete", id, err)
	}

	return nil
}
