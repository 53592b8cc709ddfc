package file

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence"
)

// RunLogRepository stores one JSON file per run log entry under
// <root>/logs/<automation-id>. Entries are append-only.
type RunLogRepository struct {
	root string
	mu   sync.Mutex
}

// NewRunLogRepository creates a run log repository.
func NewRunLogRepository(root string) *RunLogRepository {
	return &RunLogRepository{root: root}
}

func (rr *RunLogRepository) dir(automationID string) string {
	return filepath.Join(rr.root, "logs", automationID)
}

// Append persists one run log entry.
func (rr *RunLogRepository) Append(_ context.Context, entry *models.AutomationLog) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	dir := rr.dir(entry.AutomationID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return persistence.NewStoreError("Append", entry.AutomationID, err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return persistence.NewStoreError("Append", entry.AutomationID, err)
	}

	path := filepath.Join(dir, entry.ID+".json")
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return persistence.NewStoreError("Append", entry.AutomationID, err)
	}

	return nil
}

// ListByAutomation returns entries for one automation, newest first.
func (rr *RunLogRepository) ListByAutomation(_ context.Context, automationID string, limit int) ([]*models.AutomationLog, error) {
	entries, err := rr.loadAll(automationID)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// Prune drops all but the newest keep entries, returning how many were removed.
func (rr *RunLogRepository) Prune(_ context.Context, automationID string, keep int) (int, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	entries, err := rr.loadAll(automationID)
	if err != nil {
		return 0, err
	}

	if len(entries) <= keep {
		return 0, nil
	}

	removed := 0

	for _, entry := range entries[keep:] {
		path := filepath.Join(rr.dir(automationID), entry.ID+".json")
		if err := os.Remove(path); err != nil {
			return removed, persistence.NewStoreError("Prune", automationID, err)
		}

		removed++
	}

	return removed, nil
}

func (rr *RunLogRepository) loadAll(automationID string) ([]*models.AutomationLog, error) {
	dir := rr.dir(automationID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.AutomationLog{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, persistence.NewStoreError("ListByAutomation", automationID, err)
	}

	entries := make([]*models.AutomationLog, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, persistence.NewStoreError("ListByAutomation", automationID, err)
		}

		var entry models.AutomationLog
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, persistence.NewStoreError("ListByAutomation", automationID, err)
		}

		entries = append(entries, &entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}
