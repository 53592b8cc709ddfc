package file

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/automata/pkg/models"
	"github.com/givehub/automata/pkg/persistence"
)

func newAutomation(id string, automationType models.AutomationType, active bool) *models.Automation {
	automation := &models.Automation{
		ID:       id,
		Name:     "Automation " + id,
		Type:     automationType,
		IsActive: active,
	}

	switch automationType {
	case models.AutomationTypeSchedule:
		automation.Config.Schedule = &models.ScheduleConfig{
			CronExpression: "*/5 * * * *",
			Actions:        []models.ActionDescriptor{{Type: models.ActionTypeCreateRecord}},
		}
	case models.AutomationTypeTrigger:
		automation.Config.Trigger = &models.TriggerConfig{
			Event:   "transactionCompleted",
			Actions: []models.ActionDescriptor{{Type: models.ActionTypeEmailNotification}},
		}
	case models.AutomationTypeWebhook:
		automation.Config.Webhook = &models.WebhookConfig{
			Endpoint: "/hooks/" + id,
			Method:   "POST",
			Actions:  []models.ActionDescriptor{{Type: models.ActionTypeCreateRecord}},
		}
	}

	return automation
}

func TestAutomationRepository_SaveAndFindByID(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	automation := newAutomation("auto-1", models.AutomationTypeSchedule, true)
	require.NoError(t, store.Automations().Save(ctx, automation))

	loaded, err := store.Automations().FindByID(ctx, "auto-1")
	require.NoError(t, err)
	assert.Equal(t, automation.Name, loaded.Name)
	assert.Equal(t, "*/5 * * * *", loaded.Config.Schedule.CronExpression)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestAutomationRepository_FindByID_NotFound(t *testing.T) {
	store := NewPersistence(t.TempDir())

	_, err := store.Automations().FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)
}

func TestAutomationRepository_Save_RejectsInvalid(t *testing.T) {
	store := NewPersistence(t.TempDir())

	automation := newAutomation("auto-bad", models.AutomationTypeSchedule, true)
	automation.Config.Schedule.CronExpression = "nope"

	err := store.Automations().Save(context.Background(), automation)
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrInvalidAutomation)
}

func TestAutomationRepository_LoadActive_FiltersTypeAndActivity(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Automations().Save(ctx, newAutomation("sched-active", models.AutomationTypeSchedule, true)))
	require.NoError(t, store.Automations().Save(ctx, newAutomation("sched-inactive", models.AutomationTypeSchedule, false)))
	require.NoError(t, store.Automations().Save(ctx, newAutomation("trig-active", models.AutomationTypeTrigger, true)))

	schedules, err := store.Automations().LoadActive(ctx, models.AutomationTypeSchedule)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "sched-active", schedules[0].ID)

	triggers, err := store.Automations().LoadActive(ctx, models.AutomationTypeTrigger)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, "trig-active", triggers[0].ID)
}

func TestAutomationRepository_Delete(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Automations().Save(ctx, newAutomation("auto-del", models.AutomationTypeWebhook, true)))
	require.NoError(t, store.Automations().Delete(ctx, "auto-del"))

	_, err := store.Automations().FindByID(ctx, "auto-del")
	assert.ErrorIs(t, err, persistence.ErrAutomationNotFound)

	assert.ErrorIs(t, store.Automations().Delete(ctx, "auto-del"), persistence.ErrAutomationNotFound)
}

func TestRunLogRepository_AppendListPrune(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Now().UTC()
	for i := range 5 {
		entry := &models.AutomationLog{
			ID:            uuid.New().String(),
			AutomationID:  "auto-1",
			Status:        models.RunStatusSuccess,
			ExecutionTime: int64(i * 10),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.RunLogs().Append(ctx, entry))
	}

	entries, err := store.RunLogs().ListByAutomation(ctx, "auto-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	// Newest first.
	assert.Equal(t, int64(40), entries[0].ExecutionTime)

	limited, err := store.RunLogs().ListByAutomation(ctx, "auto-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	removed, err := store.RunLogs().Prune(ctx, "auto-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining, err := store.RunLogs().ListByAutomation(ctx, "auto-1", 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(40), remaining[0].ExecutionTime)
	assert.Equal(t, int64(30), remaining[1].ExecutionTime)
}

func TestRunLogRepository_ListEmpty(t *testing.T) {
	store := NewPersistence(t.TempDir())

	entries, err := store.RunLogs().ListByAutomation(context.Background(), "never-ran", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPersistence_HealthCheck(t *testing.T) {
	dir := t.TempDir()
	store := NewPersistence(dir)
	assert.NoError(t, store.HealthCheck(context.Background()))

	missing := NewPersistence(dir + "/does-not-exist")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
