package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// ==================== SchedulerStore Tests ====================

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Now().UTC()
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDLedgerReconcile,
		Name:        "Ledger Reconcile",
		Interval:    45 * time.Minute,
		LastRun:     now.Add(-30 * time.Minute),
		NextRun:     now.Add(15 * time.Minute),
		LastSuccess: now.Add(-30 * time.Minute),
		Enabled:     true,
	}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, domain.TaskIDLedgerReconcile)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, task.ID, retrieved.ID)
	assert.Equal(t, task.Name, retrieved.Name)
	assert.Equal(t, task.Interval, retrieved.Interval)
	assert.True(t, retrieved.Enabled)
	assert.True(t, task.LastRun.Equal(retrieved.LastRun))
	assert.True(t, task.NextRun.Equal(retrieved.NextRun))
	assert.True(t, task.LastSuccess.Equal(retrieved.LastSuccess))
	assert.Empty(t, retrieved.LastError)
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store := setupTestStore(t)

	// Missing task is nil, nil
	task, err := store.SchedulerStore().GetTask(context.Background(), "non-existent")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	task := &domain.ScheduledTask{
		ID:       domain.TaskIDLedgerReconcile,
		Name:     "Ledger Reconcile",
		Interval: time.Hour,
		Enabled:  true,
	}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.Interval = 2 * time.Hour
	task.Enabled = false
	task.LastError = "ledger unreadable"
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	retrieved, err := schedulerStore.GetTask(ctx, domain.TaskIDLedgerReconcile)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, retrieved.Interval)
	assert.False(t, retrieved.Enabled)
	assert.Equal(t, "ledger unreadable", retrieved.LastError)
}

func TestSchedulerStore_SaveTask_NilTask(t *testing.T) {
	store := setupTestStore(t)

	err := store.SchedulerStore().SaveTask(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	for _, id := range []string{"b-task", "a-task", "c-task"} {
		require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{
			ID: id, Name: id, Interval: time.Hour, Enabled: true,
		}))
	}

	tasks, err = schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "a-task", tasks[0].ID)
	assert.Equal(t, "c-task", tasks[2].ID)
}

func TestSchedulerStore_DeleteTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{
		ID: "to-delete", Name: "Delete Me", Interval: time.Hour,
	}))
	require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
		TaskID: "to-delete", StartedAt: time.Now(), EndedAt: time.Now(), Success: true,
	}))

	require.NoError(t, schedulerStore.DeleteTask(ctx, "to-delete"))

	task, err := schedulerStore.GetTask(ctx, "to-delete")
	require.NoError(t, err)
	assert.Nil(t, task)

	history, err := schedulerStore.GetTaskHistory(ctx, "to-delete", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_RecordResultAndHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		result := &domain.TaskResult{
			TaskID:         domain.TaskIDLedgerReconcile,
			StartedAt:      base.Add(time.Duration(i) * time.Hour),
			EndedAt:        base.Add(time.Duration(i)*time.Hour + 40*time.Second),
			Success:        i != 3,
			ItemsProcessed: i * 10,
		}
		if !result.Success {
			result.Error = "source timeout"
		}
		require.NoError(t, schedulerStore.RecordResult(ctx, result))
	}

	history, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDLedgerReconcile, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Most recent first
	assert.Equal(t, 40, history[0].ItemsProcessed)
	assert.True(t, history[0].Success)
	assert.False(t, history[1].Success)
	assert.Equal(t, "source timeout", history[1].Error)
	assert.True(t, base.Add(4*time.Hour).Equal(history[0].StartedAt))
	assert.Equal(t, 40*time.Second, history[0].EndedAt.Sub(history[0].StartedAt))
}

func TestSchedulerStore_RecordResult_NilResult(t *testing.T) {
	store := setupTestStore(t)

	err := store.SchedulerStore().RecordResult(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	base := time.Now().UTC()
	for _, taskID := range []string{"first", "second"} {
		for i := 0; i < 6; i++ {
			require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
				TaskID:         taskID,
				StartedAt:      base.Add(time.Duration(i) * time.Minute),
				EndedAt:        base.Add(time.Duration(i)*time.Minute + time.Second),
				Success:        true,
				ItemsProcessed: i,
			}))
		}
	}

	require.NoError(t, schedulerStore.PruneHistory(ctx, 2))

	for _, taskID := range []string{"first", "second"} {
		history, err := schedulerStore.GetTaskHistory(ctx, taskID, 100)
		require.NoError(t, err)
		require.Len(t, history, 2, taskID)
		assert.Equal(t, 5, history[0].ItemsProcessed)
		assert.Equal(t, 4, history[1].ItemsProcessed)
	}
}

func TestSchedulerStore_TaskWithZeroTimes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{
		ID: "fresh", Name: "New Task", Interval: time.Hour, Enabled: true,
	}))

	retrieved, err := schedulerStore.GetTask(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, retrieved.LastRun.IsZero())
	assert.True(t, retrieved.NextRun.IsZero())
	assert.True(t, retrieved.LastSuccess.IsZero())
}

// ==================== Helper Function Tests ====================

func TestFormatNullableTime(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	at := time.Date(2025, 3, 14, 9, 30, 0, 5, time.FixedZone("CET", 3600))
	assert.Equal(t, "2025-03-14T08:30:00.000000005Z", formatNullableTime(at))
}

func TestParseNullableTime(t *testing.T) {
	assert.True(t, parseNullableTime(sql.NullString{}).IsZero())
	assert.True(t, parseNullableTime(sql.NullString{String: "garbage", Valid: true}).IsZero())

	got := parseNullableTime(sql.NullString{String: "2025-03-14T08:30:00.000000000Z", Valid: true})
	assert.True(t, got.Equal(time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)))
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "hello", nullString("hello"))
}
