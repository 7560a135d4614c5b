package kafka

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-workforce/internal/shared/connection"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := connection.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&OutboxEvent{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestEvent(t *testing.T, aggregateID string) OutboxEvent {
	t.Helper()
	event, err := NewOutboxEvent("req-1", "department", aggregateID, "DepartmentDeleted", "workforce.department.deleted", map[string]string{"id": aggregateID})
	require.NoError(t, err)
	return event
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	db := setupOutboxDB(t)
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &outboxRepository{db: db, now: func() time.Time { return clock }}

	first := newTestEvent(t, "1")
	second := newTestEvent(t, "2")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	pending, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, repo.MarkSent(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "broker unavailable"))

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed event waits for its backoff")

	var failed OutboxEvent
	require.NoError(t, db.First(&failed, "id = ?", second.ID).Error)
	assert.Equal(t, OutboxStatusFailed, failed.Status)
	assert.Equal(t, 1, failed.RetryCount)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "broker unavailable", *failed.ErrorMessage)

	clock = clock.Add(RetryBackoff(1) + time.Second)

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	var sent OutboxEvent
	require.NoError(t, db.First(&sent, "id = ?", first.ID).Error)
	assert.Equal(t, OutboxStatusSent, sent.Status)
	assert.NotNil(t, sent.ProcessedAt)
}

func TestOutboxRepository_MarkFailedTruncatesReason(t *testing.T) {
	db := setupOutboxDB(t)
	ctx := context.Background()
	repo := NewOutboxRepository(db)

	event := newTestEvent(t, "7")
	require.NoError(t, repo.Create(ctx, event))
	require.NoError(t, repo.MarkFailed(ctx, event.ID, strings.Repeat("x", 800)))

	var stored OutboxEvent
	require.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	require.NotNil(t, stored.ErrorMessage)
	assert.Len(t, *stored.ErrorMessage, 500)
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	repo := NewOutboxRepository(setupOutboxDB(t))

	err := repo.Create(context.Background(), OutboxEvent{ID: "x", Topic: "t", Status: OutboxStatusPending})

	assert.EqualError(t, err, "outbox payload is required")
}

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 15*time.Second, RetryBackoff(0))
	assert.Equal(t, 45*time.Second, RetryBackoff(3))
	assert.Equal(t, 150*time.Second, RetryBackoff(42))
}
