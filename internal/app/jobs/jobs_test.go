package jobs

import (
	"context"
	"testing"
	"time"

	"tomaai-api/database"
	"tomaai-api/internal/domain/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneProcessedEvents(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]billing.ProcessedEvent{
		{EventID: "evt_old", Type: "checkout.session.completed", ProcessedAt: now.AddDate(0, 0, -40)},
		{EventID: "evt_new", Type: "invoice.paid", ProcessedAt: now.Add(-time.Hour)},
	}).Error)

	n, err := PruneProcessedEvents(context.Background(), db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left []billing.ProcessedEvent
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "evt_new", left[0].EventID)
}

func TestStartSchedulesPruneJob(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	c, err := Start(db, 30*24*time.Hour)
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 1)
}

func TestStartRejectsBadExtraSpec(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	_, err = Start(db, time.Hour, Task{Name: "broken", Spec: "every tuesday", Run: func() {}})
	assert.Error(t, err)

	c, err := Start(db, time.Hour, Task{Name: "limiter-cleanup", Spec: "@every 10m", Run: func() {}})
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 2)
}
