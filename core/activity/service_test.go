package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sanaa/core/activity"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
)

func newTestService(t *testing.T) *activity.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return activity.NewService(inmemdb.NewActivityRepository(db))
}

func TestService_Log(t *testing.T) {
	svc := newTestService(t)

	entry, err := svc.Log(
		context.Background(),
		activity.ActionPaymentAdded,
		activity.EntityPayment,
		"pmt-1",
		"admin@test.test",
		map[string]interface{}{"amount": 2000},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "admin@test.test", entry.PerformedBy)
	assert.Equal(t, map[string]interface{}{"amount": 2000}, entry.Details)
	assert.WithinDuration(t, time.Now().UTC(), entry.Timestamp, time.Minute)
}

func TestService_QueryRecent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, action := range []string{activity.ActionCreated, activity.ActionUpdated, activity.ActionDeleted} {
		_, err := svc.Log(ctx, action, activity.EntityStudent, "std-1", "admin@test.test", nil)
		require.NoError(t, err)
	}

	entries, err := svc.QueryRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = svc.QueryRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
