package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sanaa/core/notification"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
)

func newTestService(t *testing.T) *notification.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return notification.NewService(inmemdb.NewNotificationRepository(db))
}

func TestService_Notify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	notif, err := svc.Notify(ctx, notification.TypeNewRegistration, "New Registration", "Asha Verma registered", "std-1")
	require.NoError(t, err)
	assert.NotEmpty(t, notif.ID)
	assert.False(t, notif.Read)
	assert.WithinDuration(t, time.Now().UTC(), notif.CreatedAt, time.Minute)

	_, err = svc.Notify(ctx, "carrier-pigeon", "t", "m", "")
	assert.ErrorIs(t, err, notification.ErrUnknownType)
}

func TestService_MarkRead(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Notify(ctx, notification.TypeNewRegistration, "New Registration", "Asha Verma registered", "std-1")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, notification.TypePaymentReceived, "Payment Received", "2000 from Asha Verma", "std-1")
	require.NoError(t, err)

	unread, err := svc.QueryUnread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.NoError(t, svc.MarkRead(ctx, first.ID))

	unread, err = svc.QueryUnread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, notification.TypePaymentReceived, unread[0].Type)

	// the read entry is still listed by QueryAll
	all, err := svc.QueryAll(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, svc.MarkRead(ctx, "nope"), notification.ErrNotFound)
}

func TestService_QueryAll_limit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, notification.TypePaymentPending, "Payment Pending", "balance due", "std-1")
		require.NoError(t, err)
	}

	all, err := svc.QueryAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
