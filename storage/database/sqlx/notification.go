package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/notification"
)

type notificationRow struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	StudentID string    `db:"student_id"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	notif.ID = uuid.New().String()
	const q = `
		INSERT INTO notification (id, type, title, message, student_id, read, created_at)
		VALUES (:id, :type, :title, :message, :student_id, :read, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, notificationRow(notif)); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryUnreadNotifications(ctx context.Context) ([]notification.Notification, error) {
	var rows []notificationRow
	const q = `SELECT * FROM notification WHERE read = FALSE ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	return toNotifications(rows), nil
}

func (repo *notificationRepository) QueryAllNotifications(ctx context.Context, limit int) ([]notification.Notification, error) {
	var rows []notificationRow
	const q = `SELECT * FROM notification ORDER BY created_at DESC LIMIT $1`
	if err := repo.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	return toNotifications(rows), nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notification SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "updating notification")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func toNotifications(rows []notificationRow) []notification.Notification {
	notifs := make([]notification.Notification, len(rows))
	for i, row := range rows {
		notifs[i] = notification.Notification(row)
	}
	return notifs
}
