package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sanaa/core/notification"
)

type notificationDoc struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	StudentID string    `bson:"student_id"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"created_at"`
}

type notificationRepository struct {
	coll *mongo.Collection
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *mongo.Database) notification.Repository {
	return &notificationRepository{coll: db.Collection("notifications")}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	notif.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, notificationDoc(notif)); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryUnreadNotifications(ctx context.Context) ([]notification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{"read": false}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding notifications")
	}
	return decodeNotifications(ctx, cur)
}

func (repo *notificationRepository) QueryAllNotifications(ctx context.Context, limit int) ([]notification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding notifications")
	}
	return decodeNotifications(ctx, cur)
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return errors.Wrap(err, "updating notification")
	}
	if res.MatchedCount == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func decodeNotifications(ctx context.Context, cur *mongo.Cursor) ([]notification.Notification, error) {
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding notifications")
	}
	notifs := make([]notification.Notification, len(docs))
	for i, doc := range docs {
		notifs[i] = notification.Notification(doc)
	}
	return notifs, nil
}
