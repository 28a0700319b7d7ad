package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sanaa/core/activity"
)

type activityDoc struct {
	ID          string                 `bson:"_id"`
	Action      string                 `bson:"action"`
	EntityType  string                 `bson:"entity_type"`
	EntityID    string                 `bson:"entity_id"`
	PerformedBy string                 `bson:"performed_by"`
	Details     map[string]interface{} `bson:"details,omitempty"`
	Timestamp   time.Time              `bson:"ts"`
}

type activityRepository struct {
	coll *mongo.Collection
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *mongo.Database) activity.Repository {
	return &activityRepository{coll: db.Collection("activity_log")}
}

func (repo *activityRepository) CreateEntry(ctx context.Context, entry activity.Entry) (activity.Entry, error) {
	entry.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, activityDoc(entry)); err != nil {
		return activity.Entry{}, errors.Wrap(err, "inserting entry")
	}
	return entry, nil
}

func (repo *activityRepository) QueryRecentEntries(ctx context.Context, limit int) ([]activity.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: -1}}).SetLimit(int64(limit))
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding entries")
	}
	var docs []activityDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding entries")
	}
	entries := make([]activity.Entry, len(docs))
	for i, doc := range docs {
		entries[i] = activity.Entry(doc)
	}
	return entries, nil
}
