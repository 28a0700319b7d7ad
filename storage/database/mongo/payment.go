package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sanaa/core/payment"
)

type paymentDoc struct {
	ID         string    `bson:"_id"`
	StudentID  string    `bson:"student_id"`
	Amount     int       `bson:"amount"`
	Date       time.Time `bson:"date"`
	Method     string    `bson:"method"`
	Notes      string    `bson:"notes"`
	CreatedAt  time.Time `bson:"created_at"`
	RecordedBy string    `bson:"recorded_by"`
}

type paymentRepository struct {
	coll *mongo.Collection
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *mongo.Database) payment.Repository {
	return &paymentRepository{coll: db.Collection("payments")}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	pmt.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, paymentDoc(pmt)); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo *paymentRepository) QueryPaymentsByStudent(ctx context.Context, studentID string) ([]payment.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding payments")
	}
	return decodePayments(ctx, cur)
}

func (repo *paymentRepository) QueryAllPayments(ctx context.Context, limit int) ([]payment.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding payments")
	}
	return decodePayments(ctx, cur)
}

func decodePayments(ctx context.Context, cur *mongo.Cursor) ([]payment.Payment, error) {
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding payments")
	}
	pmts := make([]payment.Payment, len(docs))
	for i, doc := range docs {
		pmts[i] = payment.Payment(doc)
	}
	return pmts, nil
}
