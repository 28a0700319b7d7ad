package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/student"
)

type studentDoc struct {
	ID              string     `bson:"_id"`
	FirstName       string     `bson:"first_name"`
	LastName        string     `bson:"last_name"`
	DateOfBirth     string     `bson:"date_of_birth"`
	Age             int        `bson:"age"`
	Grade           string     `bson:"grade"`
	Gender          string     `bson:"gender"`
	ArtworkURL      string     `bson:"artwork_url"`
	MedicalNotes    string     `bson:"medical_notes"`
	ParentName      string     `bson:"parent_name"`
	ParentEmail     string     `bson:"parent_email"`
	ParentPhone     string     `bson:"parent_phone"`
	Address         string     `bson:"address"`
	PreferredTiming string     `bson:"preferred_timing"`
	ReferralSource  string     `bson:"referral_source"`
	TotalFee        int        `bson:"total_fee"`
	FeeType         string     `bson:"fee_type"`
	AmountPaid      int        `bson:"amount_paid"`
	Status          string     `bson:"status"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
	CreatedBy       string     `bson:"created_by"`
	DeletedAt       *time.Time `bson:"deleted_at,omitempty"`
}

type studentRepository struct {
	coll *mongo.Collection
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *mongo.Database) student.Repository {
	return &studentRepository{coll: db.Collection("students")}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, studentDoc(std)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var doc studentDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student")
	}
	return student.Student(doc), nil
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	ordering core.DBOrdering,
	limit int,
) ([]student.Student, error) {
	query := bson.M{"deleted_at": nil}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PreferredTiming != "" {
		query["preferred_timing"] = filter.PreferredTiming
	}
	created := bson.M{}
	if !filter.CreatedFrom.IsZero() {
		created["$gte"] = filter.CreatedFrom
	}
	if !filter.CreatedTo.IsZero() {
		created["$lte"] = filter.CreatedTo
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	dir := -1
	if ordering.Ascending {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: ordering.Field, Value: dir}}).
		SetLimit(int64(limit))

	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	return decodeStudents(ctx, cur)
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{"deleted_at": nil}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	return decodeStudents(ctx, cur)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": std.ID}, studentDoc(std))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "replacing student")
	}
	if res.MatchedCount == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

func decodeStudents(ctx context.Context, cur *mongo.Cursor) ([]student.Student, error) {
	var docs []studentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	students := make([]student.Student, len(docs))
	for i, doc := range docs {
		students[i] = student.Student(doc)
	}
	return students, nil
}
