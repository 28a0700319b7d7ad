package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sanaa/core/role"
)

type roleDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	AddedBy   string    `bson:"added_by"`
	CreatedAt time.Time `bson:"created_at"`
}

type roleRepository struct {
	coll *mongo.Collection
}

var _ role.Repository = (*roleRepository)(nil)

func NewRoleRepository(db *mongo.Database) role.Repository {
	return &roleRepository{coll: db.Collection("roles")}
}

func (repo *roleRepository) CreateRole(ctx context.Context, rl role.Role) (role.Role, error) {
	rl.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, roleDoc(rl)); err != nil {
		return role.Role{}, errors.Wrap(err, "inserting role")
	}
	return rl, nil
}

func (repo *roleRepository) GetRoleByEmail(ctx context.Context, email string) (role.Role, error) {
	var doc roleDoc
	if err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return role.Role{}, role.ErrNotFound
		}
		return role.Role{}, errors.Wrap(err, "finding role")
	}
	return role.Role(doc), nil
}

func (repo *roleRepository) QueryAllRoles(ctx context.Context) ([]role.Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding roles")
	}
	var docs []roleDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding roles")
	}
	roles := make([]role.Role, len(docs))
	for i, doc := range docs {
		roles[i] = role.Role(doc)
	}
	return roles, nil
}

func (repo *roleRepository) CountRoles(ctx context.Context) (int, error) {
	count, err := repo.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "counting roles")
	}
	return int(count), nil
}

func (repo *roleRepository) DeleteRoleByEmail(ctx context.Context, email string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return errors.Wrap(err, "deleting role")
	}
	if res.DeletedCount == 0 {
		return role.ErrNotFound
	}
	return nil
}
