package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/directory/entity"
)

const directoryCollection = "directory_users"

type directoryDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}

// MongoDirectoryRepo keeps entries in the `directory_users` collection.
type MongoDirectoryRepo struct {
	coll *mongo.Collection
}

func NewMongoDirectoryRepo(db *mongo.Database) *MongoDirectoryRepo {
	return &MongoDirectoryRepo{coll: db.Collection(directoryCollection)}
}

// EnsureIndexes adds a non-unique email index.
func (r *MongoDirectoryRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("idx_directory_users_email"),
	})
	return err
}

// List returns every entry ordered by _id, which follows insertion time.
func (r *MongoDirectoryRepo) List(ctx context.Context) ([]entity.DirectoryUser, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []directoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.DirectoryUser, 0, len(docs))
	for _, d := range docs {
		out = append(out, entity.DirectoryUser{ID: d.ID.Hex(), Name: d.Name, Email: d.Email})
	}
	return out, nil
}

// Create inserts u and fills in its ID.
func (r *MongoDirectoryRepo) Create(ctx context.Context, u *entity.DirectoryUser) error {
	doc := directoryDocument{ID: primitive.NewObjectID(), Name: u.Name, Email: u.Email}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}
