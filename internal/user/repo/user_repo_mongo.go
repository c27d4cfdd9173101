package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user/entity"
)

const usersCollection = "users"

// userDocument is the stored shape of an account.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	ResetCode *string            `bson:"reset_code"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Password:  d.Password,
		ResetCode: d.ResetCode,
	}
}

// MongoUserRepo keeps accounts in the `users` collection.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index (idempotent).
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
	})
	return err
}

// Create inserts a new document with a null reset_code and fills in its ID.
func (r *MongoUserRepo) Create(ctx context.Context, u *entity.User) error {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Email:    u.Email,
		Password: u.Password,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

// GetByEmail returns the account with exactly this email or ErrNotFound.
func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// SetResetCode overwrites reset_code on the matching document.
func (r *MongoUserRepo) SetResetCode(ctx context.Context, email, code string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"reset_code": code}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
