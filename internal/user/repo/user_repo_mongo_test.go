package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user/entity"
)

const usersNS = "auth.users"

func TestMongoUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, NewMongoUserRepo(mt.DB).EnsureIndexes(ctx))
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &entity.User{Email: "a@x.com", Password: "hash"}
		require.NoError(mt, NewMongoUserRepo(mt.DB).Create(ctx, u))
		_, err := primitive.ObjectIDFromHex(u.ID)
		assert.NoError(mt, err)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := NewMongoUserRepo(mt.DB).Create(ctx, &entity.User{Email: "a@x.com", Password: "hash"})
		require.ErrorIs(mt, err, ErrDuplicateEmail)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
			{Key: "reset_code", Value: "Ab12Cd"},
		}))

		u, err := NewMongoUserRepo(mt.DB).GetByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "hash", u.Password)
		require.NotNil(mt, u.ResetCode)
		assert.Equal(mt, "Ab12Cd", *u.ResetCode)
	})

	mt.Run("get by email null reset code", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
			{Key: "reset_code", Value: nil},
		}))

		u, err := NewMongoUserRepo(mt.DB).GetByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Nil(mt, u.ResetCode)
		assert.False(mt, u.HasPendingReset())
	})

	mt.Run("get by email not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := NewMongoUserRepo(mt.DB).GetByEmail(ctx, "b@x.com")
		require.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get by email command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		_, err := NewMongoUserRepo(mt.DB).GetByEmail(ctx, "a@x.com")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("set reset code", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, NewMongoUserRepo(mt.DB).SetResetCode(ctx, "a@x.com", "Ab12Cd"))
	})

	mt.Run("set reset code no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewMongoUserRepo(mt.DB).SetResetCode(ctx, "b@x.com", "Ab12Cd")
		require.ErrorIs(mt, err, ErrNotFound)
	})
}
