package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/iliyamo/post-service/internal/model"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoPostRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id and date", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &model.Post{Title: "A", Description: "B"}
		require.NoError(mt, repo.Create(ctx, p))

		_, err := primitive.ObjectIDFromHex(p.ID)
		assert.NoError(mt, err, "id should be an ObjectID hex string")
		assert.False(mt, p.Date.IsZero())
		assert.Equal(mt, "A", p.Title)
		assert.Equal(mt, "B", p.Description)
	})

	mt.Run("create surfaces write errors", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(ctx, &model.Post{Title: "A", Description: "B"})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "duplicate key")
	})

	mt.Run("list returns all documents", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()
		first := mtest.CreateCursorResponse(1, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id1}, {Key: "title", Value: "A"}, {Key: "description", Value: "B"}},
			bson.D{{Key: "_id", Value: id2}, {Key: "title", Value: "C"}, {Key: "description", Value: "D"}},
		)
		killCursors := mtest.CreateCursorResponse(0, namespace(mt), mtest.NextBatch)
		mt.AddMockResponses(first, killCursors)

		posts, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		assert.Equal(mt, id1.Hex(), posts[0].ID)
		assert.Equal(mt, "C", posts[1].Title)
		assert.Equal(mt, "D", posts[1].Description)
	})

	mt.Run("list of empty collection is an empty slice", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		posts, err := repo.List(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, posts)
		assert.Empty(mt, posts)
	})

	mt.Run("list surfaces command errors", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on posts",
		}))

		_, err := repo.List(ctx)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "not authorized")
	})

	mt.Run("get by id decodes document", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		id := primitive.NewObjectID()
		date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "A"},
			{Key: "description", Value: "B"},
			{Key: "date", Value: date},
		}))

		p, err := repo.GetByID(ctx, id.Hex())
		require.NoError(mt, err)
		require.NotNil(mt, p)
		assert.Equal(mt, id.Hex(), p.ID)
		assert.Equal(mt, "A", p.Title)
		assert.Equal(mt, "B", p.Description)
		assert.True(mt, date.Equal(p.Date))
	})

	mt.Run("get by id of missing document is nil", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		p, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Nil(mt, p)
	})

	mt.Run("malformed id never reaches the store", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)

		_, err := repo.GetByID(ctx, "not-an-id")
		assert.True(mt, errors.Is(err, ErrInvalidID))
		_, err = repo.Delete(ctx, "123")
		assert.True(mt, errors.Is(err, ErrInvalidID))
		_, err = repo.UpdateTitle(ctx, "", "t")
		assert.True(mt, errors.Is(err, ErrInvalidID))
	})

	mt.Run("delete reports deleted count", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		res, err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, &model.DeleteResult{Acknowledged: true, DeletedCount: 1}, res)
	})

	mt.Run("update title reports matched and modified", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := repo.UpdateTitle(ctx, primitive.NewObjectID().Hex(), "C")
		require.NoError(mt, err)
		assert.Equal(mt, &model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, res)
	})

	mt.Run("update of unknown id matches nothing", func(mt *mtest.T) {
		repo := NewMongoPostRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		res, err := repo.UpdateTitle(ctx, primitive.NewObjectID().Hex(), "C")
		require.NoError(mt, err)
		assert.Zero(mt, res.MatchedCount)
		assert.Zero(mt, res.ModifiedCount)
	})
}
