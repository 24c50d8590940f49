package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := objectID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = objectID("not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, objectIDs([]string{id.Hex(), "bad", ""}), 1)
}

func TestPostFilter(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := postFilter(PostQuery{RestrictAuthors: true, Tag: "go", Since: since})
	assert.Equal(t, bson.D{
		{Key: "author", Value: bson.D{{Key: "$in", Value: []string{}}}},
		{Key: "tags", Value: "go"},
		{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}, filter)

	assert.Empty(t, postFilter(PostQuery{}))
}

func TestLikesPipeline(t *testing.T) {
	pipeline := likesPipeline(PostQuery{Skip: 20, Limit: 10})
	require.Len(t, pipeline, 5)
	assert.Equal(t, "$sort", pipeline[2][0].Key)
	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(20)}}, pipeline[3])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(10)}}, pipeline[4])

	assert.Len(t, likesPipeline(PostQuery{}), 3)
}

func TestTagCountsPipeline(t *testing.T) {
	pipeline := tagCountsPipeline(time.Time{}, 10)
	stages := make([]string, len(pipeline))
	for i, stage := range pipeline {
		stages[i] = stage[0].Key
	}
	assert.Equal(t, []string{"$project", "$unwind", "$group", "$sort", "$limit"}, stages)
	assert.Equal(t, bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}, pipeline[3][0].Value)

	withSince := tagCountsPipeline(time.Now(), 0)
	assert.Equal(t, "$match", withSince[0][0].Key)
	assert.NotEqual(t, "$limit", withSince[len(withSince)-1][0].Key)
}

func TestToggleUpdate(t *testing.T) {
	update := toggleUpdate("likes", "u1")
	require.Len(t, update, 1)
	set := update[0][0]
	assert.Equal(t, "$set", set.Key)

	fields := set.Value.(bson.D)
	require.Len(t, fields, 1)
	assert.Equal(t, "likes", fields[0].Key)

	raw, err := bson.Marshal(bson.D{{Key: "u", Value: update}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "$concatArrays")
	assert.Contains(t, string(raw), "$filter")
}

func TestMemberList(t *testing.T) {
	doc := bson.M{"likes": bson.A{"a", "b", 3}}
	assert.Equal(t, []string{"a", "b"}, memberList(doc, "likes"))
	assert.Equal(t, []string{}, memberList(doc, "missing"))
}
