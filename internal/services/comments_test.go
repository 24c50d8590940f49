package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

func TestAddCommentAppendsToPost(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	post := createPost(t, store, alice.ID)
	svc := NewCommentService(store)

	c1, err := svc.Add(ctx, alice.ID, post.ID, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", c1.Content)
	assert.Equal(t, "alice", c1.Author.Name)
	c2, err := svc.Add(ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c1.ID, c2.ID}, got.Comments)

	listed, err := svc.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, c1.ID, listed[0].ID)

	_, err = svc.Add(ctx, alice.ID, "missing", "hello")
	requireKind(t, err, apperror.NotFound)
	_, err = svc.Add(ctx, alice.ID, post.ID, "   ")
	requireKind(t, err, apperror.InvalidArgument)
	_, err = svc.ListByPost(ctx, "missing")
	requireKind(t, err, apperror.NotFound)
}

func TestAddCommentRollsBackWhenAppendFails(t *testing.T) {
	ctx := context.Background()
	mem := newStore()
	store := &failingStore{MemoryStore: mem, failKind: repositories.PostComments}
	alice := createUser(t, store, "alice")
	post := createPost(t, store, alice.ID)

	_, err := NewCommentService(store).Add(ctx, alice.ID, post.ID, "hello")
	requireKind(t, err, apperror.UpstreamFailure)

	left, err := store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDeleteCommentRemovesItFromPost(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	post := createPost(t, store, alice.ID)
	svc := NewCommentService(store)

	keep, err := svc.Add(ctx, alice.ID, post.ID, "keep")
	require.NoError(t, err)
	drop, err := svc.Add(ctx, bob.ID, post.ID, "drop")
	require.NoError(t, err)

	requireKind(t, svc.Delete(ctx, alice.ID, drop.ID), apperror.Unauthorized)
	require.NoError(t, svc.Delete(ctx, bob.ID, drop.ID))

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, got.Comments)

	_, err = svc.Get(ctx, drop.ID)
	requireKind(t, err, apperror.NotFound)
	requireKind(t, svc.Delete(ctx, bob.ID, drop.ID), apperror.NotFound)
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	post := createPost(t, store, alice.ID)
	svc := NewCommentService(store)

	c, err := svc.Add(ctx, alice.ID, post.ID, "draft")
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob.ID, c.ID, "hijack")
	requireKind(t, err, apperror.Unauthorized)
	_, err = svc.Update(ctx, alice.ID, c.ID, " ")
	requireKind(t, err, apperror.InvalidArgument)

	updated, err := svc.Update(ctx, alice.ID, c.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Content)
}

func TestLikeComment(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	post := createPost(t, store, alice.ID)
	svc := NewCommentService(store)
	c, err := svc.Add(ctx, alice.ID, post.ID, "like me")
	require.NoError(t, err)

	res, err := svc.Like(ctx, alice.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Present)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}
