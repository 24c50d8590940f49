package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

func summaryIDs(posts []models.PostSummary) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestAssembleAllIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	p1 := createPost(t, store, alice.ID)
	p2 := createPost(t, store, alice.ID)
	p3 := createPost(t, store, alice.ID)

	feed, err := NewFeedService(store).Assemble(ctx, "", ScopeAll, 10, OrderRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, summaryIDs(feed))
	assert.Equal(t, models.UserCompact{ID: alice.ID, Name: "alice"}, feed[0].Author)
}

func TestAssembleRespectsLimit(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	for i := 0; i < 5; i++ {
		createPost(t, store, alice.ID)
	}
	svc := NewFeedService(store)

	feed, err := svc.Assemble(ctx, "", ScopeAll, 3, OrderRecent)
	require.NoError(t, err)
	assert.Len(t, feed, 3)

	for _, limit := range []int{0, -1} {
		_, err = svc.Assemble(ctx, "", ScopeAll, limit, OrderRecent)
		requireKind(t, err, apperror.InvalidArgument)
	}
}

func TestAssembleFollowingScope(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")
	fromBob := createPost(t, store, bob.ID)
	createPost(t, store, carol.ID)
	svc := NewFeedService(store)

	feed, err := svc.Assemble(ctx, alice.ID, ScopeFollowing, DefaultFeedLimit, OrderRecent)
	require.NoError(t, err)
	assert.Empty(t, feed)
	assert.NotNil(t, feed)

	_, err = NewToggleService(store).Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	feed, err = svc.Assemble(ctx, alice.ID, ScopeFollowing, DefaultFeedLimit, OrderRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{fromBob.ID}, summaryIDs(feed))

	_, err = svc.Assemble(ctx, "", ScopeFollowing, DefaultFeedLimit, OrderRecent)
	requireKind(t, err, apperror.Unauthenticated)
	_, err = svc.Assemble(ctx, alice.ID, Scope("friends"), DefaultFeedLimit, OrderRecent)
	requireKind(t, err, apperror.InvalidArgument)
}

func TestAssembleByLikes(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	popular := createPost(t, store, alice.ID)
	quiet := createPost(t, store, alice.ID)
	toggles := NewToggleService(store)
	for _, u := range []string{"u1", "u2"} {
		_, err := toggles.LikePost(ctx, u, popular.ID)
		require.NoError(t, err)
	}

	svc := NewFeedService(store)
	feed, err := svc.Assemble(ctx, "", ScopeAll, 10, OrderLikes)
	require.NoError(t, err)
	assert.Equal(t, []string{popular.ID, quiet.ID}, summaryIDs(feed))
	assert.Equal(t, 2, feed[0].LikesCount)

	feed, err = svc.Assemble(ctx, "", ScopeAll, 10, "")
	require.NoError(t, err)
	assert.Equal(t, []string{quiet.ID, popular.ID}, summaryIDs(feed))

	_, err = svc.Assemble(ctx, "", ScopeAll, 10, FeedOrder("random"))
	requireKind(t, err, apperror.InvalidArgument)
}

func TestGetPostEmbedsCommentsInOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	post := createPost(t, store, alice.ID)
	comments := NewCommentService(store)

	first, err := comments.Add(ctx, bob.ID, post.ID, "first")
	require.NoError(t, err)
	second, err := comments.Add(ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	detail, err := NewFeedService(store).GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, first.ID, detail.Comments[0].ID)
	assert.Equal(t, "bob", detail.Comments[0].Author.Name)
	assert.Equal(t, second.ID, detail.Comments[1].ID)
	assert.Equal(t, 2, detail.CommentsCount)
	assert.Equal(t, "alice", detail.Author.Name)

	_, err = NewFeedService(store).GetPost(ctx, "missing")
	requireKind(t, err, apperror.NotFound)
}

func TestAssembleSurfacesStoreFailure(t *testing.T) {
	store := &brokenFeedStore{MemoryStore: newStore()}
	_, err := NewFeedService(store).Assemble(context.Background(), "", ScopeAll, 10, OrderRecent)
	requireKind(t, err, apperror.UpstreamFailure)
}

type brokenFeedStore struct {
	*repositories.MemoryStore
}

func (s *brokenFeedStore) FindPosts(context.Context, repositories.PostQuery) ([]models.Post, error) {
	return nil, errInjected
}
