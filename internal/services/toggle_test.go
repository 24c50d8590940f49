package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

func TestToggleFollowTwiceRestoresBothSides(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")
	svc := NewToggleService(store)

	// alice already follows carol; that edge must survive.
	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	res, err := svc.Toggle(ctx, repositories.UserFollowing, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Present)
	assert.Equal(t, 2, res.Count)

	gotBob, err := store.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, gotBob.Followers)

	res, err = svc.Toggle(ctx, repositories.UserFollowing, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Present)
	assert.Equal(t, 1, res.Count)

	gotAlice, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{carol.ID}, gotAlice.Following)
	gotBob, err = store.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBob.Followers)
}

func TestToggleFollowersKindMirrorsFollowing(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")
	svc := NewToggleService(store)

	// alice's following set is larger than bob's followers set.
	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	res, err := svc.Toggle(ctx, repositories.UserFollowers, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, res.Present)
	assert.Equal(t, 1, res.Count)

	gotAlice, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{carol.ID, bob.ID}, gotAlice.Following)
	gotBob, err := store.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, gotBob.Followers)

	res, err = svc.Toggle(ctx, repositories.UserFollowers, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, res.Present)
	assert.Equal(t, 0, res.Count)
}

func TestSelfFollowIsRejected(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	svc := NewToggleService(store)

	_, err := svc.Toggle(ctx, repositories.UserFollowing, alice.ID, alice.ID)
	requireKind(t, err, apperror.InvalidOperation)
	_, err = svc.Follow(ctx, alice.ID, alice.ID)
	requireKind(t, err, apperror.InvalidOperation)
	_, err = svc.Unfollow(ctx, alice.ID, alice.ID)
	requireKind(t, err, apperror.InvalidOperation)

	got, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Following)
	assert.Empty(t, got.Followers)
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	svc := NewToggleService(store)

	for i := 0; i < 2; i++ {
		res, err := svc.Follow(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Present: true, Count: 1}, res)
	}
	for i := 0; i < 2; i++ {
		res, err := svc.Unfollow(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Present: false, Count: 0}, res)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	store := newStore()
	alice := createUser(t, store, "alice")

	_, err := NewToggleService(store).Follow(context.Background(), alice.ID, "ghost")
	requireKind(t, err, apperror.NotFound)
}

func TestFollowMirrorFailureKeepsFirstWrite(t *testing.T) {
	ctx := context.Background()
	mem := newStore()
	store := &failingStore{MemoryStore: mem, failKind: repositories.UserFollowers}
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	_, err := NewToggleService(store).Toggle(ctx, repositories.UserFollowing, alice.ID, bob.ID)
	requireKind(t, err, apperror.UpstreamFailure)

	gotAlice, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, gotAlice.Following)
	gotBob, err := store.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBob.Followers)
}

func TestLikeToggles(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	post := createPost(t, store, alice.ID)
	svc := NewToggleService(store)

	res, err := svc.LikePost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{Present: true, Count: 1}, res)
	res, err = svc.LikePost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{Present: false, Count: 0}, res)

	_, err = svc.LikePost(ctx, alice.ID, "missing")
	requireKind(t, err, apperror.NotFound)
	_, err = svc.LikeComment(ctx, alice.ID, "missing")
	requireKind(t, err, apperror.NotFound)

	_, err = svc.Toggle(ctx, repositories.PostComments, post.ID, "c1")
	requireKind(t, err, apperror.InvalidArgument)
}

func TestConcurrentLikesFromDistinctUsers(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	post := createPost(t, store, alice.ID)
	svc := NewToggleService(store)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.LikePost(ctx, fmt.Sprintf("user-%d", i), post.ID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, n)
}
