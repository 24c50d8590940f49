package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/codecircle/backend/internal/apperror"
)

type stubVerifier struct {
	identity *ExternalIdentity
	err      error
}

func (v stubVerifier) Verify(context.Context, string) (*ExternalIdentity, error) {
	return v.identity, v.err
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(newStore(), nil)

	user, err := svc.Register(ctx, RegisterInput{Name: " Alice ", Email: " Alice@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "another-pass"})
	requireKind(t, err, apperror.Conflict)

	got, err := svc.Login(ctx, "alice@EXAMPLE.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	requireKind(t, err, apperror.Unauthenticated)
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	requireKind(t, err, apperror.Unauthenticated)
}

func TestFirebaseLogin(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := newUserService(store, stubVerifier{identity: &ExternalIdentity{
		UID:   "fb-1",
		Email: "Bob@Example.com",
		Name:  "Bob",
	}})

	created, err := svc.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", created.Email)
	assert.Equal(t, "fb-1", created.FirebaseUID)

	again, err := svc.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// firebase-only accounts cannot use password login
	_, err = svc.Login(ctx, "bob@example.com", "")
	requireKind(t, err, apperror.Unauthenticated)
}

func TestFirebaseLoginLinksExistingAccount(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	plain := newUserService(store, nil)
	existing, err := plain.Register(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "password1"})
	require.NoError(t, err)

	svc := newUserService(store, stubVerifier{identity: &ExternalIdentity{UID: "fb-9", Email: "carol@example.com"}})
	linked, err := svc.FirebaseLogin(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
	assert.Equal(t, "fb-9", linked.FirebaseUID)

	_, err = plain.Login(ctx, "carol@example.com", "password1")
	require.NoError(t, err)
}

func TestFirebaseLoginFailures(t *testing.T) {
	ctx := context.Background()

	_, err := newUserService(newStore(), nil).FirebaseLogin(ctx, "token")
	requireKind(t, err, apperror.UpstreamFailure)

	_, err = newUserService(newStore(), stubVerifier{err: errors.New("expired")}).FirebaseLogin(ctx, "token")
	requireKind(t, err, apperror.Unauthenticated)

	_, err = newUserService(newStore(), stubVerifier{identity: &ExternalIdentity{UID: "fb-2"}}).FirebaseLogin(ctx, "token")
	requireKind(t, err, apperror.InvalidArgument)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	_, err := NewToggleService(store).Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	svc := newUserService(store, nil)

	profile, err := svc.Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowersCount)
	assert.Equal(t, 0, profile.FollowingCount)

	me, err := svc.Me(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, me.Following)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, alice.ID, all[0].ID)

	_, err = svc.Get(ctx, "missing")
	requireKind(t, err, apperror.NotFound)
}
