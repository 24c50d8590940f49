package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// newStore returns a memory store whose clock advances one second per write,
// so creation order is also timestamp order.
func newStore() *repositories.MemoryStore {
	store := repositories.NewMemoryStore()
	var mu sync.Mutex
	current := testNow.Add(-time.Hour)
	store.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	})
	return store
}

func newUserService(store repositories.UserStore, verifier IDTokenVerifier) *UserService {
	s := NewUserService(store, verifier)
	s.hashCost = bcrypt.MinCost
	return s
}

func createUser(t *testing.T, store repositories.Store, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func createPost(t *testing.T, store repositories.Store, authorID string, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{Type: models.PostTypeQuestion, Content: "how?", AuthorID: authorID, Tags: tags}
	require.NoError(t, store.CreatePost(context.Background(), p))
	return p
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

var errInjected = errors.New("injected store failure")

// failingStore fails set writes on the chosen kind.
type failingStore struct {
	*repositories.MemoryStore
	failKind repositories.SetKind
}

func (s *failingStore) AddToSet(ctx context.Context, c repositories.Container, member string) (int, error) {
	if c.Kind == s.failKind {
		return 0, errInjected
	}
	return s.MemoryStore.AddToSet(ctx, c, member)
}

func (s *failingStore) RemoveFromSet(ctx context.Context, c repositories.Container, member string) (int, error) {
	if c.Kind == s.failKind {
		return 0, errInjected
	}
	return s.MemoryStore.RemoveFromSet(ctx, c, member)
}
