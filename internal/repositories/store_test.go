package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/anonto42/codecircle/backend/internal/models"
)

// steppingClock returns strictly increasing timestamps one second apart.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

var clockStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMemoryStore(t *testing.T) Store {
	s := NewMemoryStore()
	s.now = steppingClock(clockStart)
	return s
}

func newSQLiteStore(t *testing.T) Store {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := NewSQLStore(db)
	s.now = steppingClock(clockStart)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	backends := map[string]func(*testing.T) Store{
		"memory": newMemoryStore,
		"sqlite": newSQLiteStore,
	}
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func mustUser(t *testing.T, s Store, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustPost(t *testing.T, s Store, author string, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{Type: models.PostTypeThought, Content: "content", AuthorID: author, Tags: tags}
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		assert.NotEmpty(t, alice.ID)
		assert.Empty(t, alice.Followers)
		assert.NotNil(t, alice.Followers)

		dup := &models.User{Name: "other", Email: "alice@example.com"}
		assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)

		got, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = s.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByFirebaseUID(ctx, "")
		assert.ErrorIs(t, err, ErrNotFound)

		alice.FirebaseUID = "fb-1"
		alice.Avatar = "https://cdn.example.com/a.png"
		require.NoError(t, s.UpdateUser(ctx, alice))
		got, err = s.GetUserByFirebaseUID(ctx, "fb-1")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/a.png", got.Avatar)

		bob := mustUser(t, s, "bob")
		listed, err := s.GetUsersByIDs(ctx, []string{bob.ID, "missing", alice.ID})
		require.NoError(t, err)
		assert.Len(t, listed, 2)

		all, err := s.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, alice.ID, all[0].ID)

		assert.ErrorIs(t, s.UpdateUser(ctx, &models.User{ID: "missing", Email: "x@example.com"}), ErrNotFound)
	})
}

func TestSetOperations(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		post := mustPost(t, s, alice.ID)
		likes := Container{Kind: PostLikes, ID: post.ID}

		n, err := s.AddToSet(ctx, likes, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = s.AddToSet(ctx, likes, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n, "adding twice keeps one member")

		present, n, err := s.ToggleInSet(ctx, likes, "u2")
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, 2, n)

		present, n, err = s.ToggleInSet(ctx, likes, "u2")
		require.NoError(t, err)
		assert.False(t, present)
		assert.Equal(t, 1, n)

		ok, err := s.IsMember(ctx, likes, "u1")
		require.NoError(t, err)
		assert.True(t, ok)

		n, err = s.RemoveFromSet(ctx, likes, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		n, err = s.RemoveFromSet(ctx, likes, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		_, _, err = s.ToggleInSet(ctx, Container{Kind: CommentLikes, ID: "missing"}, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.IsMember(ctx, Container{Kind: UserFollowers, ID: "missing"}, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConcurrentToggleByDistinctMembers(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		post := mustPost(t, s, alice.ID)
		likes := Container{Kind: PostLikes, ID: post.ID}

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, err := s.ToggleInSet(ctx, likes, fmt.Sprintf("user-%d", i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := s.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, n)
	})
}

func TestFindPosts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")
		p1 := mustPost(t, s, alice.ID, "go")
		p2 := mustPost(t, s, bob.ID, "go", "rust")
		p3 := mustPost(t, s, alice.ID, "rust")

		recent, err := s.FindPosts(ctx, PostQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, ids(recent))

		for _, u := range []string{"a", "b"} {
			_, err = s.AddToSet(ctx, Container{Kind: PostLikes, ID: p1.ID}, u)
			require.NoError(t, err)
		}
		_, err = s.AddToSet(ctx, Container{Kind: PostLikes, ID: p2.ID}, "a")
		require.NoError(t, err)

		byLikes, err := s.FindPosts(ctx, PostQuery{Sort: SortLikes})
		require.NoError(t, err)
		assert.Equal(t, []string{p1.ID, p2.ID, p3.ID}, ids(byLikes))
		assert.Len(t, byLikes[0].Likes, 2)

		mine, err := s.FindPosts(ctx, PostQuery{RestrictAuthors: true, AuthorIDs: []string{alice.ID}})
		require.NoError(t, err)
		assert.Equal(t, []string{p3.ID, p1.ID}, ids(mine))

		none, err := s.FindPosts(ctx, PostQuery{RestrictAuthors: true})
		require.NoError(t, err)
		assert.Empty(t, none)

		tagged, err := s.FindPosts(ctx, PostQuery{Tag: "rust", Skip: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{p2.ID}, ids(tagged))

		count, err := s.CountPosts(ctx, PostQuery{Tag: "go"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		count, err = s.CountPosts(ctx, PostQuery{Tag: "Go"})
		require.NoError(t, err)
		assert.Zero(t, count, "tag match is case-sensitive")

		got, err := s.GetPostByID(ctx, p2.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "rust"}, got.Tags)
	})
}

func TestTagCounts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		old := mustPost(t, s, alice.ID, "legacy")
		mustPost(t, s, alice.ID, "go", "go", "db")
		mustPost(t, s, alice.ID, "go", "api")
		mustPost(t, s, alice.ID, "db")

		counts, err := s.TagCounts(ctx, old.CreatedAt.Add(time.Millisecond), 10)
		require.NoError(t, err)
		assert.Equal(t, []models.TagCount{
			{Tag: "db", PostCount: 2},
			{Tag: "go", PostCount: 2},
			{Tag: "api", PostCount: 1},
		}, counts)

		limited, err := s.TagCounts(ctx, time.Time{}, 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, "db", limited[0].Tag)
	})
}

func TestComments(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		post := mustPost(t, s, alice.ID)

		first := &models.Comment{Content: "first", AuthorID: alice.ID, PostID: post.ID}
		second := &models.Comment{Content: "second", AuthorID: alice.ID, PostID: post.ID}
		require.NoError(t, s.CreateComment(ctx, first))
		require.NoError(t, s.CreateComment(ctx, second))

		for _, c := range []*models.Comment{first, second} {
			_, err := s.AddToSet(ctx, Container{Kind: PostComments, ID: post.ID}, c.ID)
			require.NoError(t, err)
		}
		got, err := s.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID, second.ID}, got.Comments)

		byIDs, err := s.GetCommentsByIDs(ctx, []string{second.ID, "missing", first.ID})
		require.NoError(t, err)
		require.Len(t, byIDs, 2)
		assert.Equal(t, second.ID, byIDs[0].ID)

		byPost, err := s.GetCommentsByPostID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, byPost, 2)
		assert.Equal(t, first.ID, byPost[0].ID)

		updated, err := s.UpdateCommentContent(ctx, first.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
		assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

		_, err = s.UpdateCommentContent(ctx, "missing", "x")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteComment(ctx, first.ID))
		assert.ErrorIs(t, s.DeleteComment(ctx, first.ID), ErrNotFound)

		require.NoError(t, s.DeletePost(ctx, post.ID))
		_, err = s.GetPostByID(ctx, post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
