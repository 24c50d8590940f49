package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/codecircle/backend/internal/models"
)

var (
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (user email, firebase uid) is taken.
	ErrDuplicate = errors.New("duplicate record")
)

// SetKind names a membership set held by a container document.
type SetKind string

const (
	PostLikes     SetKind = "post_likes"
	CommentLikes  SetKind = "comment_likes"
	UserFollowers SetKind = "user_followers"
	UserFollowing SetKind = "user_following"
	// PostComments is ordered by insertion.
	PostComments SetKind = "post_comments"
)

func (k SetKind) Valid() bool {
	switch k {
	case PostLikes, CommentLikes, UserFollowers, UserFollowing, PostComments:
		return true
	}
	return false
}

// Container addresses one membership set: the set of kind Kind on the document ID.
type Container struct {
	Kind SetKind
	ID   string
}

// SortMode orders FindPosts results.
type SortMode int

const (
	// SortRecent orders by created_at descending.
	SortRecent SortMode = iota
	// SortLikes orders by like count descending, then created_at descending.
	SortLikes
)

// PostQuery filters, orders and windows posts.
type PostQuery struct {
	// RestrictAuthors limits results to AuthorIDs; an empty AuthorIDs then matches nothing.
	RestrictAuthors bool
	AuthorIDs       []string
	// Tag, when set, matches posts whose tags contain it exactly.
	Tag string
	// Since, when non-zero, matches posts created at or after it.
	Since time.Time
	Sort  SortMode
	Skip  int
	// Limit of 0 means no limit.
	Limit int
}

// UserStore holds user documents.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	// GetUsersByIDs returns the users that exist; missing ids are skipped.
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateUser writes profile fields (name, email, avatar, firebase uid); sets are untouched.
	UpdateUser(ctx context.Context, user *models.User) error
}

// PostStore holds post documents.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	FindPosts(ctx context.Context, q PostQuery) ([]models.Post, error)
	// CountPosts counts posts matching q's filters; Sort, Skip and Limit are ignored.
	CountPosts(ctx context.Context, q PostQuery) (int64, error)
	// TagCounts counts, per tag, the posts created at or after since that carry it.
	// Rows are ordered by count descending then tag ascending and capped at limit.
	TagCounts(ctx context.Context, since time.Time, limit int) ([]models.TagCount, error)
}

// CommentStore holds comment documents.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	// GetCommentsByIDs returns the comments that exist in the order of ids.
	GetCommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error)
	// GetCommentsByPostID returns a post's comments oldest first.
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// SetStore mutates membership sets. Every method touches exactly one container
// and is atomic with respect to it; nothing spans two containers.
type SetStore interface {
	// AddToSet adds member if absent and returns the resulting cardinality.
	AddToSet(ctx context.Context, c Container, member string) (int, error)
	// RemoveFromSet removes member if present and returns the resulting cardinality.
	RemoveFromSet(ctx context.Context, c Container, member string) (int, error)
	// ToggleInSet removes member if present, adds it otherwise, in one write.
	ToggleInSet(ctx context.Context, c Container, member string) (present bool, count int, err error)
	IsMember(ctx context.Context, c Container, member string) (bool, error)
}

// Store is the full persistence capability the services run against.
type Store interface {
	UserStore
	PostStore
	CommentStore
	SetStore
}
