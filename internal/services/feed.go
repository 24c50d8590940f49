package services

import (
	"context"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

// Scope selects which authors a feed draws from.
type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeFollowing Scope = "following"
)

// FeedOrder names a feed ordering.
type FeedOrder string

const (
	// OrderRecent is newest first.
	OrderRecent FeedOrder = "recent"
	// OrderLikes is most liked first, newest first among equals.
	OrderLikes FeedOrder = "likes"
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100
)

// FeedService assembles post feeds and single-post views.
type FeedService struct {
	store repositories.Store
}

// NewFeedService creates a new FeedService
func NewFeedService(store repositories.Store) *FeedService {
	return &FeedService{store: store}
}

// Assemble returns up to limit posts for the viewer. The following scope
// restricts authors to the viewer's following set; an empty set yields an
// empty feed.
func (s *FeedService) Assemble(ctx context.Context, viewerID string, scope Scope, limit int, order FeedOrder) ([]models.PostSummary, error) {
	if limit <= 0 {
		return nil, apperror.NewInvalidArgument("limit must be a positive integer")
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	q := repositories.PostQuery{Limit: limit}
	switch order {
	case OrderRecent, "":
		q.Sort = repositories.SortRecent
	case OrderLikes:
		q.Sort = repositories.SortLikes
	default:
		return nil, apperror.NewInvalidArgument("sort must be one of recent, likes")
	}

	switch scope {
	case ScopeAll, "":
	case ScopeFollowing:
		if viewerID == "" {
			return nil, apperror.NewUnauthenticated("sign in to see posts from people you follow")
		}
		viewer, err := s.store.GetUserByID(ctx, viewerID)
		if err != nil {
			return nil, storeError(err, "user")
		}
		if len(viewer.Following) == 0 {
			return []models.PostSummary{}, nil
		}
		q.RestrictAuthors = true
		q.AuthorIDs = viewer.Following
	default:
		return nil, apperror.NewInvalidArgument("type must be one of all, following")
	}

	posts, err := s.store.FindPosts(ctx, q)
	if err != nil {
		return nil, storeError(err, "posts")
	}
	return summarize(ctx, s.store, posts)
}

// GetPost returns one post with its comments in creation order.
func (s *FeedService) GetPost(ctx context.Context, postID string) (*models.PostDetail, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post")
	}
	comments, err := s.store.GetCommentsByIDs(ctx, post.Comments)
	if err != nil {
		return nil, storeError(err, "comments")
	}

	authorIDs := []string{post.AuthorID}
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := resolveAuthors(ctx, s.store, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i := range comments {
		views[i] = comments[i].View(authors.get(comments[i].AuthorID))
	}
	return &models.PostDetail{
		PostSummary: post.Summarize(authors.get(post.AuthorID)),
		Likes:       post.Likes,
		Comments:    views,
	}, nil
}

type authorIndex map[string]models.UserCompact

// get falls back to a bare id projection for authors that no longer resolve.
func (a authorIndex) get(id string) models.UserCompact {
	if u, ok := a[id]; ok {
		return u
	}
	return models.UserCompact{ID: id}
}

// resolveAuthors loads the compact projection for every distinct id.
func resolveAuthors(ctx context.Context, store repositories.UserStore, ids []string) (authorIndex, error) {
	seen := make(map[string]struct{}, len(ids))
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	users, err := store.GetUsersByIDs(ctx, distinct)
	if err != nil {
		return nil, storeError(err, "users")
	}
	index := make(authorIndex, len(users))
	for i := range users {
		index[users[i].ID] = users[i].ToCompact()
	}
	return index, nil
}

// summarize projects posts with their authors embedded.
func summarize(ctx context.Context, store repositories.UserStore, posts []models.Post) ([]models.PostSummary, error) {
	authorIDs := make([]string, len(posts))
	for i := range posts {
		authorIDs[i] = posts[i].AuthorID
	}
	authors, err := resolveAuthors(ctx, store, authorIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostSummary, len(posts))
	for i := range posts {
		out[i] = posts[i].Summarize(authors.get(posts[i].AuthorID))
	}
	return out, nil
}
