package services

import (
	"context"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

const (
	DefaultTagPageSize = 20
	MaxTagPageSize     = 100
)

// TagService pages through the posts carrying a tag.
type TagService struct {
	store repositories.Store
}

// NewTagService creates a new TagService
func NewTagService(store repositories.Store) *TagService {
	return &TagService{store: store}
}

// ByTag returns page (1-indexed) of the posts tagged exactly tag, newest first.
func (s *TagService) ByTag(ctx context.Context, tag string, page, pageSize int) (*models.TagPage, error) {
	if tag == "" {
		return nil, apperror.NewInvalidArgument("tag is required")
	}
	if page <= 0 {
		return nil, apperror.NewInvalidArgument("page must be a positive integer")
	}
	if pageSize <= 0 {
		return nil, apperror.NewInvalidArgument("limit must be a positive integer")
	}
	if pageSize > MaxTagPageSize {
		return nil, apperror.NewInvalidArgument("limit must not exceed 100")
	}

	skip := (page - 1) * pageSize
	q := repositories.PostQuery{Tag: tag, Sort: repositories.SortRecent, Skip: skip, Limit: pageSize}

	total, err := s.store.CountPosts(ctx, q)
	if err != nil {
		return nil, storeError(err, "posts")
	}
	posts, err := s.store.FindPosts(ctx, q)
	if err != nil {
		return nil, storeError(err, "posts")
	}
	summaries, err := summarize(ctx, s.store, posts)
	if err != nil {
		return nil, err
	}

	return &models.TagPage{
		Posts:      summaries,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		HasMore:    int64(skip+len(posts)) < total,
	}, nil
}
