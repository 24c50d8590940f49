package services

import (
	"context"
	"time"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

const (
	DefaultTrendingDays  = 7
	DefaultTrendingLimit = 10
)

// TrendingService ranks tags by how many recent posts carry them.
type TrendingService struct {
	store repositories.PostStore
	now   func() time.Time
}

// NewTrendingService creates a new TrendingService. A nil clock means time.Now.
func NewTrendingService(store repositories.PostStore, now func() time.Time) *TrendingService {
	if now == nil {
		now = time.Now
	}
	return &TrendingService{store: store, now: now}
}

// Trending returns the limit most used tags among posts created in the last
// windowDays days. A tag repeated within a post counts once for that post;
// ties are ordered by tag.
func (s *TrendingService) Trending(ctx context.Context, windowDays, limit int) ([]models.TagCount, error) {
	if windowDays <= 0 {
		return nil, apperror.NewInvalidArgument("days must be a positive integer")
	}
	if limit <= 0 {
		return nil, apperror.NewInvalidArgument("limit must be a positive integer")
	}

	since := s.now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)
	counts, err := s.store.TagCounts(ctx, since, limit)
	if err != nil {
		return nil, storeError(err, "posts")
	}
	return counts, nil
}
