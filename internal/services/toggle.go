package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/repositories"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

// ToggleResult is the membership state after a toggle and the set's new size.
type ToggleResult struct {
	Present bool `json:"present"`
	Count   int  `json:"count"`
}

// ToggleService flips set memberships: likes on posts and comments, and
// follow edges between users.
type ToggleService struct {
	store repositories.Store
}

// NewToggleService creates a new ToggleService
func NewToggleService(store repositories.Store) *ToggleService {
	return &ToggleService{store: store}
}

// Toggle removes memberID from the container's set when present and adds it
// otherwise. Follow edges are routed through the two-step follow protocol so
// both users' sets move together.
func (s *ToggleService) Toggle(ctx context.Context, kind repositories.SetKind, containerID, memberID string) (ToggleResult, error) {
	switch kind {
	case repositories.UserFollowing:
		return s.toggleFollow(ctx, containerID, memberID, kind)
	case repositories.UserFollowers:
		// B.followers ∋ A is the mirror of A.following ∋ B.
		return s.toggleFollow(ctx, memberID, containerID, kind)
	case repositories.PostLikes:
		return s.toggle(ctx, repositories.Container{Kind: kind, ID: containerID}, memberID, "post")
	case repositories.CommentLikes:
		return s.toggle(ctx, repositories.Container{Kind: kind, ID: containerID}, memberID, "comment")
	}
	return ToggleResult{}, apperror.NewInvalidArgument("set " + string(kind) + " cannot be toggled")
}

// LikePost toggles the actor's like on a post.
func (s *ToggleService) LikePost(ctx context.Context, actorID, postID string) (ToggleResult, error) {
	return s.Toggle(ctx, repositories.PostLikes, postID, actorID)
}

// LikeComment toggles the actor's like on a comment.
func (s *ToggleService) LikeComment(ctx context.Context, actorID, commentID string) (ToggleResult, error) {
	return s.Toggle(ctx, repositories.CommentLikes, commentID, actorID)
}

func (s *ToggleService) toggle(ctx context.Context, c repositories.Container, memberID, resource string) (ToggleResult, error) {
	present, count, err := s.store.ToggleInSet(ctx, c, memberID)
	if err != nil {
		return ToggleResult{}, storeError(err, resource)
	}
	return ToggleResult{Present: present, Count: count}, nil
}

// checkFollow validates a follow edge before anything is written.
func (s *ToggleService) checkFollow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperror.NewInvalidOperation("you cannot follow yourself")
	}
	if _, err := s.store.GetUserByID(ctx, targetID); err != nil {
		return storeError(err, "user")
	}
	return nil
}

// toggleFollow flips actor.following ∋ target, then mirrors the resulting
// direction onto target.followers ∋ actor. The two writes are independent: a
// failed mirror leaves the first write in place and reports UpstreamFailure.
// The count reported is the size of the set named by kind.
func (s *ToggleService) toggleFollow(ctx context.Context, actorID, targetID string, kind repositories.SetKind) (ToggleResult, error) {
	if err := s.checkFollow(ctx, actorID, targetID); err != nil {
		return ToggleResult{}, err
	}
	following := repositories.Container{Kind: repositories.UserFollowing, ID: actorID}
	present, count, err := s.store.ToggleInSet(ctx, following, targetID)
	if err != nil {
		return ToggleResult{}, storeError(err, "user")
	}
	followers, err := s.mirror(ctx, actorID, targetID, present)
	if err != nil {
		return ToggleResult{}, err
	}
	if kind == repositories.UserFollowers {
		count = followers
	}
	return ToggleResult{Present: present, Count: count}, nil
}

// Follow adds the follow edge actor -> target. Following twice is not an error.
func (s *ToggleService) Follow(ctx context.Context, actorID, targetID string) (ToggleResult, error) {
	if err := s.checkFollow(ctx, actorID, targetID); err != nil {
		return ToggleResult{}, err
	}
	count, err := s.store.AddToSet(ctx, repositories.Container{Kind: repositories.UserFollowing, ID: actorID}, targetID)
	if err != nil {
		return ToggleResult{}, storeError(err, "user")
	}
	if _, err = s.mirror(ctx, actorID, targetID, true); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Present: true, Count: count}, nil
}

// Unfollow removes the follow edge actor -> target. Unfollowing a user that
// is not followed is not an error.
func (s *ToggleService) Unfollow(ctx context.Context, actorID, targetID string) (ToggleResult, error) {
	if err := s.checkFollow(ctx, actorID, targetID); err != nil {
		return ToggleResult{}, err
	}
	count, err := s.store.RemoveFromSet(ctx, repositories.Container{Kind: repositories.UserFollowing, ID: actorID}, targetID)
	if err != nil {
		return ToggleResult{}, storeError(err, "user")
	}
	if _, err = s.mirror(ctx, actorID, targetID, false); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Present: false, Count: count}, nil
}

// mirror writes the second half of a follow edge onto target.followers and
// returns that set's new size.
func (s *ToggleService) mirror(ctx context.Context, actorID, targetID string, follow bool) (int, error) {
	followers := repositories.Container{Kind: repositories.UserFollowers, ID: targetID}
	var (
		count int
		err   error
	)
	if follow {
		count, err = s.store.AddToSet(ctx, followers, actorID)
	} else {
		count, err = s.store.RemoveFromSet(ctx, followers, actorID)
	}
	if err == nil {
		return count, nil
	}
	logger.Warn("follower set out of sync with following set",
		zap.String("actor", actorID),
		zap.String("target", targetID),
		zap.Bool("follow", follow),
		zap.Error(err),
	)
	return 0, apperror.NewUpstream("failed to update the followed user's followers", err)
}
