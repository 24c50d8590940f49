package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

// CommentService manages comments and keeps each post's comment sequence in
// step with the comment records.
type CommentService struct {
	store   repositories.Store
	toggles *ToggleService
}

// NewCommentService creates a new CommentService
func NewCommentService(store repositories.Store) *CommentService {
	return &CommentService{store: store, toggles: NewToggleService(store)}
}

func (s *CommentService) view(ctx context.Context, c *models.Comment) (*models.CommentView, error) {
	authors, err := resolveAuthors(ctx, s.store, []string{c.AuthorID})
	if err != nil {
		return nil, err
	}
	v := c.View(authors.get(c.AuthorID))
	return &v, nil
}

// Add creates a comment and appends it to the post's comment sequence. If the
// append fails the comment record is removed again.
func (s *CommentService) Add(ctx context.Context, actorID, postID, content string) (*models.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.NewInvalidArgument("content is required")
	}
	if _, err := s.store.GetPostByID(ctx, postID); err != nil {
		return nil, storeError(err, "post")
	}

	comment := &models.Comment{Content: content, AuthorID: actorID, PostID: postID}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, storeError(err, "comment")
	}
	container := repositories.Container{Kind: repositories.PostComments, ID: postID}
	if _, err := s.store.AddToSet(ctx, container, comment.ID); err != nil {
		if delErr := s.store.DeleteComment(ctx, comment.ID); delErr != nil {
			logger.Error("orphaned comment left behind",
				zap.String("comment", comment.ID),
				zap.String("post", postID),
				zap.Error(delErr),
			)
		}
		return nil, apperror.NewUpstream("failed to attach comment to post", err)
	}
	return s.view(ctx, comment)
}

// Get returns one comment with its author.
func (s *CommentService) Get(ctx context.Context, commentID string) (*models.CommentView, error) {
	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "comment")
	}
	return s.view(ctx, comment)
}

// ListByPost returns a post's comments oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	if _, err := s.store.GetPostByID(ctx, postID); err != nil {
		return nil, storeError(err, "post")
	}
	comments, err := s.store.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, storeError(err, "comments")
	}
	authorIDs := make([]string, len(comments))
	for i := range comments {
		authorIDs[i] = comments[i].AuthorID
	}
	authors, err := resolveAuthors(ctx, s.store, authorIDs)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, len(comments))
	for i := range comments {
		views[i] = comments[i].View(authors.get(comments[i].AuthorID))
	}
	return views, nil
}

// ownComment loads a comment and checks that actorID wrote it.
func (s *CommentService) ownComment(ctx context.Context, actorID, commentID string) (*models.Comment, error) {
	comment, err := s.store.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "comment")
	}
	if comment.AuthorID != actorID {
		return nil, apperror.NewUnauthorized("you can only change your own comments")
	}
	return comment, nil
}

// Update replaces the content of the actor's comment.
func (s *CommentService) Update(ctx context.Context, actorID, commentID, content string) (*models.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.NewInvalidArgument("content is required")
	}
	if _, err := s.ownComment(ctx, actorID, commentID); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateCommentContent(ctx, commentID, content)
	if err != nil {
		return nil, storeError(err, "comment")
	}
	return s.view(ctx, updated)
}

// Delete pulls the comment from its post's sequence, then removes the record.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	comment, err := s.ownComment(ctx, actorID, commentID)
	if err != nil {
		return err
	}
	container := repositories.Container{Kind: repositories.PostComments, ID: comment.PostID}
	if _, err = s.store.RemoveFromSet(ctx, container, comment.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return storeError(err, "post")
	}
	if err = s.store.DeleteComment(ctx, comment.ID); err != nil {
		return storeError(err, "comment")
	}
	return nil
}

// Like toggles the actor's like on a comment.
func (s *CommentService) Like(ctx context.Context, actorID, commentID string) (ToggleResult, error) {
	return s.toggles.LikeComment(ctx, actorID, commentID)
}
