package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// ImageUpload is an image file received with a new post.
type ImageUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// CreatePostInput carries the fields of a new post. Image, when set, is
// uploaded and takes precedence over ImageURL.
type CreatePostInput struct {
	Type      models.PostType
	Content   string
	CodeBlock string
	Tags      []string
	ImageURL  string
	Image     *ImageUpload
}

// PostService creates, deletes and inspects posts.
type PostService struct {
	store    repositories.Store
	uploader Uploader
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store, uploader Uploader) *PostService {
	return &PostService{store: store, uploader: uploader}
}

// normalizeTags trims tags, drops empty ones and removes duplicates keeping
// the first occurrence.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Create stores a new post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID string, in CreatePostInput) (*models.PostSummary, error) {
	if !in.Type.Valid() {
		return nil, apperror.NewInvalidArgument("type must be one of question, thought")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperror.NewInvalidArgument("content is required")
	}
	author, err := s.store.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	image := strings.TrimSpace(in.ImageURL)
	if in.Image != nil {
		if image, err = s.upload(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		Type:      in.Type,
		Content:   content,
		CodeBlock: in.CodeBlock,
		Tags:      normalizeTags(in.Tags),
		Image:     image,
		AuthorID:  authorID,
	}
	if err = s.store.CreatePost(ctx, post); err != nil {
		return nil, storeError(err, "post")
	}
	summary := post.Summarize(author.ToCompact())
	return &summary, nil
}

func (s *PostService) upload(ctx context.Context, img *ImageUpload) (string, error) {
	if s.uploader == nil {
		return "", apperror.NewUpstream("image uploads are not configured", nil)
	}
	url, err := s.uploader.Upload(ctx, img.Name, img.ContentType, img.Body)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return "", err
		}
		return "", apperror.NewUpstream("image upload failed", err)
	}
	return url, nil
}

// Delete removes a post and its comments. Only the author may delete a post.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return storeError(err, "post")
	}
	if post.AuthorID != actorID {
		return apperror.NewUnauthorized("you can only delete your own posts")
	}

	comments, err := s.store.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return storeError(err, "comments")
	}
	for _, c := range comments {
		if err = s.store.DeleteComment(ctx, c.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return storeError(err, "comment")
		}
	}
	if err = s.store.DeletePost(ctx, postID); err != nil {
		return storeError(err, "post")
	}
	logger.Debug("post deleted", zap.String("post", postID), zap.Int("comments", len(comments)))
	return nil
}

// IsLiked reports whether the actor likes the post.
func (s *PostService) IsLiked(ctx context.Context, actorID, postID string) (bool, error) {
	liked, err := s.store.IsMember(ctx, repositories.Container{Kind: repositories.PostLikes, ID: postID}, actorID)
	if err != nil {
		return false, storeError(err, "post")
	}
	return liked, nil
}

// LikesCount returns the number of users liking the post.
func (s *PostService) LikesCount(ctx context.Context, postID string) (int, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return 0, storeError(err, "post")
	}
	return len(post.Likes), nil
}
