package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/commentbypost/:id", h.CreateComment, requireAuth)
	g.GET("/commentsbypost/:id", h.GetCommentsByPost)
	g.GET("/comment/:id", h.GetComment)
	g.PATCH("/update-comment/:id", h.UpdateComment, requireAuth)
	g.DELETE("/delete-comment/:id", h.DeleteComment, requireAuth)
	g.POST("/like/:id", h.LikeComment, requireAuth)
}

// CreateComment adds a comment to the post named by :id
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Add(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPost lists a post's comments, oldest first
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	comments, err := h.comments.ListByPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// GetComment retrieves a comment by ID
func (h *CommentHandler) GetComment(c echo.Context) error {
	comment, err := h.comments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// UpdateComment replaces the content of the caller's comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Update(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes the caller's comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.comments.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Message{Message: "Comment deleted successfully"})
}

// LikeComment likes the comment, or unlikes it when the caller already does
func (h *CommentHandler) LikeComment(c echo.Context) error {
	res, err := h.comments.Like(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: res.Present, LikesCount: res.Count})
}
