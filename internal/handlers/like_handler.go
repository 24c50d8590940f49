package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/internal/services"
)

// LikeHandler handles HTTP requests related to post likes
type LikeHandler struct {
	toggles *services.ToggleService
	posts   *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(toggles *services.ToggleService, posts *services.PostService) *LikeHandler {
	return &LikeHandler{toggles: toggles, posts: posts}
}

// LikeResponse reports the caller's like state after a toggle.
type LikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/like/:id", h.LikePost, requireAuth)
	g.GET("/is-liked/:id", h.IsLiked, requireAuth)
	g.GET("/likes-count/:id", h.LikesCount)
}

// LikePost likes the post, or unlikes it when the caller already does
func (h *LikeHandler) LikePost(c echo.Context) error {
	res, err := h.toggles.LikePost(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: res.Present, LikesCount: res.Count})
}

func (h *LikeHandler) IsLiked(c echo.Context) error {
	liked, err := h.posts.IsLiked(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_liked": liked})
}

func (h *LikeHandler) LikesCount(c echo.Context) error {
	count, err := h.posts.LikesCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"likes_count": count})
}
