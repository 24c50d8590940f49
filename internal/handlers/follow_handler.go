package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/internal/services"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	toggles *services.ToggleService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(toggles *services.ToggleService) *FollowHandler {
	return &FollowHandler{toggles: toggles}
}

// FollowResponse reports the caller's follow state after the request.
type FollowResponse struct {
	Message        string `json:"message"`
	Following      bool   `json:"following"`
	FollowingCount int    `json:"following_count"`
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/:id/follow", h.FollowUser, requireAuth)
	g.POST("/:id/unfollow", h.UnfollowUser, requireAuth)
}

// FollowUser follows a user. Following someone already followed succeeds.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	res, err := h.toggles.Follow(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, FollowResponse{
		Message:        "Followed successfully",
		Following:      res.Present,
		FollowingCount: res.Count,
	})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	res, err := h.toggles.Unfollow(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, FollowResponse{
		Message:        "Unfollowed successfully",
		Following:      res.Present,
		FollowingCount: res.Count,
	})
}
