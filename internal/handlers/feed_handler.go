package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/internal/services"
)

// FeedHandler serves the read side of posts: feeds, single posts, trending
// topics and tag listings.
type FeedHandler struct {
	feed     *services.FeedService
	trending *services.TrendingService
	tags     *services.TagService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService, trending *services.TrendingService, tags *services.TagService) *FeedHandler {
	return &FeedHandler{feed: feed, trending: trending, tags: tags}
}

// RegisterFeedRoutes registers feed routes. optionalAuth identifies the
// viewer when a session is present.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, optionalAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetFeed, optionalAuth)
	g.GET("/post/:id", h.GetPost)
	g.GET("/trending-topics", h.GetTrendingTopics)
	g.GET("/tag/:tag", h.GetPostsByTag)
}

// GetFeed returns posts from everyone (type=all) or from followed users
// (type=following), newest or most liked first.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	limit, err := intQuery(c, "limit", services.DefaultFeedLimit)
	if err != nil {
		return err
	}
	scope := services.Scope(c.QueryParam("type"))
	order := services.FeedOrder(c.QueryParam("sort"))

	posts, err := h.feed.Assemble(c.Request().Context(), middleware.UserID(c), scope, limit, order)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost returns one post with its comments
func (h *FeedHandler) GetPost(c echo.Context) error {
	post, err := h.feed.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *FeedHandler) GetTrendingTopics(c echo.Context) error {
	days, err := intQuery(c, "days", services.DefaultTrendingDays)
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", services.DefaultTrendingLimit)
	if err != nil {
		return err
	}

	topics, err := h.trending.Trending(c.Request().Context(), days, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, topics)
}

// GetPostsByTag returns one page of posts carrying the tag
func (h *FeedHandler) GetPostsByTag(c echo.Context) error {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := intQuery(c, "limit", services.DefaultTagPageSize)
	if err != nil {
		return err
	}

	result, err := h.tags.ByTag(c.Request().Context(), c.Param("tag"), page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
