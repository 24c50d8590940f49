package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/anonto42/codecircle/backend/internal/app"
	"github.com/anonto42/codecircle/backend/internal/handlers"
	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, a *app.App) {
	requireAuth := middleware.JWTAuthMiddleware(a.Issuer, a.Revoker)
	optionalAuth := middleware.OptionalJWTAuth(a.Issuer, a.Revoker)
	authLimit := eMiddleware.RateLimiter(eMiddleware.NewRateLimiterMemoryStore(rate.Limit(a.Config.AuthRateLimit)))

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Auth and user routes ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(a.Users, a.Issuer, a.Revoker, handlers.AuthOptions{
		SecureCookie:  a.Config.IsProduction(),
		FirebaseLogin: a.FirebaseLogin,
	})
	authHandler.RegisterAuthRoutes(authGroup, requireAuth, authLimit)
	handlers.NewUserHandler(a.Users).RegisterUserRoutes(authGroup, requireAuth)
	handlers.NewFollowHandler(a.Toggles).RegisterFollowRoutes(authGroup, requireAuth)

	// --- Post routes ---
	postGroup := e.Group("/post")
	handlers.NewPostHandler(a.Posts, a.Config.MaxUploadBytes).RegisterPostRoutes(postGroup, requireAuth)
	handlers.NewFeedHandler(a.Feed, a.Trending, a.Tags).RegisterFeedRoutes(postGroup, optionalAuth)
	handlers.NewLikeHandler(a.Toggles, a.Posts).RegisterLikeRoutes(postGroup, requireAuth)

	// --- Comment routes ---
	commentGroup := e.Group("/comment")
	handlers.NewCommentHandler(a.Comments).RegisterCommentRoutes(commentGroup, requireAuth)

	logger.Info("routes configured",
		zap.Int("count", len(e.Routes())),
		zap.Bool("firebase_login", a.FirebaseLogin),
	)
}
