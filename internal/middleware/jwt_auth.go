package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/session"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

const claimsKey = "user"

// tokenFromRequest reads the session cookie, falling back to "Bearer <token>".
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// authenticate resolves the request's claims. A nil result with a nil error
// means no token was presented.
func authenticate(c echo.Context, issuer *session.Issuer, revoker session.Revoker) (*models.JwtCustomClaims, error) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return nil, nil
	}
	claims, err := issuer.Parse(tokenString)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	revoked, err := revoker.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		// Fail closed: a token we cannot check is not accepted.
		logger.Error("revocation check failed", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to verify session")
	}
	if revoked {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Session has been logged out")
	}
	return claims, nil
}

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
func JWTAuthMiddleware(issuer *session.Issuer, revoker session.Revoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, issuer, revoker)
			if err != nil {
				return err
			}
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth sets the user claims when a valid token is presented and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalJWTAuth(issuer *session.Issuer, revoker session.Revoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, issuer, revoker)
			if err != nil {
				return err
			}
			if claims != nil {
				c.Set(claimsKey, claims)
			}
			return next(c)
		}
	}
}

// Claims returns the authenticated user's claims, nil for anonymous requests.
func Claims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(claimsKey).(*models.JwtCustomClaims)
	return claims
}

// UserID returns the authenticated user's id, empty for anonymous requests.
func UserID(c echo.Context) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
