package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/middleware"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/services"
	"github.com/anonto42/codecircle/backend/internal/session"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users         *services.UserService
	issuer        *session.Issuer
	revoker       session.Revoker
	secureCookie  bool
	firebaseLogin bool
}

// AuthOptions tunes the session cookie and the optional login methods.
type AuthOptions struct {
	SecureCookie  bool
	FirebaseLogin bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *services.UserService, issuer *session.Issuer, revoker session.Revoker, opts AuthOptions) *AuthHandler {
	return &AuthHandler{
		users:         users,
		issuer:        issuer,
		revoker:       revoker,
		secureCookie:  opts.SecureCookie,
		firebaseLogin: opts.FirebaseLogin,
	}
}

// AuthResponse is returned after a successful login or registration. The
// session token itself travels in the cookie.
type AuthResponse struct {
	User models.PublicUser `json:"user"`
}

// RegisterAuthRoutes registers authentication-related routes. limit guards
// the credential endpoints and requireAuth protects logout.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth, limit echo.MiddlewareFunc) {
	g.POST("/register", h.Register, limit)
	g.POST("/login", h.Login, limit)
	if h.firebaseLogin {
		g.POST("/firebase-login", h.FirebaseLogin, limit)
	}
	g.POST("/logout", h.Logout, requireAuth)
}

// Register creates an account and starts a session for it
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.Request().Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}
	return h.startSession(c, http.StatusCreated, user)
}

// Login checks email and password and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, http.StatusOK, user)
}

// FirebaseLogin exchanges a Firebase ID token for a session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return h.startSession(c, http.StatusOK, user)
}

// Logout revokes the current token and clears the session cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return apperror.NewUnauthenticated("Authentication required")
	}

	until := time.Now().Add(h.issuer.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := h.revoker.Revoke(c.Request().Context(), claims.ID, until); err != nil {
		return apperror.NewUpstream("failed to revoke session", err)
	}

	c.SetCookie(h.cookie("", -1, time.Unix(0, 0)))
	return c.JSON(http.StatusOK, Message{Message: "Logged out successfully"})
}

func (h *AuthHandler) startSession(c echo.Context, status int, user *models.User) error {
	token, claims, err := h.issuer.Issue(user)
	if err != nil {
		return apperror.NewInternal("failed to issue session token", err)
	}
	c.SetCookie(h.cookie(token, int(h.issuer.TTL().Seconds()), claims.ExpiresAt.Time))
	logger.Debug("session started", zap.String("user", user.ID))
	return c.JSON(status, AuthResponse{User: user.ToPublic()})
}

func (h *AuthHandler) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}
