package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

// ExternalIdentity is what a verified third-party ID token says about its holder.
type ExternalIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// IDTokenVerifier checks a third-party ID token.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   string
}

var errBadCredentials = apperror.NewUnauthenticated("invalid email or password")

// UserService registers, authenticates and looks up users.
type UserService struct {
	store    repositories.UserStore
	verifier IDTokenVerifier
	hashCost int
}

// NewUserService creates a new UserService. verifier may be nil when
// third-party login is not configured.
func NewUserService(store repositories.UserStore, verifier IDTokenVerifier) *UserService {
	return &UserService{store: store, verifier: verifier, hashCost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperror.NewInvalidArgument("name, email and password are required")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.NewConflict("an account with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeError(err, "user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Avatar:   strings.TrimSpace(in.Avatar),
	}
	if err = s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.NewConflict("an account with this email already exists")
		}
		return nil, storeError(err, "user")
	}
	return user, nil
}

// Login checks an email and password pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, storeError(err, "user")
	}
	// Accounts created through third-party login have no password.
	if user.Password == "" {
		return nil, errBadCredentials
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return user, nil
}

// FirebaseLogin verifies a Firebase ID token and returns the matching user,
// linking an existing account by email or creating a new one.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (*models.User, error) {
	if s.verifier == nil {
		return nil, apperror.NewUpstream("firebase login is not configured", nil)
	}
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, apperror.New(apperror.Unauthenticated, "invalid firebase ID token", err)
	}
	email := normalizeEmail(identity.Email)

	user, err := s.store.GetUserByFirebaseUID(ctx, identity.UID)
	switch {
	case err == nil:
		return user, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, storeError(err, "user")
	}

	if email == "" {
		return nil, apperror.NewInvalidArgument("firebase account has no email address")
	}
	user, err = s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = identity.UID
		if user.Avatar == "" {
			user.Avatar = identity.Picture
		}
		if err = s.store.UpdateUser(ctx, user); err != nil {
			return nil, storeError(err, "user")
		}
		return user, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, storeError(err, "user")
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &models.User{
		Name:        name,
		Email:       email,
		Avatar:      identity.Picture,
		FirebaseUID: identity.UID,
	}
	if err = s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// Me returns the full account of the signed-in user.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// Get returns a user's public profile.
func (s *UserService) Get(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	public := user.ToPublic()
	return &public, nil
}

// List returns every user's public profile, oldest account first.
func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "users")
	}
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].ToPublic()
	}
	return out, nil
}
