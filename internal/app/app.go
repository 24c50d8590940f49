// Package app assembles the store, the external clients and the services
// into one value that the router and the CLI share.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/media"
	"github.com/anonto42/codecircle/backend/internal/repositories"
	"github.com/anonto42/codecircle/backend/internal/services"
	"github.com/anonto42/codecircle/backend/internal/session"
	"github.com/anonto42/codecircle/backend/pkg/config"
	"github.com/anonto42/codecircle/backend/pkg/firebase"
	"github.com/anonto42/codecircle/backend/pkg/logger"
)

// App holds everything a request handler may need.
type App struct {
	Config   *config.Config
	Store    repositories.Store
	Issuer   *session.Issuer
	Revoker  session.Revoker
	Uploader services.Uploader

	Users    *services.UserService
	Toggles  *services.ToggleService
	Feed     *services.FeedService
	Trending *services.TrendingService
	Tags     *services.TagService
	Posts    *services.PostService
	Comments *services.CommentService

	FirebaseLogin bool

	closers []func() error
}

// Deps are the pieces New would otherwise build from configuration.
type Deps struct {
	Store    repositories.Store
	Uploader services.Uploader
	Revoker  session.Revoker
	Verifier services.IDTokenVerifier
	Now      func() time.Time
}

// Build wires the services over deps. Missing optional deps fall back to the
// no-op uploader and revoker.
func Build(cfg *config.Config, deps Deps) *App {
	if deps.Uploader == nil {
		deps.Uploader = media.NopUploader{}
	}
	if deps.Revoker == nil {
		deps.Revoker = session.NopRevoker{}
	}

	a := &App{
		Config:   cfg,
		Store:    deps.Store,
		Issuer:   session.NewIssuer(cfg.Secret(), cfg.TokenTTL),
		Revoker:  deps.Revoker,
		Uploader: deps.Uploader,

		Users:    services.NewUserService(deps.Store, deps.Verifier),
		Toggles:  services.NewToggleService(deps.Store),
		Feed:     services.NewFeedService(deps.Store),
		Trending: services.NewTrendingService(deps.Store, deps.Now),
		Tags:     services.NewTagService(deps.Store),
		Posts:    services.NewPostService(deps.Store, deps.Uploader),
		Comments: services.NewCommentService(deps.Store),

		FirebaseLogin: deps.Verifier != nil,
	}
	return a
}

// New opens the store on db, connects the configured external services and
// builds the App. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, db *config.DB) (*App, error) {
	store, err := openStore(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	deps := Deps{Store: store}
	var closers []func() error

	revoker, closeRevoker, err := session.NewRevoker(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	deps.Revoker = revoker
	closers = append(closers, closeRevoker)
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, logged out tokens stay valid until they expire")
	}

	var fb *firebase.App
	if cfg.FirebaseEnabled() {
		if fb, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket); err != nil {
			return nil, err
		}
		deps.Verifier = NewFirebaseVerifier(fb.AuthClient)
	}

	switch cfg.MediaBackend {
	case config.MediaFirebase:
		if fb == nil {
			return nil, fmt.Errorf("firebase media needs FIREBASE_CREDENTIALS_PATH")
		}
		deps.Uploader = media.NewFirebaseUploader(fb.Storage, cfg.FirebaseStorageBucket)
	case config.MediaS3:
		if deps.Uploader, err = media.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket); err != nil {
			return nil, err
		}
	}
	logger.Info("media backend selected", zap.String("backend", cfg.MediaBackend))

	a := Build(cfg, deps)
	a.closers = closers
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.Store, error) {
	switch {
	case db.Mongo != nil:
		store := repositories.NewMongoStore(db.Mongo.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create MongoDB indexes: %w", err)
		}
		return store, nil
	case db.SQL != nil:
		store := repositories.NewSQLStore(db.SQL)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database migrations completed")
		return store, nil
	default:
		logger.Warn("using the in-memory store, data is lost on restart")
		return repositories.NewMemoryStore(), nil
	}
}

// Close releases the connections opened by New.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Error("failed to close resource", zap.Error(err))
		}
	}
}
