package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/app"
	"github.com/anonto42/codecircle/backend/internal/handlers"
	"github.com/anonto42/codecircle/backend/internal/router"
	"github.com/anonto42/codecircle/backend/pkg/config"
	"github.com/anonto42/codecircle/backend/pkg/logger"
	"github.com/anonto42/codecircle/backend/pkg/telemetry"
	"github.com/anonto42/codecircle/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := logger.Init(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, telemetry.Options{
		Env:          cfg.Env,
		SentryDSN:    cfg.SentryDSN,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.L().Fatal("failed to initialize telemetry", zap.Error(err))
	}

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logger.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.CloseDB()

	a, err := app.New(ctx, cfg, db)
	if err != nil {
		logger.L().Fatal("failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	config.SetupMiddleware(e, cfg, tel.TracingEnabled())
	router.SetupRoutes(e, a)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", zap.Error(err))
	}
}
