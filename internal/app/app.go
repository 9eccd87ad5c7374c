package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/config"
	"tutormatch_backend/internal/database"
	"tutormatch_backend/internal/handlers"
	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/middleware"
	"tutormatch_backend/internal/routes"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/storage"
	"tutormatch_backend/internal/validator"
	"tutormatch_backend/internal/wechat"
	"tutormatch_backend/internal/workers"
	"tutormatch_backend/pkg/apperrors"
)

const shutdownTimeout = 10 * time.Second

// Bootstrap loads config, initialises logging and opens the database.
func Bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	config.AppConfig = cfg

	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(!cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, !cfg.IsProduction())
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected")
	return cfg, db, nil
}

// Run serves HTTP until SIGINT/SIGTERM.
func Run() error {
	cfg, db, err := Bootstrap()
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ginRouter, sc, err := SetupRouter(ctx, cfg, db)
	if err != nil {
		return err
	}

	if _, err := sc.AuthService.SeedFirstAdmin(ctx, db.WithContext(ctx), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed first admin: %w", err)
	}

	workers.NewBookingWorker(db.WithContext(ctx), sc.BookingService, cfg.Workers.BookingInterval).Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server startup error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Migrate creates or updates the schema and exits.
func Migrate() error {
	_, db, err := Bootstrap()
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	logger.Info("Migrations applied")
	return nil
}

// Seed creates the first admin from the given credentials, falling back to config.
func Seed(email, password string) error {
	cfg, db, err := Bootstrap()
	if err != nil {
		return err
	}
	if email == "" {
		email = cfg.Admin.Email
	}
	if password == "" {
		password = cfg.Admin.Password
	}

	ctx := context.Background()
	sc, err := buildServices(ctx, cfg, newTokenManager(cfg))
	if err != nil {
		return err
	}

	created, err := sc.AuthService.SeedFirstAdmin(ctx, db.WithContext(ctx), email, password)
	if err != nil {
		return err
	}
	logger.Info("Admin seeding finished", "created", created)
	return nil
}

// SetupRouter builds services, handlers and the gin engine.
func SetupRouter(ctx context.Context, cfg *config.Config, db *gorm.DB) (*gin.Engine, *services.ServiceContainer, error) {
	tokens := newTokenManager(cfg)
	sc, err := buildServices(ctx, cfg, tokens)
	if err != nil {
		return nil, nil, err
	}

	base := handlers.NewBaseHandler(validator.New(), tokens)
	appHandlers := handlers.NewAppHandlers(base, sc, cfg.Upload.MaxSize)

	ginRouter := initializeGinRouter(cfg, db)

	var static *routes.StaticMount
	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		static = &routes.StaticMount{URLPrefix: cfg.Storage.BaseURL, Dir: cfg.Storage.BasePath}
	}
	routes.RegisterRoutes(ginRouter, appHandlers, static)

	return ginRouter, sc, nil
}

func newTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
}

func buildServices(ctx context.Context, cfg *config.Config, tokens *auth.TokenManager) (*services.ServiceContainer, error) {
	storageInstance, err := storage.NewStorage(ctx, storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	var wx wechat.Authenticator
	if cfg.Wechat.Mock {
		logger.Warn("WeChat login is mocked; do not enable in production")
		wx = wechat.MockClient{}
	} else {
		wx = wechat.NewClient(cfg.Wechat.AppID, cfg.Wechat.AppSecret)
	}

	return services.NewServiceContainer(services.Dependencies{
		Tokens:  tokens,
		Wechat:  wx,
		Storage: storageInstance,
		Upload: services.UploadOptions{
			MaxSize:      cfg.Upload.MaxSize,
			AllowedTypes: cfg.Upload.AllowedTypes,
			AvatarSide:   cfg.Upload.AvatarSide,
		},
		ExportMaxRows: cfg.Export.MaxRows,
	}), nil
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
