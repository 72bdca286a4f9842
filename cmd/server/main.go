package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/screening-backend/config"
	"github.com/ikkim/screening-backend/internal/app/controller"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/internal/app/service"
	"github.com/ikkim/screening-backend/internal/db"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/ikkim/screening-backend/internal/router"
	"github.com/ikkim/screening-backend/internal/scheduler"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/internal/storage"
	ws "github.com/ikkim/screening-backend/internal/websocket"
	"github.com/ikkim/screening-backend/pkg/logger"
	"github.com/ikkim/screening-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting screening backend", logger.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(db.GetDB(), cfg); err != nil {
		logger.Fatal("Failed to seed database", err)
	}

	// Redis backs token revocation and the permission cache. Without it,
	// logout cannot revoke tokens and permissions are read from the database
	// on every request.
	var revoker service.TokenRevoker
	var permissionCache service.PermissionCache
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer redis.Close()
		revoker = redis.TokenStore{}
		permissionCache = redis.NewPermissionCache(redis.GetClient(), cfg.Redis.PermissionTTL)
	} else {
		logger.Warn("Redis disabled, token revocation is unavailable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	configRepo := repository.NewConfigRepository(db.GetDB())

	// Initialize services
	authzService := service.NewAuthorizationService(userRepo, permissionCache)
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	userService := service.NewUserService(userRepo, authzService)
	screeningService := service.NewScreeningService(screening.NewEngine(screening.Levenshtein{}), hub)
	personService := service.NewPersonService(db.GetDB(), screeningService)
	blacklistService := service.NewBlacklistService(db.GetDB(), screeningService)
	matchService := service.NewMatchService(db.GetDB())
	configService := service.NewConfigService(configRepo)

	var uploader service.ObjectUploader
	if cfg.Export.Enabled {
		uploader = storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey)
	}
	exportService := service.NewLedgerExportService(matchService, uploader, cfg.Export.Prefix)

	if cfg.Export.Enabled {
		exportScheduler := scheduler.NewLedgerExportScheduler(cfg.Export.Schedule, exportService)
		if err := exportScheduler.Start(); err != nil {
			logger.Fatal("Failed to start ledger export scheduler", err)
		}
		defer exportScheduler.Stop()
	}

	// Initialize controllers
	r := router.NewRouter(
		controller.NewAuthController(authService, authzService),
		controller.NewUserController(userService),
		controller.NewPersonController(personService, matchService),
		controller.NewBlacklistController(blacklistService, matchService),
		controller.NewMatchController(matchService, exportService, hub, cfg.CORS.AllowedOrigins),
		controller.NewConfigController(configService),
		middleware.NewAuthMiddleware(authService, authzService),
		pingDatabase,
		cfg,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", logger.Fields{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err)
	}
	logger.Info("Server stopped successfully")
}

func pingDatabase() error {
	sqlDB, err := db.GetDB().DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
