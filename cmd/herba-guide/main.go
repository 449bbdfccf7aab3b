package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"herba-guide/internal/api"
	"herba-guide/internal/api/handlers"
	"herba-guide/internal/classifier"
	"herba-guide/internal/history"
	"herba-guide/internal/repository"
	"herba-guide/internal/service"
	"herba-guide/internal/storage"
	"herba-guide/pkg/auth"
	"herba-guide/pkg/config"
	"herba-guide/pkg/logger"
	"herba-guide/pkg/postgres"
	"herba-guide/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Herba Guide service")

	// Remedy catalog database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// History store: redis when configured, otherwise in-process
	var store history.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = history.NewRedisStore(redisClient, appLogger)
	} else {
		appLogger.Warn("REDIS_ADDR not set, prediction history is in-memory and lost on restart")
		store = history.NewMemoryStore()
	}

	// Photo storage
	var media service.MediaStorage
	if cfg.Storage.Bucket != "" {
		bucket, err := storage.NewBucketService(ctx, &cfg.Storage)
		if err != nil {
			appLogger.Fatal("Failed to initialize photo storage", zap.Error(err))
		}
		defer bucket.Close()
		media = bucket
	} else {
		appLogger.Warn("GCS_BUCKET_NAME not set, prediction photos will not be stored")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	remedyRepo := repository.NewRemedyRepository(db, appLogger)

	// JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	modelClient := classifier.NewClient(&cfg.Classifier, appLogger)
	predictionService := service.NewPredictionService(
		modelClient, remedyRepo, media, store, &cfg.Pipeline, appLogger,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	predictHandler := handlers.NewPredictHandler(predictionService, appLogger)
	historyHandler := handlers.NewHistoryHandler(predictionService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, predictHandler, historyHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
