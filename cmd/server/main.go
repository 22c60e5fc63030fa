package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/api"
	"taskboard/internal/api/middleware"
	"taskboard/internal/app/service"
	"taskboard/internal/common/security"
	"taskboard/internal/domain/repository"
	"taskboard/internal/platform/config"
	"taskboard/internal/platform/database"
	"taskboard/internal/platform/logging"
	"taskboard/internal/platform/redisdb"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	logger.Info("configuration loaded")

	tokens := security.NewTokenService(cfg.Algorithm, cfg.SecretKey, cfg.TokenTTL)

	ctx := context.Background()

	mongoClient, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer func() {
		if err := database.Close(mongoClient); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Could not create indexes: %v", err)
	}
	logging.ForComponent(logger, "database").Info("mongo connection established", "database", cfg.MongoDB)

	redisClient, err := redisdb.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Info("redis connection established")

	userRepo := repository.NewMongoUserRepository(db)
	taskRepo := repository.NewMongoTaskRepository(db)

	authService := service.NewAuthService(userRepo, taskRepo, tokens, logging.ForComponent(logger, "auth"))
	taskService := service.NewTaskService(taskRepo, logging.ForComponent(logger, "tasks"))

	loginLimiter := middleware.LoginRateLimiter(
		redisClient,
		cfg.LoginRateLimit,
		cfg.LoginRateWindow,
		logging.ForComponent(logger, "auth"),
	)

	router := api.NewRouter(authService, taskService, tokens, userRepo, loginLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	logger.Info("server stopped gracefully")
}
