package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/YisusLuligo/chat/internal/factory"
	"github.com/YisusLuligo/chat/internal/server"
	redissnapshot "github.com/YisusLuligo/chat/internal/snapshot/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		StorageType: os.Getenv("CHAT_STORAGE"),
		DataDir:     os.Getenv("CHAT_DATA_DIR"),
		Logger:      logger,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("CHAT_REDIS_URL")
		if redisURL == "" {
			logger.Error("CHAT_REDIS_URL required when CHAT_STORAGE=redis")
			os.Exit(1)
		}
		redisCfg := redissnapshot.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load persisted state and start the coordinator
	if err := app.Coordinator.Start(context.Background()); err != nil {
		logger.Error("failed to start coordinator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create transport router
	router := server.NewRouter(server.RouterConfig{
		Logger:      logger,
		Coordinator: app.Coordinator,
	})

	// Create server
	serverConfig := server.DefaultConfig()
	if port := os.Getenv("CHAT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			serverConfig.Port = p
		}
	}
	srv := server.New(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("server started", slog.String("addr", srv.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	// Final snapshot of all three state slices before exit
	if err := app.Coordinator.Stop(context.Background()); err != nil {
		logger.Error("coordinator stop error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := app.Store.Close(); err != nil {
		logger.Error("store close error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
