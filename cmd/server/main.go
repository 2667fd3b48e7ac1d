package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/repofolio/repofolio/internal/api"
	"github.com/repofolio/repofolio/internal/auth"
	"github.com/repofolio/repofolio/internal/cache"
	"github.com/repofolio/repofolio/internal/config"
	"github.com/repofolio/repofolio/internal/db"
	"github.com/repofolio/repofolio/internal/github"
	"github.com/repofolio/repofolio/internal/profile"
	"github.com/repofolio/repofolio/internal/summary"
)

// @title Repofolio API
// @version 1.0
// @description Discovers the GitHub repositories a user owns or contributed to and prepares them for a portfolio. Every data route is served under the /api/v1 prefix, for example GET /api/v1/repos/all. OAuth (/auth), /health and /swagger are not prefixed.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sharedCache := cache.New(ctx, cache.OptionsFromConfig(cfg.Cache), logger)

	gateway, err := github.NewClient(cfg.GitHub, logger, github.WithMaxPages(cfg.Discovery.MaxPages))
	if err != nil {
		logger.Fatalf("Failed to initialize GitHub client: %v", err)
	}

	store, err := openStore(cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize profile store: %v", err)
	}

	// Initialize services
	viewers := github.NewService(gateway, logger)
	commits := github.NewCommitService(gateway, sharedCache, cfg.Discovery, logger)
	repositories := github.NewRepositoryService(gateway, commits, sharedCache, cfg.Discovery, logger)
	discovery := github.NewDiscoveryService(gateway, viewers, repositories, cfg.Discovery, logger)
	profiles := profile.NewService(store, sharedCache, cfg.Storage.ProfileCacheTTL, logger)

	var generator summary.Generator
	if gemini, err := summary.NewGeminiGenerator(ctx, cfg.Summary); err != nil {
		logger.WithError(err).Warn("AI summaries disabled")
	} else {
		generator = gemini
	}
	summaries := summary.NewService(repositories, commits, viewers, generator, cfg.Summary, logger)

	apiHandler := api.NewHandler(discovery, viewers, profiles, summaries, sharedCache.Backend(), logger)
	authHandler := auth.NewHandler(cfg, logger)
	if !cfg.GitHub.OAuthConfigured() {
		logger.Warn("GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET not set, OAuth login disabled")
	}

	router := api.SetupRouter(apiHandler, authHandler, cfg.AllowedOrigins, logger)

	// Create HTTP server
	// Discovery with augmentation can take a while for large accounts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"cache": sharedCache.Backend(),
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	if err := sharedCache.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close cache")
	}
	if err := store.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close profile store")
	}
	logger.Info("Server exited properly")
}

// openStore uses Postgres when a connection string is configured and the
// file store otherwise
func openStore(cfg *config.StorageConfig, logger *logrus.Logger) (db.Store, error) {
	if cfg.DBConnectionString == "" {
		store, err := db.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.WithField("data_dir", cfg.DataDir).Info("Using file profile store")
		return store, nil
	}

	var store *db.PostgresStore
	if err := retry(3, 5*time.Second, func() error {
		var err error
		store, err = db.NewPostgresStore(cfg.DBConnectionString, logger)
		return err
	}); err != nil {
		return nil, err
	}

	// Run migrations with retry logic
	if err := retry(3, 5*time.Second, store.Migrate); err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("Using Postgres profile store")
	return store, nil
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
