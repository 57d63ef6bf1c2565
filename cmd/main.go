package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"survive-sports/config"
	"survive-sports/db"
	"survive-sports/handlers"
	"survive-sports/repositories"
	api "survive-sports/routes"
	"survive-sports/services"
	"survive-sports/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	client, err := db.Connect(cfg.MongoURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to mongo", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect from mongo", slog.Any("error", err))
		} else {
			logger.Info("mongo connection closed")
		}
	}()
	logger.Info("mongo connection established")

	database := client.Database(cfg.MongoDatabase)

	// Optional operator results feed.
	var feedFetcher storage.FeedFetcher
	if cfg.FeedConfigured() {
		feedFetcher, err = storage.NewCloudflareR2Fetcher(storage.CloudflareR2FetcherConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			logger.Error("failed to initialize results feed fetcher", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("results feed fetcher initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("results feed not configured, inline choice list replacement only")
	}

	picksRepo := repositories.NewMongoPicksRepository(database)
	choiceListRepo := repositories.NewMongoChoiceListRepository(database)
	userRepo := repositories.NewMongoUserRepository(database)
	logger.Info("repositories initialized")

	clock := clockwork.NewRealClock()
	roundService := services.NewRoundService(services.DefaultRoundSchedule(), clock)
	bracketService := services.NewBracketService(picksRepo, choiceListRepo, userRepo, roundService, logger)
	feedService := services.NewFeedService(choiceListRepo, feedFetcher, cfg.FeedKey, logger)
	updateService := services.NewUpdateService(picksRepo, choiceListRepo, roundService, cfg.UpdateInterval, clock, logger)
	logger.Info("services initialized")

	// Background reconciliation of pick entries against the choice list.
	jobCtx, stopJob := context.WithCancel(context.Background())
	defer stopJob()
	go updateService.Run(jobCtx)

	mmHandler := handlers.NewMarchMadnessHandler(bracketService, feedService)

	router := chi.NewRouter()
	api.SetupRoutes(router, mmHandler, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopJob()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
