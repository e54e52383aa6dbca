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

	"github.com/NickBalanda/GymTracker/internal/api"
	"github.com/NickBalanda/GymTracker/internal/config"
	"github.com/NickBalanda/GymTracker/internal/generator"
	"github.com/NickBalanda/GymTracker/internal/kvstore"
	"github.com/NickBalanda/GymTracker/internal/repository/kv"
	"github.com/NickBalanda/GymTracker/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("Starting GymTracker server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	log.WithField("driver", cfg.Storage.Driver).Info("Configuration loaded.")

	// --- Durable storage ---
	store, err := newStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Could not initialize %s storage: %v", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("Failed to close storage: %v", err)
		}
	}()

	// --- Repositories ---
	planRepo := kv.NewPlanRepository(store)
	weightRepo := kv.NewWeightRepository(store)

	// --- Plan generator ---
	if cfg.Gemini.APIKey == "" {
		log.Warn("No Gemini API key configured; AI plan generation will be unavailable.")
	}
	planGenerator := generator.NewGeminiGenerator(cfg.Gemini)

	// --- Application state controller ---
	tracker := service.NewTrackerService(planRepo, weightRepo, planGenerator)
	if err := tracker.Load(context.Background()); err != nil {
		log.Fatalf("Could not load stored collections: %v", err)
	}
	log.WithFields(log.Fields{
		"plans":          len(tracker.Plans()),
		"weight_entries": len(tracker.WeightLog()),
	}).Info("Stored collections loaded.")

	// --- HTTP server ---
	router := gin.Default()
	api.SetupRoutes(router, tracker)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // generation requests can be slow
		IdleTimeout:  120 * time.Second,
	}

	log.Infof("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}

// newStore builds the configured key-value store backend.
func newStore(cfg config.StorageConfig) (kvstore.Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return kvstore.NewSQLiteStore(cfg.SQLite.Path)
	case "redis":
		return kvstore.NewRedisStore(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "mongo":
		return kvstore.NewMongoStore(cfg.Mongo.URI, cfg.Mongo.Database)
	case "s3":
		return kvstore.NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
