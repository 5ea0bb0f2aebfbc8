package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/divhit/cobs-bread-research/config"
	"github.com/divhit/cobs-bread-research/internal/api"
	"github.com/divhit/cobs-bread-research/internal/database"
	"github.com/divhit/cobs-bread-research/internal/services"
	"github.com/divhit/cobs-bread-research/internal/store"
	"github.com/divhit/cobs-bread-research/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	st, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize task store: %v", err)
	}

	client := services.NewGeminiInteractionsClient(cfg.InteractionsURL, cfg.GoogleAPIKey)

	var prefetchers []services.Prefetcher
	if cfg.PlacesAPIKey != "" {
		prefetchers = append(prefetchers, services.NewPlacesPrefetcher(cfg.PlacesAPIKey))
	}
	if cfg.GoogleAPIKey != "" {
		prefetchers = append(prefetchers, services.NewGroundingPrefetcher(cfg.GoogleAPIKey, cfg.GroundingModel))
	}

	orchestrator := services.NewOrchestrator(st, client, prefetchers, services.OrchestratorConfig{
		AgentID:      cfg.AgentID,
		PollInterval: cfg.PollInterval,
		MaxPollTime:  cfg.MaxPollTime,
		OutputsDir:   cfg.OutputsDir,
	})

	router := api.NewRouter(st, orchestrator, cfg.GoogleAPIKey != "")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Log.Info("Server starting on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("HTTP server shutdown: " + err.Error())
	}
	// Give in-flight research tasks a chance to reach a terminal state.
	if err := orchestrator.Wait(shutdownCtx); err != nil {
		logger.Log.Warn("Abandoning in-flight research tasks")
	}
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return store.NewMemStore(), nil
	case config.StoreDriverRedis:
		client, err := database.ConnectRedis(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client)
	case config.StoreDriverSQLite:
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db)
	case config.StoreDriverFile:
		return store.NewFileStore(cfg.TasksFile)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}
