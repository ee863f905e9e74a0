package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/qubitkit/qubitkit/internal/config"
	"github.com/qubitkit/qubitkit/internal/database"
	"github.com/qubitkit/qubitkit/internal/modules/calculations"
	"github.com/qubitkit/qubitkit/internal/scheduler"
	"github.com/qubitkit/qubitkit/internal/server"
	"github.com/qubitkit/qubitkit/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", false)
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.DevMode)
	log.Info().Msg("Starting qubitkit")

	// Initialize the spectrum cache database
	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "calculations.db"),
		Profile: database.ProfileCache,
		Name:    "calculations",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache database")
	}
	defer db.Close()

	cache, err := calculations.NewCache(db, cfg.CacheTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize spectrum cache")
	}

	// Initialize scheduler and the cache janitor
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	pruneJob := calculations.NewPruneJob(cache)
	if err := sched.AddJob("@hourly", pruneJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache janitor")
	}
	// Clear anything that expired while the service was down.
	if err := sched.RunNow(pruneJob); err != nil {
		log.Warn().Err(err).Msg("Startup cache prune failed")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Log:    log,
		Config: cfg,
		Cache:  cache,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
