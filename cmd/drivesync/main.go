// Command drivesync imports analytics exports from a Google Drive folder into
// the shared snapshot cache so the server can warm from them.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/cache"
	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/andresuchdata/bookstock-insights/internal/drive"
	"github.com/andresuchdata/bookstock-insights/pkg/logger"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Google Drive service
	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	snapshots := cache.NewNoopSnapshotCache()
	timelines := cache.NewNoopTimelineCache()
	if cfg.Cache.Enabled {
		if snapshots, err = cache.NewSnapshotCache(cfg.Cache); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to snapshot cache")
		}
		if timelines, err = cache.NewTimelineCache(cfg.Cache); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to timeline cache")
		}
	} else {
		logger.Log.Warn().Msg("Cache disabled, imports will not be visible to the server")
	}

	source := drive.NewPayloadSource(driveService, cfg.Drive.FolderPath)
	importer := drive.NewImporter(source, snapshots, timelines)

	r := mux.NewRouter()
	drive.NewHandler(driveService, importer).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Drive.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Drive.Port).Str("source", source.Name()).Msg("Drive sync starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start drive sync")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Drive sync forced to shutdown")
	}
}
