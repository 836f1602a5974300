package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/api"
	"github.com/andresuchdata/bookstock-insights/internal/cache"
	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/andresuchdata/bookstock-insights/internal/drive"
	"github.com/andresuchdata/bookstock-insights/internal/events"
	"github.com/andresuchdata/bookstock-insights/internal/export"
	"github.com/andresuchdata/bookstock-insights/internal/refresh"
	"github.com/andresuchdata/bookstock-insights/internal/repository"
	"github.com/andresuchdata/bookstock-insights/internal/repository/postgres"
	"github.com/andresuchdata/bookstock-insights/internal/selection"
	"github.com/andresuchdata/bookstock-insights/internal/service"
	"github.com/andresuchdata/bookstock-insights/internal/storage"
	"github.com/andresuchdata/bookstock-insights/internal/upstream"
	"github.com/andresuchdata/bookstock-insights/pkg/logger"
	"github.com/gin-gonic/gin"
)

const eventSource = "bookstock-insights"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Log.Format, cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := newSource(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize snapshot source")
	}

	snapshots, timelines := newCaches(cfg.Cache)

	repo, closeRepo := newRepository(ctx, cfg.Database)
	defer closeRepo()

	publisher := newPublisher(cfg.Events)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}()

	poller := refresh.NewPoller(source, snapshots, cfg.Refresh.Interval())
	sessions := selection.NewRegistry()

	services := &api.Services{
		Dashboard:     service.NewDashboardService(poller, timelines, repo),
		Approvals:     service.NewApprovalService(repo, publisher, eventSource),
		Quantities:    service.NewQuantityService(repo, publisher, eventSource),
		Sessions:      sessions,
		Exporter:      newExporter(ctx, cfg.Storage),
		RefreshStatus: poller.Status,
	}

	if cfg.Refresh.Enabled {
		go poller.Run(ctx)
	} else {
		if !poller.Warm(ctx) {
			_ = poller.Refresh(ctx)
		}
	}
	go pruneSessions(ctx, sessions, cfg.Server.SessionIdle())

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("source", source.Name()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func newSource(ctx context.Context, cfg *config.Config) (refresh.Source, error) {
	if cfg.Refresh.Source == "drive" {
		files, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		return drive.NewPayloadSource(files, cfg.Drive.FolderPath), nil
	}
	return upstream.NewClient(ctx, cfg.Upstream), nil
}

func newCaches(cfg config.CacheConfig) (cache.SnapshotCache, cache.TimelineCache) {
	if !cfg.Enabled {
		return cache.NewNoopSnapshotCache(), cache.NewNoopTimelineCache()
	}

	snapshots, err := cache.NewSnapshotCache(cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Snapshot cache unavailable, continuing without it")
		snapshots = cache.NewNoopSnapshotCache()
	}
	timelines, err := cache.NewTimelineCache(cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Timeline cache unavailable, continuing without it")
		timelines = cache.NewNoopTimelineCache()
	}
	return snapshots, timelines
}

func newRepository(ctx context.Context, cfg config.DatabaseConfig) (repository.ApprovalRepository, func()) {
	if !cfg.Enabled {
		logger.Log.Info().Msg("Database disabled, approvals are kept in memory")
		return repository.NewMemoryApprovalRepository(), func() {}
	}

	db, err := postgres.NewDB(&cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	return postgres.NewApprovalRepository(db), func() {
		if err := db.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

func newPublisher(cfg config.EventsConfig) events.Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return events.NewLoggingPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg.Brokers, map[string]string{
		events.OrderApproved:   cfg.ApprovalTopic,
		events.QuantityChanged: cfg.QuantityTopic,
	}, time.Duration(cfg.WriteTimeoutMs)*time.Millisecond)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Kafka publisher unavailable, logging events instead")
		return events.NewLoggingPublisher()
	}
	return publisher
}

// newExporter returns nil when storage is disabled; exports are then streamed
// back in the response.
func newExporter(ctx context.Context, cfg config.StorageConfig) *export.Exporter {
	if !cfg.Enabled {
		return nil
	}

	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Object storage unavailable, exports will be streamed")
		return nil
	}
	if err := client.EnsureBucket(ctx, cfg.Region); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to ensure export bucket")
	}
	return export.NewExporter(client, cfg.Prefix)
}

func pruneSessions(ctx context.Context, sessions *selection.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Prune(now, maxIdle); n > 0 {
				logger.Log.Info().Int("sessions", n).Msg("Pruned idle selection sessions")
			}
		}
	}
}
