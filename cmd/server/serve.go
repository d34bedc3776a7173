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

	"vessel-registry/internal/adapters/primary/http/handlers"
	"vessel-registry/internal/adapters/primary/http/middleware"
	"vessel-registry/internal/adapters/secondary/contentstore"
	"vessel-registry/internal/adapters/secondary/metrics"
	"vessel-registry/internal/config"
	"vessel-registry/internal/core/ingest"
	"vessel-registry/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// registryMetrics is what the process needs from a metrics backend.
type registryMetrics interface {
	metrics.RequestMetrics
	ObserveRegistration(outcome string, ingestedBytes int64, elapsed time.Duration)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logConfig(cfg)

	cat, err := openCatalog(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.close()

	store, err := contentstore.New(cfg.Storage.FilePath, contentstore.Options{VerifyDedup: cfg.Storage.VerifyDedup})
	if err != nil {
		return fmt.Errorf("open content store: %w", err)
	}

	sweeper, err := contentstore.NewSweeper(store, cfg.Storage.ScratchSweepPeriod, cfg.Storage.ScratchMaxAge)
	if err != nil {
		return fmt.Errorf("create scratch sweeper: %w", err)
	}
	// Clear leftovers of a previous crash before accepting uploads.
	sweeper.RunOnce(ctx)
	sweeper.Start()
	defer func() {
		if err := sweeper.Stop(); err != nil {
			log.WithError(err).Warn("stop scratch sweeper")
		}
	}()

	pipeline, err := ingest.New(ingest.Config{
		ChunkSize:  cfg.Ingest.ChunkSize,
		Algorithm:  cfg.Ingest.HashAlgorithm,
		HashLength: cfg.Ingest.HashLength,
	})
	if err != nil {
		return fmt.Errorf("configure ingest: %w", err)
	}

	var m registryMetrics = metrics.Noop{}
	if cfg.Metrics.Enabled {
		m = metrics.NewProm(cfg.Metrics.Namespace, nil)
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Core Services (Application Layer)
	modelSvc := services.NewModelService(cat.models)
	versionSvc := services.NewVersionService(cat.versions, cat.models, store, pipeline,
		services.WithMetrics(m),
	)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(modelSvc, versionSvc)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(m), gin.Recovery())

	api := router.Group("/api/v0")
	h.RegisterRoutes(api)

	// Health check with catalog ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := cat.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler(nil)))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func logConfig(cfg *config.Config) {
	log.WithFields(log.Fields{
		"catalog":        cfg.Database.Driver(),
		"file_path":      cfg.Storage.FilePath,
		"chunk_size":     cfg.Ingest.ChunkSize,
		"hash_algorithm": cfg.Ingest.HashAlgorithm,
		"hash_length":    cfg.Ingest.HashLength,
		"verify_dedup":   cfg.Storage.VerifyDedup,
		"metrics":        cfg.Metrics.Enabled,
	}).Info("configuration loaded")
}
