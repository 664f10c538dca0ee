package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mfreeborn/patient-list-generator/internal/config"
	"github.com/mfreeborn/patient-list-generator/internal/domain/handover"
	"github.com/mfreeborn/patient-list-generator/internal/platform/blobstore"
	"github.com/mfreeborn/patient-list-generator/internal/platform/db"
	"github.com/mfreeborn/patient-list-generator/internal/platform/middleware"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the handover list API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// newServer builds the Echo server. health may be nil.
func newServer(cfg *config.Config, logger zerolog.Logger, svc *handover.Service, archive blobstore.Store, source string, health db.Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	e.GET("/health", db.HealthHandler(source, health))

	api := e.Group("/api/v1")
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	handover.NewHandler(svc).RegisterRoutes(api)
	blobstore.NewHandler(archive).RegisterRoutes(api)

	return e
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	ctx := context.Background()
	src, err := openSources(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open inpatient source")
	}
	defer src.Close()
	logger.Info().Str("source", src.name).Msg("inpatient source ready")

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open archive")
	}

	svc := newService(cfg, src, archive, cfg.ListRootDir, logger)
	e := newServer(cfg, logger, svc, archive, src.name, src.health)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
