package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/mfreeborn/patient-list-generator/internal/config"
	"github.com/mfreeborn/patient-list-generator/internal/domain/handover"
	"github.com/mfreeborn/patient-list-generator/internal/platform/blobstore"
	"github.com/mfreeborn/patient-list-generator/internal/platform/db"
	"github.com/mfreeborn/patient-list-generator/internal/platform/inpatients"
	"github.com/mfreeborn/patient-list-generator/internal/platform/workbook"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger writes JSON, or console output in development.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(out).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// sources bundles the configured inpatient source with whatever else the
// same backing store offers.
type sources struct {
	name    string
	source  inpatients.Source
	reasons inpatients.ReasonLookup
	health  db.Pinger
	closers []func()
}

func (s *sources) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openSources(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sources, error) {
	s := &sources{name: cfg.InpatientSource}

	switch cfg.InpatientSource {
	case config.SourceTrakCare:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		trak := inpatients.NewTrakCareSource(pool, cfg.InpatientView, logger)
		s.source, s.reasons, s.health = trak, trak, pool

	case config.SourceSQLite:
		snap, err := inpatients.OpenSnapshot(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = snap.Close() })
		s.source, s.reasons, s.health = snap, snap, snap

	case config.SourceCareFlow:
		s.source = inpatients.NewCareFlowSource(inpatients.CareFlowConfig{
			BaseURL:   cfg.CareFlowBaseURL,
			APIURL:    cfg.CareFlowAPIURL,
			Username:  cfg.CareFlowUsername,
			Password:  cfg.CareFlowPassword,
			NetworkID: cfg.CareFlowNetworkID,
			Workers:   cfg.CareFlowWorkers,
			Timeout:   cfg.CareFlowTimeout,
		}, logger)

		// CareFlow carries no admission reasons; borrow them from TrakCare
		// or a snapshot when one is configured.
		switch {
		case cfg.DatabaseURL != "":
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				logger.Warn().Err(err).Msg("reason lookup unavailable")
				break
			}
			s.closers = append(s.closers, pool.Close)
			s.reasons = inpatients.NewTrakCareSource(pool, cfg.InpatientView, logger)
		case cfg.SQLitePath != "":
			snap, err := inpatients.OpenSnapshot(cfg.SQLitePath, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("reason lookup unavailable")
				break
			}
			s.closers = append(s.closers, func() { _ = snap.Close() })
			s.reasons = snap
		}

	default:
		return nil, fmt.Errorf("unknown inpatient source %q", cfg.InpatientSource)
	}
	return s, nil
}

func openArchive(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.ArchiveDriver {
	case config.ArchiveS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:    cfg.ArchiveS3Bucket,
			Region:    cfg.ArchiveS3Region,
			Endpoint:  cfg.ArchiveS3Endpoint,
			PathStyle: cfg.ArchiveS3PathStyle,
		})
	case config.ArchiveMemory, "":
		return blobstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown archive driver %q", cfg.ArchiveDriver)
}

// newService wires a generation service. rootDir may be empty, in which case
// lists are only returned and archived.
func newService(cfg *config.Config, src *sources, archive blobstore.Store, rootDir string, logger zerolog.Logger) *handover.Service {
	opts := []handover.Option{handover.WithListRootDir(rootDir)}
	if src.reasons != nil {
		opts = append(opts, handover.WithReasonLookup(src.reasons))
	}
	if archive != nil {
		opts = append(opts, handover.WithArchive(archive))
	}
	return handover.NewService(src.source, workbook.Opener(cfg.WorkbookSheet), logger, opts...)
}

// cliLogger keeps stdout free for command output.
func cliLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}
