package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mfreeborn/patient-list-generator/internal/config"
	"github.com/mfreeborn/patient-list-generator/internal/domain/team"
	"github.com/mfreeborn/patient-list-generator/internal/platform/db"
	"github.com/mfreeborn/patient-list-generator/internal/platform/inpatients"
)

func snapshotCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy every team's current inpatients from TrakCare into a SQLite file",
		Long: `Snapshot reads the TrakCare view for all registered consultants and
replaces the contents of a SQLite snapshot with the result. Point
INPATIENT_SOURCE=sqlite at the file to generate lists offline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), cmd.OutOrStdout(), path)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "snapshot file (default SQLITE_PATH)")
	return cmd
}

func allConsultants() []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range team.All() {
		for _, c := range t.ConsultantNames() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func runSnapshot(ctx context.Context, out io.Writer, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.SQLitePath
	}
	if path == "" {
		return fmt.Errorf("no snapshot path: pass --path or set SQLITE_PATH")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to take a snapshot")
	}
	logger := cliLogger(cfg)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	snap, err := inpatients.OpenSnapshot(path, logger)
	if err != nil {
		return err
	}
	defer snap.Close()

	n, err := copyInpatients(ctx, inpatients.NewTrakCareSource(pool, cfg.InpatientView, logger), snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d inpatients written to %s\n", n, path)
	return nil
}

type replacer interface {
	Replace(ctx context.Context, rows []inpatients.Row) error
}

func copyInpatients(ctx context.Context, from inpatients.Source, to replacer) (int, error) {
	rows, err := from.Fetch(ctx, allConsultants())
	if err != nil {
		return 0, fmt.Errorf("fetch inpatients: %w", err)
	}
	if err := to.Replace(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
