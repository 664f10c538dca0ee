package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfreeborn/patient-list-generator/internal/domain/handover"
	"github.com/mfreeborn/patient-list-generator/internal/domain/team"
	"github.com/mfreeborn/patient-list-generator/internal/platform/blobstore"
)

type generateOptions struct {
	team    string
	input   string
	output  string
	archive bool
}

func generateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's list for a team from its previous list",
		Long: `Generate reads the team's previous handover list, fetches the team's
current inpatients and writes the updated list. Without --input a list is
started from scratch. Without --output the list is filed under LIST_ROOT_DIR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.team, "team", "t", "", "team name, e.g. Respiratory")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "previous list (.xlsx)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the list here instead of under LIST_ROOT_DIR")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "also upload the list to the configured archive")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, opts *generateOptions) error {
	t, err := team.Lookup(opts.team)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	src, err := openSources(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	var input io.Reader
	if opts.input != "" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("open previous list: %w", err)
		}
		defer f.Close()
		input = f
	}

	rootDir := cfg.ListRootDir
	if opts.output != "" {
		rootDir = ""
	}
	var archive blobstore.Store
	if opts.archive {
		if archive, err = openArchive(ctx, cfg); err != nil {
			return err
		}
	}
	svc := newService(cfg, src, archive, rootDir, logger)

	res, err := svc.Generate(ctx, handover.GenerateRequest{Team: t, Input: input})
	if err != nil {
		return err
	}

	path := res.Path
	if opts.output != "" {
		path = opts.output
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(path, res.Content, 0o640); err != nil {
			return fmt.Errorf("save list: %w", err)
		}
	}

	fmt.Fprintf(out, "%s list: %d new, %d continuing, %d departed\n",
		res.Team, len(res.Arrivals), len(res.Continuing), len(res.Departures))
	fmt.Fprintf(out, "saved to %s\n", path)
	if res.ArchiveID != "" {
		fmt.Fprintf(out, "archived as %s\n", res.ArchiveID)
	}
	return nil
}
