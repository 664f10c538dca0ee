package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mfreeborn/patient-list-generator/internal/domain/team"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

func teamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List the teams lists can be generated for",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTeams(cmd.OutOrStdout())
		},
	}
}

func wardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wards",
		Short: "List the wards patients are taken from",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printWards(cmd.OutOrStdout())
		},
	}
}

func printTeams(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEAM\tHOME WARD\tCONSULTANTS")
	for _, t := range team.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.HomeWard, strings.Join(t.ConsultantNames(), ", "))
	}
	return w.Flush()
}

func printWards(out io.Writer) error {
	for _, w := range ward.All() {
		if _, err := fmt.Fprintln(out, w); err != nil {
			return err
		}
	}
	return nil
}
