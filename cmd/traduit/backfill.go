package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillworks/traduit/internal/jobs"
)

var flagBackfillLimit int

var backfillCmd = &cobra.Command{
	Use:   "backfill <locale>",
	Short: "Create stub translation rows for a locale",
	Long: `Backfill walks the source strings that have no translation row for the
given locale and creates empty stubs for them. Run it after enabling a
new locale so coverage reporting and batch translation can see the gap.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := jobs.NewRunner(st, logger).BackfillStubs(cmd.Context(), args[0], flagBackfillLimit)
		if err != nil {
			return fmt.Errorf("backfill %s: %w", args[0], err)
		}
		return printReport(report)
	},
}

func init() {
	backfillCmd.Flags().IntVar(&flagBackfillLimit, "limit", 0, "stop after this many strings (0 = all)")
}
