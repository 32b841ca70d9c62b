package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillworks/traduit/internal/engine"
	"github.com/quillworks/traduit/internal/jobs"
)

var (
	flagTranslateSource string
	flagTranslateLimit  int
)

var translateCmd = &cobra.Command{
	Use:   "translate <locale>",
	Short: "Machine-translate missing strings for a locale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		translator, err := engine.New(cfg.Engine)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		report, err := jobs.NewRunner(st, logger).TranslateMissing(cmd.Context(), translator, args[0], flagTranslateSource, flagTranslateLimit)
		if err != nil {
			return fmt.Errorf("translate %s: %w", args[0], err)
		}
		return printReport(report)
	},
}

func init() {
	translateCmd.Flags().StringVar(&flagTranslateSource, "source", "", "only strings with this source locale")
	translateCmd.Flags().IntVar(&flagTranslateLimit, "limit", 0, "stop after this many strings (0 = all)")
}
