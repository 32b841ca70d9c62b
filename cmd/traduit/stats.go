package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillworks/traduit/internal/jobs"
	"github.com/quillworks/traduit/internal/locale"
)

var statsCmd = &cobra.Command{
	Use:   "stats [locale...]",
	Short: "Report translation coverage per locale",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := locale.NormalizeAll(args)
		if len(targets) == 0 {
			targets = locale.NewResolver(cfg.Locales).Enabled()
		}
		if len(targets) == 0 {
			return fmt.Errorf("no locales given and none enabled in config")
		}

		coverage, err := jobs.NewRunner(st, logger).CoverageAll(cmd.Context(), targets)
		if err != nil {
			return fmt.Errorf("coverage: %w", err)
		}

		if flagJSON {
			return printJSON(coverage)
		}
		for _, c := range coverage {
			fmt.Printf("%-8s %4d/%-4d %6.1f%%\n", c.Locale, c.Translated, c.Total, c.Percent())
		}
		return nil
	},
}
