package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/pkg/types"
)

var (
	flagMissingSource string
	flagMissingLimit  int
)

var missingCmd = &cobra.Command{
	Use:   "missing <locale>",
	Short: "List source strings without a translation for a locale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := locale.Normalize(args[0])

		var sources []types.SourceString
		err := st.IterateMissing(cmd.Context(), target, locale.Normalize(flagMissingSource), flagMissingLimit, func(src types.SourceString) error {
			sources = append(sources, src)
			return nil
		})
		if err != nil {
			return fmt.Errorf("list missing for %s: %w", target, err)
		}

		if flagJSON {
			return printJSON(sources)
		}
		for _, src := range sources {
			fmt.Printf("%s  [%s]  %s\n", src.Hash, src.SourceLocale, src.Original)
		}
		fmt.Printf("%d missing for %s\n", len(sources), target)
		return nil
	},
}

func init() {
	missingCmd.Flags().StringVar(&flagMissingSource, "source", "", "only strings with this source locale")
	missingCmd.Flags().IntVar(&flagMissingLimit, "limit", 0, "stop after this many strings (0 = all)")
}
