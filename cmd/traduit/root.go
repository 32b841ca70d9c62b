package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillworks/traduit/internal/config"
	"github.com/quillworks/traduit/internal/paths"
	"github.com/quillworks/traduit/internal/store"
	"github.com/quillworks/traduit/pkg/types"
)

// Global flag values.
var (
	flagConfig string
	flagJSON   bool
)

// Shared state initialized by PersistentPreRunE for all subcommands.
var (
	cfg    types.Config
	st     *store.Store
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "traduit",
	Short: "Traduit manages translations-at-rest for application content",
	Long: `Traduit stores translatable strings content-addressed by hash and keeps
their translations alongside. It serves an operator HTTP API and runs
batch jobs: backfilling stubs, machine-translating missing strings and
reporting per-locale coverage.`,
	PersistentPreRunE:  initStore,
	PersistentPostRunE: closeStore,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./traduit.yaml or the platform config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(missingCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(statsCmd)
}

// initStore loads the configuration and opens the translation store.
func initStore(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	path, err := paths.ResolveConfigFile(flagConfig)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err = store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	logger = log.New(os.Stderr, "traduit ", log.LstdFlags)
	return nil
}

// closeStore releases the store handle.
func closeStore(cmd *cobra.Command, args []string) error {
	if st != nil {
		return st.Close()
	}
	return nil
}
