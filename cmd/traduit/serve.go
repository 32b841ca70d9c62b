package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillworks/traduit/internal/engine"
	"github.com/quillworks/traduit/internal/jobs"
	"github.com/quillworks/traduit/internal/locale"
	"github.com/quillworks/traduit/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the operator HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		translator, err := engine.New(cfg.Engine)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		addr := cfg.Server.Addr
		if flagAddr != "" {
			addr = flagAddr
		}

		srv := server.New(st, jobs.NewRunner(st, logger), translator, locale.NewResolver(cfg.Locales), logger)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr from config)")
}
