// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citegraph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the citation search HTTP server",
	Long: `Serve starts an HTTP server exposing citation search, query
decomposition, paper lookup, and cache administration. The cache is shared
across all requests for the lifetime of the process.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	eng, c, err := buildEngine(context.Background(), cfg, true)
	if err != nil {
		return err
	}
	defer c.Close()
	eng.Warnings = os.Stderr

	fmt.Fprintf(os.Stderr, "citegraph %s listening on %s\n", version, cfg.Server.Addr)
	return server.New(eng, version).Router().Run(cfg.Server.Addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")

	rootCmd.AddCommand(serveCmd)
}
