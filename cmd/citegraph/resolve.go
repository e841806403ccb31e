// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Find the single paper most relevant to a query",
	Long: `Resolve searches the paper database for the query and prints the
top-ranked result, without expanding any citations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx := context.Background()
	eng, c, err := buildEngine(ctx, loadConfig(), false)
	if err != nil {
		return err
	}
	defer c.Close()

	paper, err := eng.Resolve(ctx, query)
	if err != nil {
		return err
	}

	if flagBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(paper)
	}

	fmt.Println(paperLine(paper))
	fmt.Printf("  id: %s\n", paper.PaperID)
	if paper.URL != "" {
		fmt.Printf("  url: %s\n", paper.URL)
	}
	if paper.CitationCount > 0 || paper.ReferenceCount > 0 {
		fmt.Printf("  citations: %d, references: %d\n", paper.CitationCount, paper.ReferenceCount)
	}
	return nil
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output the paper as JSON")

	rootCmd.AddCommand(resolveCmd)
}
