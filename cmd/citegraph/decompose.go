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

var decomposeCmd = &cobra.Command{
	Use:   "decompose [query]",
	Short: "Break a query into components, concepts, and relationships",
	Long: `Decompose sends the query to the configured LLM provider and prints the
structured breakdown used for seed resolution fallback and relevance rating.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecompose,
}

func runDecompose(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx := context.Background()
	eng, c, err := buildEngine(ctx, loadConfig(), true)
	if err != nil {
		return err
	}
	defer c.Close()

	dec, err := eng.Decompose(ctx, query)
	if err != nil {
		return err
	}

	if flagBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dec)
	}

	fmt.Printf("Query: %s\n\n", dec.OriginalQuery)
	fmt.Println("Components:")
	for _, comp := range dec.Components {
		fmt.Printf("  - %s: %s\n", comp.Name, comp.Description)
		if len(comp.Keywords) > 0 {
			fmt.Printf("    keywords: %s\n", strings.Join(comp.Keywords, ", "))
		}
	}
	fmt.Printf("\nMain concepts: %s\n", strings.Join(dec.MainConcepts, ", "))
	if len(dec.Relationships) > 0 {
		fmt.Println("\nRelationships:")
		for _, rel := range dec.Relationships {
			fmt.Printf("  - %s\n", rel)
		}
	}
	return nil
}

func init() {
	decomposeCmd.Flags().Bool("json", false, "output the decomposition as JSON")

	rootCmd.AddCommand(decomposeCmd)
}
