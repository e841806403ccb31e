// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citegraph/internal/engine"
	"github.com/pdiddy/citegraph/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Build a citation graph around the best-matching paper",
	Long: `Search resolves the paper most relevant to the query and expands its
citation neighborhood two levels deep: papers citing it (forward) and
papers it cites (backward), each expanded one further hop.

With --rated, the query is first decomposed by the configured LLM, the
decomposition drives seed resolution fallback, and every discovered paper
is rated for relevance. Rated results are cached until 'citegraph cache clear'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	rated, _ := cmd.Flags().GetBool("rated")

	opts := engine.Options{}
	opts.ForwardLimit, _ = cmd.Flags().GetInt("forward")
	opts.BackwardLimit, _ = cmd.Flags().GetInt("backward")
	opts.NestedLimit, _ = cmd.Flags().GetInt("nested")

	ctx := context.Background()
	eng, c, err := buildEngine(ctx, loadConfig(), rated)
	if err != nil {
		return err
	}
	defer c.Close()
	eng.Warnings = os.Stderr

	var g *types.CitationGraph
	if rated {
		g, err = eng.SearchRated(ctx, query, opts)
	} else {
		g, err = eng.Search(ctx, query, opts)
	}
	if err != nil {
		return err
	}

	switch {
	case flagBool(cmd, "json"):
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case flagBool(cmd, "yaml"):
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(g)
	default:
		formatGraph(g, os.Stdout)
		return nil
	}
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// formatGraph writes a human-readable rendering of the graph to w.
func formatGraph(g *types.CitationGraph, w io.Writer) {
	fmt.Fprintf(w, "Seed: %s\n", paperLine(g.SeedPaper))
	if g.SeedPaper.URL != "" {
		fmt.Fprintf(w, "      %s\n", g.SeedPaper.URL)
	}

	fmt.Fprintf(w, "\nForward citations (%d):\n", g.TotalForward)
	formatNodes(g.ForwardCitations, w)

	fmt.Fprintf(w, "\nBackward citations (%d):\n", g.TotalBackward)
	formatNodes(g.BackwardCitations, w)

	fmt.Fprintf(w, "\n%d edges\n", len(g.Edges))
}

func formatNodes(nodes []types.PaperWithNested, w io.Writer) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for i, n := range nodes {
		fmt.Fprintf(w, "  %d. %s\n", i+1, paperLine(n.Paper))
		for _, p := range n.Nested.NestedForward {
			fmt.Fprintf(w, "       cited by: %s\n", paperLine(p))
		}
		for _, p := range n.Nested.NestedBackward {
			fmt.Fprintf(w, "       cites:    %s\n", paperLine(p))
		}
	}
}

func paperLine(p types.Paper) string {
	title := p.Title
	if len(title) > 70 {
		title = title[:67] + "..."
	}
	line := title
	if p.Year > 0 {
		line = fmt.Sprintf("%s (%d)", line, p.Year)
	}
	if len(p.Authors) > 0 {
		author := p.Authors[0]
		if len(p.Authors) > 1 {
			author += " et al."
		}
		line = fmt.Sprintf("%s - %s", line, author)
	}
	if p.RelevanceLabel != "" {
		line = fmt.Sprintf("%s [%s]", line, p.RelevanceLabel)
	}
	return line
}

func init() {
	searchCmd.Flags().Int("forward", 0, "maximum papers citing the seed (default from config, 3)")
	searchCmd.Flags().Int("backward", 0, "maximum papers the seed cites (default from config, 3)")
	searchCmd.Flags().Int("nested", 0, "maximum papers per level-2 list (default from config, 3)")
	searchCmd.Flags().Bool("rated", false, "decompose the query and rate every paper's relevance")
	searchCmd.Flags().Bool("json", false, "output the graph as JSON")
	searchCmd.Flags().Bool("yaml", false, "output the graph as YAML")

	rootCmd.AddCommand(searchCmd)
}
