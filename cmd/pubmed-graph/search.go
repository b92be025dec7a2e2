// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/graph"
	"github.com/pdiddy/pubmed-graph/internal/present"
)

var searchCmd = &cobra.Command{
	Use:   "search TERM...",
	Short: "Find articles whose title or abstract contains a term",
	Long: `Search joins its arguments into one term and returns articles whose title
or abstract contains it, ignoring case. Results are ordered by PMID and
carry their authors and keywords.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", graph.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOut, _ := cmd.Flags().GetBool("json")
	term := strings.Join(args, " ")

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	results, err := store.Search(ctx, term, limit)
	if err != nil {
		return fmt.Errorf("searching %q: %w", term, err)
	}

	if jsonOut {
		return present.WriteJSON(os.Stdout, results)
	}
	if len(results) == 0 {
		fmt.Printf("No articles found matching %q\n", term)
		return nil
	}
	fmt.Printf("Found %d article(s) matching %q\n\n", len(results), term)
	for _, a := range results {
		if err := present.WriteArticle(os.Stdout, a, false); err != nil {
			return err
		}
	}
	return nil
}
