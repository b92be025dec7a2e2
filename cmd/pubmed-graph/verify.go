// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/present"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify PMID...",
	Short: "Show articles by PMID with their authors, keywords, and citations",
	Long: `Verify looks up each PMID and prints the article as a table. With
--detailed the abstract follows the table. With --compare and more than one
PMID the found articles are printed side by side instead.

With --json each found article is written as a JSON object; --context
key=value pairs are merged into every object without overriding article
fields.

Unknown PMIDs print a notice. The command exits with status 3 after every
PMID has been processed when at least one was not found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Bool("detailed", false, "include the abstract")
	verifyCmd.Flags().Bool("compare", false, "print found articles side by side")
	verifyCmd.Flags().Bool("json", false, "output as JSON")
	verifyCmd.Flags().StringArray("context", nil, "key=value added to JSON output (repeatable)")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	detailed, _ := cmd.Flags().GetBool("detailed")
	compare, _ := cmd.Flags().GetBool("compare")
	jsonOut, _ := cmd.Flags().GetBool("json")
	pairs, _ := cmd.Flags().GetStringArray("context")

	extra, err := parseContext(pairs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	var found []types.ArticleDetail
	missing := 0
	for _, id := range args {
		a, ok, err := store.GetArticle(ctx, id)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", id, err)
		}
		if !ok {
			missing++
			if err := present.WriteNotFound(os.Stdout, id); err != nil {
				return err
			}
			continue
		}
		found = append(found, a)
	}

	switch {
	case jsonOut:
		out := make([]map[string]any, 0, len(found))
		for _, a := range found {
			out = append(out, present.WithContext(a, extra))
		}
		if err := present.WriteJSON(os.Stdout, out); err != nil {
			return err
		}
	case compare && len(found) > 1:
		if err := present.WriteComparison(os.Stdout, found); err != nil {
			return err
		}
	default:
		for _, a := range found {
			if err := present.WriteArticle(os.Stdout, a, detailed); err != nil {
				return err
			}
		}
	}

	if missing > 0 {
		return withExit(ExitNotFound, nil)
	}
	return nil
}

// parseContext turns key=value flags into a map.
func parseContext(pairs []string) (map[string]any, error) {
	extra := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --context %q: want key=value", p)
		}
		extra[k] = v
	}
	return extra, nil
}
