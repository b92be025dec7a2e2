// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/graph"
	"github.com/pdiddy/pubmed-graph/internal/present"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every article in the graph to YAML or JSON",
	Long: `Export writes every article with its authors, keywords, and citation count,
ordered by PMID. Output goes to stdout unless --out names a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		f := graph.ExportFormat(format)
		if out == "" {
			return graph.Export(ctx, store, os.Stdout, f)
		}
		if err := graph.ExportFile(ctx, store, out, f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported graph to %s\n", out)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show node and relationship counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		counts, err := store.Counts(ctx)
		if err != nil {
			return fmt.Errorf("counting graph: %w", err)
		}
		if jsonOut {
			return present.WriteJSON(os.Stdout, counts)
		}

		t := present.Table{Headers: []string{"Kind", "Name", "Count"}}
		for _, l := range graph.Labels {
			t.Rows = append(t.Rows, []string{"node", string(l), fmt.Sprint(counts.Nodes[string(l)])})
		}
		for _, r := range graph.RelTypes {
			t.Rows = append(t.Rows, []string{"relationship", string(r), fmt.Sprint(counts.Relationships[string(r)])})
		}
		fmt.Println(present.Render(t))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", string(graph.FormatYAML), "output format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)

	statsCmd.Flags().Bool("json", false, "output counts as JSON")
	rootCmd.AddCommand(statsCmd)
}
