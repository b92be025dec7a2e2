// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/ingest"
	"github.com/pdiddy/pubmed-graph/internal/keywords"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Load PubMed XML files into the graph",
	Long: `Ingest reads each PubMed XML file, writes every article with its
authors and top abstract keywords, then links citations between articles
that are now in the graph and recomputes citation counts.

Records without a PMID are skipped and counted as malformed. Re-running on
the same file leaves the graph unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Int("keywords", keywords.DefaultCount, "keywords extracted per abstract")
	ingestCmd.Flags().Bool("skip-citations", false, "write articles only; link citations later with 'citations'")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("keywords")
	skip, _ := cmd.Flags().GetBool("skip-citations")

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	p := ingest.New(store, ingest.Options{Keywords: n, SkipCitations: skip}, log)
	failed := 0
	for _, path := range args {
		fmt.Fprintf(os.Stdout, "Ingesting %s\n", path)
		summary, err := p.IngestFile(ctx, path, os.Stdout)
		if err != nil {
			return err
		}
		failed += summary.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d write(s) failed during ingestion", failed)
	}
	return nil
}

var citationsCmd = &cobra.Command{
	Use:   "citations FILE...",
	Short: "Link citations from PubMed XML files already ingested",
	Long: `Citations re-reads each PubMed XML file and writes a CITES edge for
every reference whose cited article is in the graph, then recomputes
citation counts. Use it after 'ingest --skip-citations' or after ingesting
the files that hold the cited articles.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCitations,
}

func init() {
	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	p := ingest.New(store, ingest.Options{}, log)
	failed := 0
	for _, path := range args {
		summary, err := p.LinkCitationsFile(ctx, path, os.Stdout)
		if err != nil {
			return err
		}
		failed += summary.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d citation write(s) failed", failed)
	}
	return nil
}

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Recompute every article's citation count from CITES edges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		if err := store.RecomputeCitationCounts(ctx); err != nil {
			return err
		}
		fmt.Println("Citation counts recomputed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recountCmd)
}
