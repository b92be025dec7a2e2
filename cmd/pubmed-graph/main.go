// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-graph CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/config"
	"github.com/pdiddy/pubmed-graph/internal/graph"
	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/internal/secrets"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is resolved once in PersistentPreRunE.
	appConfig types.AppConfig

	// log is the process logger, replaced in PersistentPreRunE.
	log = logger.Nop()
)

// rootCmd is the base command for the pubmed-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-graph",
	Short: "Load PubMed citations into a graph database and query them",
	Long: `pubmed-graph ingests PubMed XML into a citation graph of articles,
authors, and keywords, links citations between ingested articles, and
queries the graph for verification, search, and export.

The graph lives in Neo4j by default; set store_backend to sqlite to keep it
in a local file instead. serve exposes graph search with an LLM explanation
over HTTP, and trials searches ClinicalTrials.gov for a patient profile.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "config file (JSON, YAML, or TOML)")
	rootCmd.PersistentFlags().String("log-mode", "dev", "log format: dev (console) or prod (JSON)")
}

// setup loads .env, the config file, and .secrets/, then builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return withExit(ExitConfigError, err)
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, found, err := config.Load(path)
	if err != nil {
		return withExit(ExitConfigError, err)
	}
	if found {
		fmt.Fprintln(os.Stderr, "Using config file:", path)
	} else {
		fmt.Fprintf(os.Stderr, "Config file %s not found; using default local connection %s\n",
			path, cfg.Store.Neo4j.URI)
	}

	s, err := secrets.Load(secrets.DefaultDir)
	if err != nil {
		return withExit(ExitConfigError, err)
	}
	if len(s) > 0 {
		fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", secrets.Names(s))
	}
	secrets.Apply(&cfg, s)
	config.ApplyFallbacks(&cfg)
	appConfig = cfg

	mode, _ := cmd.Flags().GetString("log-mode")
	l, err := logger.New(mode)
	if err != nil {
		return withExit(ExitConfigError, err)
	}
	log = l
	return nil
}

// openStore connects to the configured graph backend. Connection failures
// are configuration errors.
func openStore(ctx context.Context) (graph.Store, error) {
	store, err := graph.Open(ctx, appConfig.Store, log)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}
	return store, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return ExitError
}
