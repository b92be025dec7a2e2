// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/explain"
	"github.com/pdiddy/pubmed-graph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve graph search with LLM explanations over HTTP",
	Long: `Serve runs an HTTP endpoint. POST /check-database takes a chat-style
{"messages": [...]} body, extracts search terms from the last message,
searches the graph, and asks the configured chat model to explain the
matching papers. GET /healthz reports liveness.

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :5000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = appConfig.Server.Addr
	}
	mode, _ := cmd.Flags().GetString("log-mode")
	if mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	h := server.NewHandler(store, explain.New(appConfig.AI, log), log)
	return server.Run(ctx, addr, server.NewRouter(h, appConfig.Server), log)
}
