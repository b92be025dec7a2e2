// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-graph/internal/trials"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Find recruiting clinical trials for a patient profile",
	Long: `Trials queries the ClinicalTrials.gov v2 studies endpoint for the given
condition, sex, and location, keeps the trials whose age bounds admit the
patient, and writes their details as JSON to --out or stdout.`,
	Args: cobra.NoArgs,
	RunE: runTrials,
}

func init() {
	trialsCmd.Flags().String("condition", "", "condition to search for (required)")
	trialsCmd.Flags().Int("age", 0, "patient age in years")
	trialsCmd.Flags().String("sex", "ALL", "patient sex: FEMALE, MALE, or ALL")
	trialsCmd.Flags().String("location", "", "patient location")
	trialsCmd.Flags().String("status", "", "overall status filter (default RECRUITING)")
	trialsCmd.Flags().Bool("relevance", false, "sort by relevance")
	trialsCmd.Flags().Int("page-size", 0, "studies requested (default 100, max 1000)")
	trialsCmd.Flags().String("out", "", "write details to this file instead of stdout")
	_ = trialsCmd.MarkFlagRequired("condition")
	rootCmd.AddCommand(trialsCmd)
}

func runTrials(cmd *cobra.Command, args []string) error {
	var p types.Patient
	p.Condition, _ = cmd.Flags().GetString("condition")
	p.Age, _ = cmd.Flags().GetInt("age")
	p.Sex, _ = cmd.Flags().GetString("sex")
	p.Location, _ = cmd.Flags().GetString("location")

	f := trials.FilterFor(p)
	if !cmd.Flags().Changed("age") {
		f.MinAge, f.MaxAge = nil, nil
	}
	f.Status, _ = cmd.Flags().GetString("status")
	f.SortByRelevance, _ = cmd.Flags().GetBool("relevance")
	f.PageSize, _ = cmd.Flags().GetInt("page-size")
	out, _ := cmd.Flags().GetString("out")

	client := trials.NewClient(appConfig.Trials, log)
	found, err := client.Search(context.Background(), f)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Fprintln(os.Stderr, "No matching trials found")
	} else {
		fmt.Fprintf(os.Stderr, "Found %d matching trials.\n", len(found))
	}

	if out == "" {
		return trials.WriteDetails(os.Stdout, found, p)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer file.Close()
	if err := trials.WriteDetails(file, found, p); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Trial details written to %s\n", out)
	return nil
}
