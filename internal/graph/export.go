// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// ExportFormat selects the serialization for Export.
type ExportFormat string

const (
	FormatYAML ExportFormat = "yaml"
	FormatJSON ExportFormat = "json"
)

// ExportEntry is one article in an export document.
type ExportEntry struct {
	PMID          string   `json:"pmid" yaml:"pmid"`
	Title         string   `json:"title" yaml:"title"`
	Abstract      string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	CitationCount int64    `json:"citation_count" yaml:"citation_count"`
	Authors       []string `json:"authors" yaml:"authors"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// Export writes every article in r to w in the given format.
func Export(ctx context.Context, r Reader, w io.Writer, format ExportFormat) error {
	articles, err := r.ListArticles(ctx, 0)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	entries := exportEntries(articles)

	var data []byte
	switch format {
	case FormatYAML, "":
		data, err = yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q", string(format))
	}

	_, err = w.Write(data)
	return err
}

// ExportFile writes the export to path, creating parent directories.
func ExportFile(ctx context.Context, r Reader, path string, format ExportFormat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Export(ctx, r, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportEntries(articles []types.ArticleDetail) []ExportEntry {
	entries := make([]ExportEntry, len(articles))
	for i, a := range articles {
		entries[i] = ExportEntry{
			PMID:          a.ID,
			Title:         a.Title,
			Abstract:      a.Abstract,
			CitationCount: a.CitationCount,
			Authors:       nonNil(a.Authors),
			Keywords:      nonNil(a.Keywords),
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return idLess(entries[i].PMID, entries[j].PMID)
	})
	return entries
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
