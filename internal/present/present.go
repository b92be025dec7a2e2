// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package present formats stored articles for the console and for JSON
// consumers. Every function is pure apart from writing to the given writer.
package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// Wrap widths for the console tables.
const (
	titleWidth           = 60
	abstractWidth        = 80
	comparisonTitleWidth = 30
)

// NotFoundMessage is printed for an identifier with no stored article.
const NotFoundMessage = "No article found with this PMID"

// Table is a renderer-agnostic grid: an optional header row and any number
// of body rows of equal width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ArticleTable lays out one article as field/value rows with no header row.
func ArticleTable(a types.ArticleDetail) Table {
	return Table{
		Rows: [][]string{
			{"PMID", a.ID},
			{"Title", Wrap(a.Title, titleWidth)},
			{"Authors", strings.Join(a.Authors, ", ")},
			{"Keywords", strings.Join(a.Keywords, ", ")},
			{"Citations", strconv.FormatInt(a.CitationCount, 10)},
		},
	}
}

// ComparisonTable lays out articles side by side: one column per article
// after a label column, and rows for title, author count, and keyword count.
func ComparisonTable(articles []types.ArticleDetail) Table {
	headers := make([]string, 0, len(articles)+1)
	headers = append(headers, "")
	title := []string{"Title"}
	authors := []string{"# Authors"}
	keywords := []string{"# Keywords"}

	for _, a := range articles {
		headers = append(headers, "PMID: "+a.ID)
		title = append(title, Wrap(a.Title, comparisonTitleWidth))
		authors = append(authors, strconv.Itoa(len(a.Authors)))
		keywords = append(keywords, strconv.Itoa(len(a.Keywords)))
	}
	return Table{Headers: headers, Rows: [][]string{title, authors, keywords}}
}

// Render draws t as a bordered grid with a rule between every row. A table
// without headers has no header row.
func Render(t Table) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if len(t.Headers) > 0 {
		tbl = tbl.Headers(t.Headers...)
	}
	return tbl.String()
}

// WriteArticle prints the article table. With detailed set, the abstract
// follows between dashed rules.
func WriteArticle(w io.Writer, a types.ArticleDetail, detailed bool) error {
	if _, err := fmt.Fprintln(w, Render(ArticleTable(a))); err != nil {
		return err
	}
	if !detailed {
		return nil
	}
	rule := strings.Repeat("-", abstractWidth)
	abstract := a.Abstract
	if abstract == "" {
		abstract = "(no abstract)"
	}
	_, err := fmt.Fprintf(w, "\nAbstract:\n%s\n%s\n%s\n", rule, Wrap(abstract, abstractWidth), rule)
	return err
}

// WriteComparison prints the side-by-side table.
func WriteComparison(w io.Writer, articles []types.ArticleDetail) error {
	_, err := fmt.Fprintln(w, Render(ComparisonTable(articles)))
	return err
}

// WriteNotFound prints the not-found notice for id.
func WriteNotFound(w io.Writer, id string) error {
	_, err := fmt.Fprintf(w, "%s: %s\n", NotFoundMessage, id)
	return err
}

// WriteJSON prints v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WithContext returns a JSON-ready map of a merged with extra. The article's
// own fields take precedence over extra keys with the same name.
func WithContext(a types.ArticleDetail, extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+6)
	for k, v := range extra {
		out[k] = v
	}
	out["pmid"] = a.ID
	out["title"] = a.Title
	out["abstract"] = a.Abstract
	out["citation_count"] = a.CitationCount
	out["authors"] = nonNil(a.Authors)
	out["keywords"] = nonNil(a.Keywords)
	return out
}

// Wrap breaks text into lines of at most width cells at word boundaries.
// Words longer than width are split.
func Wrap(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || width <= 0 {
		return text
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
