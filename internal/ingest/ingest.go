// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest loads PubMed XML into the citation graph. A run reads the
// records once, upserts articles with their authors and keywords, then links
// the buffered citations and recomputes citation counts.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/pubmed-graph/internal/graph"
	"github.com/pdiddy/pubmed-graph/internal/keywords"
	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/internal/pubmed"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// Options controls an ingestion run.
type Options struct {
	// Keywords is the number of keywords extracted per abstract.
	// Zero uses keywords.DefaultCount.
	Keywords int

	// SkipCitations stops after the article pass; no CITES edges are written
	// and counts are not recomputed.
	SkipCitations bool
}

// Summary holds counts from one run.
type Summary struct {
	Articles         int
	Authorships      int
	Keywords         int
	CitationsLinked  int
	CitationsSkipped int // dangling or without a cited PMID
	Malformed        int
	Failed           int
}

// citation is a buffered citing -> cited pair.
type citation struct {
	citing, cited string
}

// Pipeline writes parsed records into a graph.Writer.
type Pipeline struct {
	store     graph.Writer
	extractor *keywords.Extractor
	opts      Options
	log       *logger.Logger
}

// New returns a pipeline writing to store.
func New(store graph.Writer, opts Options, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		store:     store,
		extractor: keywords.New(opts.Keywords),
		opts:      opts,
		log:       log.With("component", "ingest"),
	}
}

// IngestFile opens path and runs Ingest on it.
func (p *Pipeline) IngestFile(ctx context.Context, path string, w io.Writer) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return p.Ingest(ctx, f, w)
}

// Ingest reads every record from src and writes it to the store. A failed
// write is logged, counted, and skipped; only an unreadable document or a
// cancelled context stops the run.
func (p *Pipeline) Ingest(ctx context.Context, src io.Reader, w io.Writer) (Summary, error) {
	var summary Summary
	reader := pubmed.NewReader(src, p.log)

	var pending []citation
	idless := 0
	for {
		if err := ctx.Err(); err != nil {
			summary.Malformed = reader.Skipped()
			return summary, err
		}

		article, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Malformed = reader.Skipped()
			return summary, err
		}

		if !p.writeArticle(ctx, article, &summary) {
			continue
		}
		fmt.Fprintf(w, "ingested %s (%d authors, %d references)\n",
			article.ID, len(article.Authors), len(article.References))

		pending, idless = bufferCitations(article, pending, idless)
	}
	summary.Malformed = reader.Skipped()

	if !p.opts.SkipCitations {
		summary.CitationsSkipped += idless
		if err := p.link(ctx, pending, &summary); err != nil {
			return summary, err
		}
	}

	writeSummary(w, summary)
	return summary, nil
}

// LinkCitationsFile opens path and runs LinkCitations on it.
func (p *Pipeline) LinkCitationsFile(ctx context.Context, path string, w io.Writer) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return p.LinkCitations(ctx, f, w)
}

// LinkCitations reads src and writes only CITES edges, for articles that
// are already in the store, then recomputes citation counts.
func (p *Pipeline) LinkCitations(ctx context.Context, src io.Reader, w io.Writer) (Summary, error) {
	var summary Summary
	reader := pubmed.NewReader(src, p.log)

	var pending []citation
	idless := 0
	for {
		if err := ctx.Err(); err != nil {
			summary.Malformed = reader.Skipped()
			return summary, err
		}

		article, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Malformed = reader.Skipped()
			return summary, err
		}
		pending, idless = bufferCitations(article, pending, idless)
	}
	summary.Malformed = reader.Skipped()
	summary.CitationsSkipped += idless

	if err := p.link(ctx, pending, &summary); err != nil {
		return summary, err
	}
	writeSummary(w, summary)
	return summary, nil
}

// bufferCitations appends the article's linkable references to pending and
// adds the references without a cited PMID to idless.
func bufferCitations(a types.Article, pending []citation, idless int) ([]citation, int) {
	for _, ref := range a.References {
		if !ref.HasCitedID() {
			idless++
			continue
		}
		pending = append(pending, citation{citing: a.ID, cited: ref.CitedID})
	}
	return pending, idless
}

// writeArticle upserts the article, its authorships, and its keywords. It
// reports false when the article itself could not be written.
func (p *Pipeline) writeArticle(ctx context.Context, a types.Article, summary *Summary) bool {
	if err := p.store.UpsertArticle(ctx, a.ID, a.Title, a.Abstract); err != nil {
		p.log.Error("article write failed", "pmid", a.ID, "error", err)
		summary.Failed++
		return false
	}
	summary.Articles++

	for _, au := range a.Authors {
		if err := p.store.UpsertAuthorship(ctx, au.FirstName, au.LastName, a.ID); err != nil {
			p.log.Error("authorship write failed", "pmid", a.ID, "author", au.DisplayName(), "error", err)
			summary.Failed++
			continue
		}
		summary.Authorships++
	}

	for _, term := range p.extractor.Extract(a.Abstract) {
		if err := p.store.UpsertKeyword(ctx, term, a.ID); err != nil {
			p.log.Error("keyword write failed", "pmid", a.ID, "keyword", term, "error", err)
			summary.Failed++
			continue
		}
		summary.Keywords++
	}
	return true
}

// link writes the buffered citations and then recomputes counts so the
// running increments are replaced by exact in-degrees.
func (p *Pipeline) link(ctx context.Context, pending []citation, summary *Summary) error {
	for _, c := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		linked, err := p.store.RecordCitation(ctx, c.citing, c.cited)
		if err != nil {
			p.log.Error("citation write failed", "citing", c.citing, "cited", c.cited, "error", err)
			summary.Failed++
			continue
		}
		if linked {
			summary.CitationsLinked++
		} else {
			p.log.Debug("citation skipped, article not in graph", "citing", c.citing, "cited", c.cited)
			summary.CitationsSkipped++
		}
	}

	if err := p.store.RecomputeCitationCounts(ctx); err != nil {
		p.log.Error("citation recount failed", "error", err)
		summary.Failed++
	}
	return nil
}

func writeSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\narticles: %d, authorships: %d, keywords: %d, citations: %d linked, %d skipped, malformed: %d, failed: %d\n",
		s.Articles, s.Authorships, s.Keywords, s.CitationsLinked, s.CitationsSkipped, s.Malformed, s.Failed)
}
