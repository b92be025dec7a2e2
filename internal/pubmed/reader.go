// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed reads PubmedArticleSet XML documents into article records.
package pubmed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

const articleElement = "PubmedArticle"

// ErrMissingPMID marks a record that has no PMID element.
var ErrMissingPMID = errors.New("record has no PMID")

// Reader yields the PubmedArticle records of one document. It is
// single-pass: once Next returns io.EOF the source must be reopened to read
// it again.
type Reader struct {
	dec     *xml.Decoder
	log     *logger.Logger
	seen    int
	skipped int
}

// NewReader returns a Reader over r. A nil log discards warnings.
func NewReader(r io.Reader, log *logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{
		dec: xml.NewDecoder(r),
		log: log.With("component", "pubmed.Reader"),
	}
}

// Next returns the next well-formed record. Records without a PMID are
// skipped with a warning. It returns io.EOF after the last record, and a
// wrapped error if the document itself is not well-formed XML.
func (r *Reader) Next() (types.Article, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return types.Article{}, io.EOF
		}
		if err != nil {
			return types.Article{}, fmt.Errorf("reading PubMed XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != articleElement {
			continue
		}
		r.seen++

		n, err := buildNode(r.dec, start)
		if err != nil {
			return types.Article{}, fmt.Errorf("reading PubMed XML record %d: %w", r.seen, err)
		}

		article, err := toArticle(n)
		if err != nil {
			r.skipped++
			r.log.Warn("skipping malformed record", "record", r.seen, "error", err)
			continue
		}
		return article, nil
	}
}

// Seen returns the number of PubmedArticle elements encountered so far.
func (r *Reader) Seen() int { return r.seen }

// Skipped returns the number of records skipped as malformed.
func (r *Reader) Skipped() int { return r.skipped }

// ReadAll drains r and returns every well-formed record.
func ReadAll(src io.Reader, log *logger.Logger) ([]types.Article, error) {
	r := NewReader(src, log)
	var out []types.Article
	for {
		a, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, a)
	}
}

func toArticle(n *node) (types.Article, error) {
	pmid := strings.TrimSpace(n.findNamed("PMID").text())
	if pmid == "" {
		return types.Article{}, ErrMissingPMID
	}

	a := types.Article{
		ID:    pmid,
		Title: n.findNamed("ArticleTitle").normalizedText(),
	}

	var fragments []string
	for _, frag := range n.findPath("Abstract", "AbstractText") {
		if t := frag.normalizedText(); t != "" {
			fragments = append(fragments, t)
		}
	}
	a.Abstract = strings.Join(fragments, " ")

	for _, au := range n.findPath("AuthorList", "Author") {
		first := au.child("ForeName").normalizedText()
		if first == "" {
			first = au.child("Initials").normalizedText()
		}
		last := au.child("LastName").normalizedText()
		if last == "" {
			last = au.child("CollectiveName").normalizedText()
		}
		if first == "" && last == "" {
			continue
		}
		a.Authors = append(a.Authors, types.Author{FirstName: first, LastName: last})
	}

	for _, ref := range n.findPath("ReferenceList", "Reference") {
		a.References = append(a.References, toReference(ref, types.SourceReferenceList))
	}
	for _, ref := range n.findPath("CitationList", "Citation") {
		a.References = append(a.References, toReference(ref, types.SourceCitationList))
	}

	return a, nil
}

func toReference(n *node, source types.ReferenceSource) types.Reference {
	ref := types.Reference{Source: source}

	idNode := n.find(func(c *node) bool {
		return c.name == "ArticleId" && c.attr("IdType") == "pubmed"
	})
	if idNode != nil {
		ref.CitedID = strings.TrimSpace(idNode.text())
	}

	// Reference entries carry the citation string in a <Citation> child; a
	// bare CitationList entry is its own citation text.
	if c := n.child("Citation"); c != nil {
		ref.Citation = c.normalizedText()
	} else if source == types.SourceCitationList && n.child("ArticleIdList") == nil {
		ref.Citation = n.normalizedText()
	}
	return ref
}
