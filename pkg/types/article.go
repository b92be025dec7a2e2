// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Author is a name pair as it appears in a citation's author list. Two
// authors are the same graph node only when both names match exactly.
type Author struct {
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// DisplayName returns "First Last", omitting whichever part is empty.
func (a Author) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// ReferenceSource records which of the two PubMed reference shapes a
// reference was read from.
type ReferenceSource string

const (
	// SourceReferenceList is PubmedData/ReferenceList/Reference.
	SourceReferenceList ReferenceSource = "reference_list"

	// SourceCitationList is CitationList/Citation.
	SourceCitationList ReferenceSource = "citation_list"
)

// Reference is a normalized entry from an article's reference list.
type Reference struct {
	// Source is the XML shape the reference was read from.
	Source ReferenceSource `json:"source" yaml:"source"`

	// CitedID is the PMID of the cited article. Empty when the reference
	// carries no pubmed identifier.
	CitedID string `json:"cited_id,omitempty" yaml:"cited_id,omitempty"`

	// Citation is the free-text citation string, if present.
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty"`
}

// HasCitedID reports whether the reference can be linked in the graph.
func (r Reference) HasCitedID() bool { return r.CitedID != "" }

// Article is one parsed PubmedArticle record.
type Article struct {
	// ID is the PMID. Always non-empty for records produced by the reader.
	ID string `json:"pmid" yaml:"pmid"`

	// Title is the ArticleTitle text. May be empty.
	Title string `json:"title" yaml:"title"`

	// Abstract is the concatenation of every AbstractText fragment.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the author name pairs in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// References lists cited works from either reference shape.
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// ArticleDetail is an article as stored in the graph, with its related
// authors and keywords attached.
type ArticleDetail struct {
	ID            string   `json:"pmid" yaml:"pmid"`
	Title         string   `json:"title" yaml:"title"`
	Abstract      string   `json:"abstract" yaml:"abstract"`
	CitationCount int64    `json:"citation_count" yaml:"citation_count"`
	Authors       []string `json:"authors" yaml:"authors"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// GraphCounts holds node counts per label and edge counts per relationship
// type.
type GraphCounts struct {
	Nodes         map[string]int64 `json:"nodes" yaml:"nodes"`
	Relationships map[string]int64 `json:"relationships" yaml:"relationships"`
}
