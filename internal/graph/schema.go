// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
)

// Label is a node label of the citation graph.
type Label string

const (
	LabelArticle Label = "Article"
	LabelAuthor  Label = "Author"
	LabelKeyword Label = "Keyword"
)

// RelType is a relationship type of the citation graph.
type RelType string

const (
	RelAuthored   RelType = "AUTHORED"
	RelHasKeyword RelType = "HAS_KEYWORD"
	RelCites      RelType = "CITES"
)

// Labels and RelTypes list the complete schema in a stable order.
var (
	Labels   = []Label{LabelArticle, LabelAuthor, LabelKeyword}
	RelTypes = []RelType{RelAuthored, RelHasKeyword, RelCites}
)

var (
	// ErrUnknownLabel is returned when a label outside the schema would be
	// placed into query text.
	ErrUnknownLabel = errors.New("unknown node label")

	// ErrUnknownRelType is returned for a relationship type outside the schema.
	ErrUnknownRelType = errors.New("unknown relationship type")
)

// sqliteTables maps schema names to the tables that hold them in SQLiteStore.
var sqliteTables = map[string]string{
	string(LabelArticle):  "articles",
	string(LabelAuthor):   "authors",
	string(LabelKeyword):  "keywords",
	string(RelAuthored):   "authored",
	string(RelHasKeyword): "has_keyword",
	string(RelCites):      "cites",
}

// Validate reports whether l is part of the schema.
func (l Label) Validate() error {
	for _, known := range Labels {
		if l == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownLabel, string(l))
}

// Validate reports whether r is part of the schema.
func (r RelType) Validate() error {
	for _, known := range RelTypes {
		if r == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRelType, string(r))
}

// nodeCountCypher returns the Cypher that counts nodes with label l.
func nodeCountCypher(l Label) (string, error) {
	if err := l.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS c", l), nil
}

// relCountCypher returns the Cypher that counts relationships of type r.
func relCountCypher(r RelType) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS c", r), nil
}

// countSQL returns the SQL that counts rows of the table backing name.
func countSQL(name string) (string, error) {
	table, ok := sqliteTables[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	return "SELECT count(*) FROM " + table, nil
}
