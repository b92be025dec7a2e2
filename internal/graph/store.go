// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph persists articles, authors, and keywords as a citation graph
// and queries it back. Neo4jStore talks to a Neo4j server; SQLiteStore keeps
// the same graph in a local SQLite file.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// DefaultSearchLimit is the number of results Search returns when the
// caller passes a non-positive limit.
const DefaultSearchLimit = 5

// ErrUnknownBackend is returned by Open for an unsupported store_backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// Writer upserts graph entities. Every call is its own transaction and is
// safe to repeat.
type Writer interface {
	// UpsertArticle creates the article or overwrites its title and abstract.
	UpsertArticle(ctx context.Context, id, title, abstract string) error

	// UpsertAuthorship merges the author and, when the article exists, the
	// AUTHORED edge. A missing article leaves the author unlinked.
	UpsertAuthorship(ctx context.Context, firstName, lastName, articleID string) error

	// UpsertKeyword merges the lowercased keyword and, when the article
	// exists, the HAS_KEYWORD edge.
	UpsertKeyword(ctx context.Context, term, articleID string) error

	// RecordCitation merges a CITES edge when both articles exist and bumps
	// the cited article's running count. It reports whether the edge was
	// written; a missing endpoint is not an error.
	RecordCitation(ctx context.Context, citingID, citedID string) (bool, error)

	// RecomputeCitationCounts sets every article's citation count to its
	// CITES in-degree.
	RecomputeCitationCounts(ctx context.Context) error
}

// Reader queries the graph. Reads never mutate it.
type Reader interface {
	// GetArticle returns the article with its authors and keywords. The
	// boolean is false when no article has that id.
	GetArticle(ctx context.Context, id string) (types.ArticleDetail, bool, error)

	// GetArticles looks ids up one by one and returns the ones found.
	GetArticles(ctx context.Context, ids []string) ([]types.ArticleDetail, error)

	// Search returns up to limit articles whose title or abstract contains
	// term, case-insensitively, ordered by id.
	Search(ctx context.Context, term string, limit int) ([]types.ArticleDetail, error)

	// ListArticles returns up to limit articles ordered by id. limit <= 0
	// returns all of them.
	ListArticles(ctx context.Context, limit int) ([]types.ArticleDetail, error)

	// Counts returns node and relationship counts for the whole schema.
	Counts(ctx context.Context) (types.GraphCounts, error)
}

// Store is a graph backend.
type Store interface {
	Writer
	Reader

	// EnsureSchema creates constraints, indexes, or tables if missing.
	EnsureSchema(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Open connects to the backend selected by cfg.Backend (neo4j when empty).
// The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg types.StoreConfig, log *logger.Logger) (Store, error) {
	switch cfg.Backend {
	case types.BackendNeo4j, "":
		return OpenNeo4j(ctx, cfg.Neo4j, log)
	case types.BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, string(cfg.Backend))
	}
}

// getArticles is the sequential multi-lookup shared by both backends.
func getArticles(ctx context.Context, r Reader, ids []string) ([]types.ArticleDetail, error) {
	var out []types.ArticleDetail
	for _, id := range ids {
		a, found, err := r.GetArticle(ctx, id)
		if err != nil {
			return out, err
		}
		if found {
			out = append(out, a)
		}
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	return limit
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// dedupeSorted returns the non-empty values of in, deduplicated and sorted.
func dedupeSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// idLess orders identifiers shorter-first, then lexicographically, which is
// numeric order for PMIDs.
func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
