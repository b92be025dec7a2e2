// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// Cypher statements. Labels and relationship types are fixed schema names;
// every value is a parameter.
const (
	cypherUpsertArticle = `
MERGE (a:Article {pmid: $pmid})
ON CREATE SET a.citation_count = 0
SET a.title = $title, a.abstract = $abstract`

	cypherUpsertAuthorship = `
MERGE (au:Author {first_name: $first_name, last_name: $last_name})
WITH au
MATCH (a:Article {pmid: $pmid})
MERGE (au)-[:AUTHORED]->(a)`

	cypherUpsertKeyword = `
MERGE (k:Keyword {name: $name})
WITH k
MATCH (a:Article {pmid: $pmid})
MERGE (a)-[:HAS_KEYWORD]->(k)`

	cypherRecordCitation = `
MATCH (citing:Article {pmid: $citing_pmid})
MATCH (cited:Article {pmid: $cited_pmid})
MERGE (citing)-[:CITES]->(cited)
WITH cited
SET cited.citation_count = coalesce(cited.citation_count, 0) + 1
RETURN count(cited) AS linked`

	cypherRecomputeCitationCounts = `
MATCH (a:Article)
OPTIONAL MATCH (a)<-[r:CITES]-(:Article)
WITH a, count(r) AS in_degree
SET a.citation_count = in_degree`

	// cypherArticleProjection attaches authors and keywords to the articles
	// bound to `a` and returns one row per article.
	cypherArticleProjection = `
OPTIONAL MATCH (au:Author)-[:AUTHORED]->(a)
OPTIONAL MATCH (a)-[:HAS_KEYWORD]->(k:Keyword)
RETURN
	a.pmid AS pmid,
	coalesce(a.title, '') AS title,
	coalesce(a.abstract, '') AS abstract,
	coalesce(a.citation_count, 0) AS citation_count,
	collect(DISTINCT au {.first_name, .last_name}) AS authors,
	collect(DISTINCT k.name) AS keywords
ORDER BY size(pmid), pmid`

	cypherGetArticle = `
MATCH (a:Article {pmid: $pmid})` + cypherArticleProjection

	cypherSearch = `
MATCH (a:Article)
WHERE toLower(coalesce(a.title, '')) CONTAINS $term
   OR toLower(coalesce(a.abstract, '')) CONTAINS $term
WITH a ORDER BY size(a.pmid), a.pmid LIMIT $limit` + cypherArticleProjection

	cypherListArticles = `
MATCH (a:Article)
WITH a ORDER BY size(a.pmid), a.pmid LIMIT $limit` + cypherArticleProjection

	cypherListAllArticles = `
MATCH (a:Article)
WITH a ORDER BY size(a.pmid), a.pmid` + cypherArticleProjection
)

// schemaStatements create the constraints and indexes the upserts merge on.
var schemaStatements = []string{
	`CREATE CONSTRAINT article_pmid_unique IF NOT EXISTS FOR (a:Article) REQUIRE a.pmid IS UNIQUE`,
	`CREATE CONSTRAINT keyword_name_unique IF NOT EXISTS FOR (k:Keyword) REQUIRE k.name IS UNIQUE`,
	`CREATE INDEX author_name_idx IF NOT EXISTS FOR (au:Author) ON (au.first_name, au.last_name)`,
}

// Neo4jStore is the Neo4j-backed graph store. It owns its driver.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// OpenNeo4j creates a driver for cfg and verifies connectivity.
func OpenNeo4j(ctx context.Context, cfg types.Neo4jConfig, log *logger.Logger) (*Neo4jStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", cfg.URI, err)
	}
	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		log:      log.With("store", "neo4j", "uri", cfg.URI),
	}, nil
}

// Close closes the driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}

// EnsureSchema creates constraints and indexes. Failures are logged and
// skipped, since restricted users may not be allowed to manage schema.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		res, err := session.Run(ctx, stmt, nil)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err != nil {
			s.log.Warn("neo4j schema statement failed (continuing)", "statement", stmt, "error", err)
		}
	}
	return nil
}

func (s *Neo4jStore) UpsertArticle(ctx context.Context, id, title, abstract string) error {
	err := s.write(ctx, cypherUpsertArticle, map[string]any{
		"pmid": id, "title": title, "abstract": abstract,
	})
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", id, err)
	}
	return nil
}

func (s *Neo4jStore) UpsertAuthorship(ctx context.Context, firstName, lastName, articleID string) error {
	err := s.write(ctx, cypherUpsertAuthorship, map[string]any{
		"first_name": firstName, "last_name": lastName, "pmid": articleID,
	})
	if err != nil {
		return fmt.Errorf("upserting author %s %s for %s: %w", firstName, lastName, articleID, err)
	}
	return nil
}

func (s *Neo4jStore) UpsertKeyword(ctx context.Context, term, articleID string) error {
	name := normalizeTerm(term)
	if name == "" {
		return fmt.Errorf("upserting keyword for %s: empty term", articleID)
	}
	if err := s.write(ctx, cypherUpsertKeyword, map[string]any{"name": name, "pmid": articleID}); err != nil {
		return fmt.Errorf("upserting keyword %s for %s: %w", name, articleID, err)
	}
	return nil
}

func (s *Neo4jStore) RecordCitation(ctx context.Context, citingID, citedID string) (bool, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	linked, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypherRecordCitation, map[string]any{
			"citing_pmid": citingID, "cited_pmid": citedID,
		})
		if err != nil {
			return false, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return false, err
		}
		n, _ := rec.Get("linked")
		return asInt64(n) > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("linking citation %s -> %s: %w", citingID, citedID, err)
	}
	return linked.(bool), nil
}

func (s *Neo4jStore) RecomputeCitationCounts(ctx context.Context) error {
	if err := s.write(ctx, cypherRecomputeCitationCounts, nil); err != nil {
		return fmt.Errorf("recomputing citation counts: %w", err)
	}
	return nil
}

func (s *Neo4jStore) GetArticle(ctx context.Context, id string) (types.ArticleDetail, bool, error) {
	articles, err := s.readArticles(ctx, cypherGetArticle, map[string]any{"pmid": id})
	if err != nil {
		return types.ArticleDetail{}, false, fmt.Errorf("looking up article %s: %w", id, err)
	}
	if len(articles) == 0 {
		return types.ArticleDetail{}, false, nil
	}
	return articles[0], true, nil
}

func (s *Neo4jStore) GetArticles(ctx context.Context, ids []string) ([]types.ArticleDetail, error) {
	return getArticles(ctx, s, ids)
}

func (s *Neo4jStore) Search(ctx context.Context, term string, limit int) ([]types.ArticleDetail, error) {
	articles, err := s.readArticles(ctx, cypherSearch, map[string]any{
		"term":  normalizeTerm(term),
		"limit": int64(normalizeLimit(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("searching articles for %q: %w", term, err)
	}
	return articles, nil
}

func (s *Neo4jStore) ListArticles(ctx context.Context, limit int) ([]types.ArticleDetail, error) {
	query, params := cypherListAllArticles, map[string]any(nil)
	if limit > 0 {
		query, params = cypherListArticles, map[string]any{"limit": int64(limit)}
	}
	articles, err := s.readArticles(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

func (s *Neo4jStore) Counts(ctx context.Context) (types.GraphCounts, error) {
	counts := types.GraphCounts{
		Nodes:         make(map[string]int64, len(Labels)),
		Relationships: make(map[string]int64, len(RelTypes)),
	}
	for _, l := range Labels {
		q, err := nodeCountCypher(l)
		if err != nil {
			return counts, err
		}
		n, err := s.readCount(ctx, q)
		if err != nil {
			return counts, fmt.Errorf("counting %s nodes: %w", l, err)
		}
		counts.Nodes[string(l)] = n
	}
	for _, r := range RelTypes {
		q, err := relCountCypher(r)
		if err != nil {
			return counts, err
		}
		n, err := s.readCount(ctx, q)
		if err != nil {
			return counts, fmt.Errorf("counting %s relationships: %w", r, err)
		}
		counts.Relationships[string(r)] = n
	}
	return counts, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// write runs one statement in its own managed write transaction.
func (s *Neo4jStore) write(ctx context.Context, query string, params map[string]any) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

func (s *Neo4jStore) readArticles(ctx context.Context, query string, params map[string]any) ([]types.ArticleDetail, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		articles := make([]types.ArticleDetail, 0, len(records))
		for _, rec := range records {
			articles = append(articles, articleFromRecord(rec))
		}
		return articles, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.ArticleDetail), nil
}

func (s *Neo4jStore) readCount(ctx context.Context, query string) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	n, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := rec.Get("c")
		return asInt64(v), nil
	})
	if err != nil {
		return 0, err
	}
	return n.(int64), nil
}

// articleFromRecord converts one projection row into an ArticleDetail.
func articleFromRecord(rec *neo4j.Record) types.ArticleDetail {
	get := func(key string) any {
		v, _ := rec.Get(key)
		return v
	}

	a := types.ArticleDetail{
		ID:            asString(get("pmid")),
		Title:         asString(get("title")),
		Abstract:      asString(get("abstract")),
		CitationCount: asInt64(get("citation_count")),
	}

	var authors []string
	for _, v := range asSlice(get("authors")) {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		name := types.Author{
			FirstName: asString(m["first_name"]),
			LastName:  asString(m["last_name"]),
		}.DisplayName()
		authors = append(authors, name)
	}
	a.Authors = dedupeSorted(authors)

	var keywords []string
	for _, v := range asSlice(get("keywords")) {
		keywords = append(keywords, strings.TrimSpace(asString(v)))
	}
	a.Keywords = dedupeSorted(keywords)
	return a
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
