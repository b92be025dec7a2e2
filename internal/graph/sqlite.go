// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-graph/internal/logger"
	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// DefaultSQLitePath is used when the sqlite backend has no configured path.
const DefaultSQLitePath = "data/pubmed-graph.db"

// SQLiteStore keeps the citation graph in SQLite tables: one table per node
// label and one per relationship type.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQLite opens or creates the database at path and creates the schema if
// it does not exist.
func OpenSQLite(ctx context.Context, path string, log *logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; the pipeline is sequential anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, log: log.With("store", "sqlite", "path", path)}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

// EnsureSchema creates the graph tables and indexes.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			pmid TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			citation_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			UNIQUE (first_name, last_name)
		)`,
		`CREATE TABLE IF NOT EXISTS keywords (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS authored (
			author_id INTEGER NOT NULL REFERENCES authors(id),
			pmid TEXT NOT NULL REFERENCES articles(pmid),
			PRIMARY KEY (author_id, pmid)
		)`,
		`CREATE TABLE IF NOT EXISTS has_keyword (
			pmid TEXT NOT NULL REFERENCES articles(pmid),
			name TEXT NOT NULL REFERENCES keywords(name),
			PRIMARY KEY (pmid, name)
		)`,
		`CREATE TABLE IF NOT EXISTS cites (
			citing TEXT NOT NULL REFERENCES articles(pmid),
			cited TEXT NOT NULL REFERENCES articles(pmid),
			PRIMARY KEY (citing, cited)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authored_pmid ON authored(pmid)`,
		`CREATE INDEX IF NOT EXISTS idx_cites_cited ON cites(cited)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// UpsertArticle inserts the article or overwrites its title and abstract.
func (s *SQLiteStore) UpsertArticle(ctx context.Context, id, title, abstract string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (pmid, title, abstract) VALUES (?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET title=excluded.title, abstract=excluded.abstract`,
		id, title, abstract,
	)
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", id, err)
	}
	return nil
}

// UpsertAuthorship merges the author and links it to the article if the
// article exists.
func (s *SQLiteStore) UpsertAuthorship(ctx context.Context, firstName, lastName, articleID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (first_name, last_name) VALUES (?, ?)
			 ON CONFLICT(first_name, last_name) DO NOTHING`,
			firstName, lastName,
		); err != nil {
			return fmt.Errorf("upserting author %s %s: %w", firstName, lastName, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO authored (author_id, pmid)
			 SELECT a.id, ar.pmid FROM authors a, articles ar
			 WHERE a.first_name = ? AND a.last_name = ? AND ar.pmid = ?`,
			firstName, lastName, articleID,
		); err != nil {
			return fmt.Errorf("linking author to %s: %w", articleID, err)
		}
		return nil
	})
}

// UpsertKeyword merges the keyword and links it to the article if the
// article exists.
func (s *SQLiteStore) UpsertKeyword(ctx context.Context, term, articleID string) error {
	name := normalizeTerm(term)
	if name == "" {
		return fmt.Errorf("upserting keyword for %s: empty term", articleID)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO keywords (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name,
		); err != nil {
			return fmt.Errorf("upserting keyword %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO has_keyword (pmid, name)
			 SELECT pmid, ? FROM articles WHERE pmid = ?`,
			name, articleID,
		); err != nil {
			return fmt.Errorf("linking keyword %s to %s: %w", name, articleID, err)
		}
		return nil
	})
}

// RecordCitation links citing to cited when both articles exist and bumps
// the cited article's running count.
func (s *SQLiteStore) RecordCitation(ctx context.Context, citingID, citedID string) (bool, error) {
	var linked bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var citing, cited int
		if err := tx.QueryRowContext(ctx,
			`SELECT
				(SELECT count(*) FROM articles WHERE pmid = ?),
				(SELECT count(*) FROM articles WHERE pmid = ?)`,
			citingID, citedID,
		).Scan(&citing, &cited); err != nil {
			return fmt.Errorf("checking citation endpoints: %w", err)
		}
		if citing == 0 || cited == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO cites (citing, cited) VALUES (?, ?)`, citingID, citedID,
		); err != nil {
			return fmt.Errorf("linking citation %s -> %s: %w", citingID, citedID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE articles SET citation_count = citation_count + 1 WHERE pmid = ?`, citedID,
		); err != nil {
			return fmt.Errorf("incrementing citation count of %s: %w", citedID, err)
		}
		linked = true
		return nil
	})
	return linked, err
}

// RecomputeCitationCounts sets every article's count to its CITES in-degree.
func (s *SQLiteStore) RecomputeCitationCounts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE articles SET citation_count =
			(SELECT count(*) FROM cites WHERE cites.cited = articles.pmid)`)
	if err != nil {
		return fmt.Errorf("recomputing citation counts: %w", err)
	}
	return nil
}

// GetArticle returns the article with its authors and keywords.
func (s *SQLiteStore) GetArticle(ctx context.Context, id string) (types.ArticleDetail, bool, error) {
	var a types.ArticleDetail
	err := s.db.QueryRowContext(ctx,
		`SELECT pmid, title, abstract, citation_count FROM articles WHERE pmid = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Abstract, &a.CitationCount)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ArticleDetail{}, false, nil
	}
	if err != nil {
		return types.ArticleDetail{}, false, fmt.Errorf("looking up article %s: %w", id, err)
	}
	if err := s.attachRelations(ctx, &a); err != nil {
		return types.ArticleDetail{}, false, err
	}
	return a, true, nil
}

// GetArticles returns the articles found among ids, in the order given.
func (s *SQLiteStore) GetArticles(ctx context.Context, ids []string) ([]types.ArticleDetail, error) {
	return getArticles(ctx, s, ids)
}

// Search matches term against title and abstract, case-insensitively.
func (s *SQLiteStore) Search(ctx context.Context, term string, limit int) ([]types.ArticleDetail, error) {
	t := normalizeTerm(term)
	return s.queryArticles(ctx,
		`SELECT pmid, title, abstract, citation_count FROM articles
		 WHERE instr(lower(title), ?) > 0 OR instr(lower(abstract), ?) > 0
		 ORDER BY length(pmid), pmid
		 LIMIT ?`,
		t, t, normalizeLimit(limit),
	)
}

// ListArticles returns up to limit articles in id order; limit <= 0 returns
// every article.
func (s *SQLiteStore) ListArticles(ctx context.Context, limit int) ([]types.ArticleDetail, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryArticles(ctx,
		`SELECT pmid, title, abstract, citation_count FROM articles
		 ORDER BY length(pmid), pmid
		 LIMIT ?`,
		limit,
	)
}

// Counts returns row counts of every node and relationship table.
func (s *SQLiteStore) Counts(ctx context.Context) (types.GraphCounts, error) {
	counts := types.GraphCounts{
		Nodes:         make(map[string]int64, len(Labels)),
		Relationships: make(map[string]int64, len(RelTypes)),
	}
	for _, l := range Labels {
		n, err := s.count(ctx, string(l))
		if err != nil {
			return counts, err
		}
		counts.Nodes[string(l)] = n
	}
	for _, r := range RelTypes {
		n, err := s.count(ctx, string(r))
		if err != nil {
			return counts, err
		}
		counts.Relationships[string(r)] = n
	}
	return counts, nil
}

func (s *SQLiteStore) count(ctx context.Context, name string) (int64, error) {
	q, err := countSQL(name)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", name, err)
	}
	return n, nil
}

// queryArticles reads article rows, then attaches relations. Rows are
// drained before the relation queries run because the pool holds one
// connection.
func (s *SQLiteStore) queryArticles(ctx context.Context, query string, args ...any) ([]types.ArticleDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}

	out := []types.ArticleDetail{}
	for rows.Next() {
		var a types.ArticleDetail
		if err := rows.Scan(&a.ID, &a.Title, &a.Abstract, &a.CitationCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading articles: %w", err)
	}
	rows.Close()

	for i := range out {
		if err := s.attachRelations(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) attachRelations(ctx context.Context, a *types.ArticleDetail) error {
	authors, err := s.queryStrings(ctx,
		`SELECT trim(au.first_name || ' ' || au.last_name)
		 FROM authors au JOIN authored ed ON ed.author_id = au.id
		 WHERE ed.pmid = ?`, a.ID)
	if err != nil {
		return fmt.Errorf("loading authors of %s: %w", a.ID, err)
	}
	keywords, err := s.queryStrings(ctx,
		`SELECT name FROM has_keyword WHERE pmid = ?`, a.ID)
	if err != nil {
		return fmt.Errorf("loading keywords of %s: %w", a.ID, err)
	}
	a.Authors = dedupeSorted(authors)
	a.Keywords = dedupeSorted(keywords)
	return nil
}

func (s *SQLiteStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
