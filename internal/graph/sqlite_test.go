// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-graph/pkg/types"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "graph.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

// seed writes three articles: A and C cite B, and A has two authors and a
// keyword.
func seed(t *testing.T, s *SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertArticle(ctx, "10", "Insulin signalling", "Glucose uptake in muscle."))
	require.NoError(t, s.UpsertArticle(ctx, "2", "Beta cell failure", "Progressive loss of insulin secretion."))
	require.NoError(t, s.UpsertArticle(ctx, "3", "Unrelated", "Nothing to see."))
	require.NoError(t, s.UpsertAuthorship(ctx, "Jane", "Smith", "10"))
	require.NoError(t, s.UpsertAuthorship(ctx, "A", "Doe", "10"))
	require.NoError(t, s.UpsertAuthorship(ctx, "Jane", "Smith", "2"))
	require.NoError(t, s.UpsertKeyword(ctx, "Insulin", "10"))
	require.NoError(t, s.UpsertKeyword(ctx, "insulin", "2"))

	linked, err := s.RecordCitation(ctx, "10", "2")
	require.NoError(t, err)
	require.True(t, linked)
	linked, err = s.RecordCitation(ctx, "3", "2")
	require.NoError(t, err)
	require.True(t, linked)
}

func TestOpenSQLiteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graph.db")
	s, err := OpenSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	defer s.Close(context.Background())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestGetArticleRoundTrip(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	a, found, err := s.GetArticle(context.Background(), "10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Insulin signalling", a.Title)
	assert.Equal(t, "Glucose uptake in muscle.", a.Abstract)
	assert.Equal(t, []string{"A Doe", "Jane Smith"}, a.Authors)
	assert.Equal(t, []string{"insulin"}, a.Keywords)
}

func TestGetArticleNotFound(t *testing.T) {
	s := testStore(t)
	_, found, err := s.GetArticle(context.Background(), "404")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertArticleOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertArticle(ctx, "1", "Old", "Old abstract"))
	require.NoError(t, s.UpsertArticle(ctx, "1", "New", ""))

	a, found, err := s.GetArticle(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "New", a.Title)
	assert.Empty(t, a.Abstract)
}

func TestUpsertsAreIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s)
	before, err := s.Counts(ctx)
	require.NoError(t, err)

	seed(t, s)
	after, err := s.Counts(ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, int64(3), after.Nodes["Article"])
	assert.Equal(t, int64(2), after.Nodes["Author"])
	assert.Equal(t, int64(1), after.Nodes["Keyword"])
	assert.Equal(t, int64(3), after.Relationships["AUTHORED"])
	assert.Equal(t, int64(2), after.Relationships["HAS_KEYWORD"])
	assert.Equal(t, int64(2), after.Relationships["CITES"])
}

func TestRecomputeCitationCounts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seed(t, s)
	// Re-linking the same pair inflates the running count.
	_, err := s.RecordCitation(ctx, "10", "2")
	require.NoError(t, err)

	b, _, err := s.GetArticle(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.CitationCount)

	require.NoError(t, s.RecomputeCitationCounts(ctx))

	b, _, err = s.GetArticle(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.CitationCount)

	a, _, err := s.GetArticle(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.CitationCount)
}

func TestDanglingCitationSkipped(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertArticle(ctx, "1", "Citing", ""))

	linked, err := s.RecordCitation(ctx, "1", "999")
	require.NoError(t, err)
	assert.False(t, linked)

	linked, err = s.RecordCitation(ctx, "999", "1")
	require.NoError(t, err)
	assert.False(t, linked)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Nodes["Article"])
	assert.Equal(t, int64(0), counts.Relationships["CITES"])

	_, found, err := s.GetArticle(ctx, "999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAuthorshipWithoutArticle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertAuthorship(ctx, "Jane", "Smith", "missing"))
	require.NoError(t, s.UpsertKeyword(ctx, "orphan", "missing"))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Nodes["Author"])
	assert.Equal(t, int64(1), counts.Nodes["Keyword"])
	assert.Equal(t, int64(0), counts.Relationships["AUTHORED"])
	assert.Equal(t, int64(0), counts.Relationships["HAS_KEYWORD"])
	assert.Equal(t, int64(0), counts.Nodes["Article"])
}

func TestUpsertKeywordRejectsEmpty(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.UpsertKeyword(context.Background(), "  ", "1"))
}

func TestGetArticlesOmitsMissing(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	got, err := s.GetArticles(context.Background(), []string{"3", "404", "10"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "10", got[1].ID)
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name  string
		term  string
		limit int
		want  []string
	}{
		{name: "case insensitive title and abstract", term: "INSULIN", want: []string{"2", "10"}},
		{name: "abstract only", term: "glucose", want: []string{"10"}},
		{name: "limit", term: "insulin", limit: 1, want: []string{"2"}},
		{name: "no match", term: "zebrafish", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.term, tt.limit)
			require.NoError(t, err)
			ids := []string{}
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearchAttachesRelations(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	got, err := s.Search(context.Background(), "signalling", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"A Doe", "Jane Smith"}, got[0].Authors)
	assert.Equal(t, []string{"insulin"}, got[0].Keywords)
}

func TestSearchDoesNotMutate(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	before, err := s.Counts(ctx)
	require.NoError(t, err)
	_, err = s.Search(ctx, "insulin", 5)
	require.NoError(t, err)
	_, _, err = s.GetArticle(ctx, "10")
	require.NoError(t, err)
	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestListArticles(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	all, err := s.ListArticles(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2", all[0].ID)
	assert.Equal(t, "3", all[1].ID)
	assert.Equal(t, "10", all[2].ID)

	two, err := s.ListArticles(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), types.StoreConfig{Backend: "mongo"}, nil)
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := types.StoreConfig{
		Backend:    types.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "g.db"),
	}
	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close(context.Background())
	require.NoError(t, s.EnsureSchema(context.Background()))
}
