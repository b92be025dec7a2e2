// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-graph/internal/graph"
)

const samplePath = "testdata/sample.xml"

func testStore(t *testing.T) *graph.SQLiteStore {
	t.Helper()
	s, err := graph.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "graph.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestIngestSample(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	var out bytes.Buffer

	summary, err := New(s, Options{}, nil).IngestFile(ctx, samplePath, &out)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Articles:         3,
		Authorships:      3,
		Keywords:         10,
		CitationsLinked:  2,
		CitationsSkipped: 2,
		Malformed:        1,
	}, summary)
	assert.Contains(t, out.String(), "ingested 1001 (3 authors, 2 references)")
	assert.Contains(t, out.String(), "articles: 3, authorships: 3, keywords: 10, citations: 2 linked, 2 skipped, malformed: 1, failed: 0")

	a, found, err := s.GetArticle(ctx, "1001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Insulin resistance in type 2 diabetes.", a.Title)
	assert.Equal(t, []string{"A Doe", "Diabetes Study Group", "Jane Smith"}, a.Authors)
	assert.Contains(t, a.Keywords, "insulin")

	// 1002 cites 1003, which appears later in the document.
	c, _, err := s.GetArticle(ctx, "1003")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.CitationCount)
	b, _, err := s.GetArticle(ctx, "1002")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.CitationCount)
}

func TestIngestTwiceIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	p := New(s, Options{}, nil)

	_, err := p.IngestFile(ctx, samplePath, io.Discard)
	require.NoError(t, err)
	first, err := s.Counts(ctx)
	require.NoError(t, err)

	_, err = p.IngestFile(ctx, samplePath, io.Discard)
	require.NoError(t, err)
	second, err := s.Counts(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(3), second.Nodes["Article"])
	assert.Equal(t, int64(3), second.Nodes["Author"])
	assert.Equal(t, int64(10), second.Nodes["Keyword"])

	// Counts come from the recount, not the doubled running increments.
	b, _, err := s.GetArticle(ctx, "1002")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.CitationCount)
}

func TestIngestSkipCitations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	summary, err := New(s, Options{SkipCitations: true}, nil).IngestFile(ctx, samplePath, io.Discard)
	require.NoError(t, err)
	assert.Zero(t, summary.CitationsLinked)
	assert.Zero(t, summary.CitationsSkipped)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Relationships["CITES"])

	// A later citations pass links what the article pass left out.
	linkSummary, err := New(s, Options{}, nil).LinkCitationsFile(ctx, samplePath, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, linkSummary.CitationsLinked)
	assert.Equal(t, 2, linkSummary.CitationsSkipped)
	assert.Equal(t, 1, linkSummary.Malformed)
}

func TestReferencesWithoutPMIDAreSkipped(t *testing.T) {
	doc := `<PubmedArticleSet><PubmedArticle>
		<MedlineCitation><PMID>1</PMID></MedlineCitation>
		<PubmedData><ReferenceList>
			<Reference><Citation>No identifiers here.</Citation></Reference>
			<Reference><ArticleIdList><ArticleId IdType="doi">10.1/x</ArticleId></ArticleIdList></Reference>
		</ReferenceList></PubmedData>
	</PubmedArticle></PubmedArticleSet>`

	s := testStore(t)
	ctx := context.Background()
	summary, err := New(s, Options{}, nil).Ingest(ctx, strings.NewReader(doc), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CitationsSkipped)
	assert.Zero(t, summary.CitationsLinked)

	linkSummary, err := New(s, Options{}, nil).LinkCitations(ctx, strings.NewReader(doc), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, linkSummary.CitationsSkipped)
}

func TestIngestKeywordCount(t *testing.T) {
	s := testStore(t)
	summary, err := New(s, Options{Keywords: 2}, nil).IngestFile(context.Background(), samplePath, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Keywords)
}

func TestDanglingCitationsCounted(t *testing.T) {
	doc := `<PubmedArticleSet><PubmedArticle>
		<MedlineCitation><PMID>1</PMID></MedlineCitation>
		<PubmedData><ReferenceList>
			<Reference><ArticleIdList><ArticleId IdType="pubmed">404</ArticleId></ArticleIdList></Reference>
		</ReferenceList></PubmedData>
	</PubmedArticle></PubmedArticleSet>`

	s := testStore(t)
	ctx := context.Background()
	summary, err := New(s, Options{}, nil).Ingest(ctx, strings.NewReader(doc), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CitationsSkipped)
	assert.Zero(t, summary.CitationsLinked)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Nodes["Article"])
}

func TestIngestBrokenDocument(t *testing.T) {
	s := testStore(t)
	_, err := New(s, Options{}, nil).Ingest(context.Background(),
		strings.NewReader(`<PubmedArticleSet><PubmedArticle><MedlineCitation>`), io.Discard)
	require.Error(t, err)
}

func TestIngestCancelled(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(s, Options{}, nil).IngestFile(ctx, samplePath, io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLinkCitationsCancelled(t *testing.T) {
	w := &failingWriter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(w, Options{}, nil).LinkCitationsFile(ctx, samplePath, io.Discard)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, w.citations)
	assert.Zero(t, w.recounts)
}

func TestIngestMissingFile(t *testing.T) {
	s := testStore(t)
	_, err := New(s, Options{}, nil).IngestFile(context.Background(), "testdata/missing.xml", io.Discard)
	require.Error(t, err)
}

// failingWriter fails writes for selected ids and records the calls it
// accepted.
type failingWriter struct {
	failArticle map[string]bool
	failCite    bool
	failRecount bool

	articles  []string
	citations int
	recounts  int
}

var errWrite = errors.New("write failed")

func (f *failingWriter) UpsertArticle(_ context.Context, id, _, _ string) error {
	if f.failArticle[id] {
		return errWrite
	}
	f.articles = append(f.articles, id)
	return nil
}

func (f *failingWriter) UpsertAuthorship(context.Context, string, string, string) error {
	return nil
}

func (f *failingWriter) UpsertKeyword(context.Context, string, string) error { return nil }

func (f *failingWriter) RecordCitation(context.Context, string, string) (bool, error) {
	if f.failCite {
		return false, errWrite
	}
	f.citations++
	return true, nil
}

func (f *failingWriter) RecomputeCitationCounts(context.Context) error {
	f.recounts++
	if f.failRecount {
		return errWrite
	}
	return nil
}

func TestFailedWritesAreIsolated(t *testing.T) {
	w := &failingWriter{failArticle: map[string]bool{"1001": true}}
	summary, err := New(w, Options{}, nil).IngestFile(context.Background(), samplePath, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"1002", "1003"}, w.articles)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Articles)
	// Only 1002's reference is buffered; 1001 never reached the store.
	assert.Equal(t, 1, w.citations)
	assert.Equal(t, 1, w.recounts)
}

func TestFailedCitationsAreCounted(t *testing.T) {
	w := &failingWriter{failCite: true, failRecount: true}
	summary, err := New(w, Options{}, nil).IngestFile(context.Background(), samplePath, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Failed)
	assert.Zero(t, summary.CitationsLinked)
}
