package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/catalog"
	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

type fakeProvider struct {
	mu      sync.Mutex
	records []models.FileRecord
	err     error
	// gate, when set, blocks the next Files call until it is closed.
	gate chan struct{}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Files(ctx context.Context) ([]models.FileRecord, error) {
	p.mu.Lock()
	gate := p.gate
	p.gate = nil
	records := append([]models.FileRecord(nil), p.records...)
	err := p.err
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return records, err
}

func (p *fakeProvider) set(records ...models.FileRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
}

type fakeBackend struct{}

func (fakeBackend) Document(ctx context.Context, id string) (*models.Document, error) {
	return &models.Document{ID: id, Title: "doc " + id}, nil
}

func (fakeBackend) Search(ctx context.Context, query string) ([]models.SearchHit, error) {
	return []models.SearchHit{{ID: "1", Title: query}}, nil
}

func newTestService(t *testing.T, p *fakeProvider, cfg *Config, opts ...Option) *Service {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc, err := New(cfg, p, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New(&Config{Exclude: []string{"[bad"}}, &fakeProvider{})
	assert.Error(t, err)

	svc, err := New(nil, &fakeProvider{})
	require.NoError(t, err)
	assert.Equal(t, tree.DuplicateKeepLast, svc.config.DuplicatePolicy)
	assert.Empty(t, svc.Snapshot().Root.Children)
}

func TestRefreshPublishesCompactedTree(t *testing.T) {
	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "/a/b/c/d.txt"},
		models.FileRecord{ID: "2", URL: ""},
	)
	svc := newTestService(t, p, nil)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 2, snap.Records)
	assert.Equal(t, []string{""}, snap.Dropped)
	require.Len(t, snap.Root.Children, 1)
	assert.Equal(t, "a/b/c", snap.Root.Children[0].Label)
	assert.Same(t, snap, svc.Snapshot())
}

func TestRefreshAppliesExclude(t *testing.T) {
	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "/docs/a.md"},
		models.FileRecord{ID: "2", URL: "/docs/a.tmp"},
	)
	svc := newTestService(t, p, &Config{Exclude: []string{"**/*.tmp"}})

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Records)
	assert.Equal(t, []string{"1"}, tree.LeafIDs(snap.Root))
}

func TestRefreshFetchError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	svc := newTestService(t, p, nil)

	_, err := svc.Refresh(context.Background())
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, uint64(0), svc.Snapshot().Generation)
}

func TestRefreshDuplicatePolicies(t *testing.T) {
	dup := []models.FileRecord{
		{ID: "old", URL: "https://h/a.pdf"},
		{ID: "new", URL: "https://h//a.pdf"},
	}

	t.Run("last", func(t *testing.T) {
		p := &fakeProvider{}
		p.set(dup...)
		snap, err := newTestService(t, p, nil).Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, tree.LeafIDs(snap.Root))
		assert.Len(t, snap.Conflicts, 1)
	})

	t.Run("first", func(t *testing.T) {
		p := &fakeProvider{}
		p.set(dup...)
		snap, err := newTestService(t, p, &Config{DuplicatePolicy: tree.DuplicateKeepFirst}).Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"old"}, tree.LeafIDs(snap.Root))
	})

	t.Run("reject", func(t *testing.T) {
		p := &fakeProvider{}
		p.set(dup...)
		svc := newTestService(t, p, &Config{DuplicatePolicy: tree.DuplicateReject})
		snap, err := svc.Refresh(context.Background())
		assert.ErrorIs(t, err, ErrDuplicatePath)
		require.NotNil(t, snap)
		assert.Equal(t, "https://h/a.pdf", snap.Conflicts[0].Path)
		assert.Equal(t, uint64(0), svc.Snapshot().Generation)
	})
}

func TestRefreshDiscardsStaleResult(t *testing.T) {
	p := &fakeProvider{}
	p.set(models.FileRecord{ID: "old", URL: "/old"})
	gate := make(chan struct{})
	p.gate = gate
	svc := newTestService(t, p, nil)

	staleErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		staleErr <- err
	}()

	// Wait until the first refresh has taken the gate and is blocked on it.
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.gate == nil
	}, testTimeout, testTick)

	p.set(models.FileRecord{ID: "new", URL: "/new"})
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Generation)

	close(gate)
	assert.ErrorIs(t, <-staleErr, ErrStaleRefresh)
	assert.Equal(t, []string{"new"}, tree.LeafIDs(svc.Snapshot().Root))
}

func TestQuery(t *testing.T) {
	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "/a/b/c"},
		models.FileRecord{ID: "2", URL: "/a/d"},
	)
	svc := newTestService(t, p, nil)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	b := snap.Root.Children[0].Children[0]

	res := svc.Query("  c ")
	assert.Equal(t, "c", res.Query)
	assert.Equal(t, []string{b.Key}, res.ExpandedKeys)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "c", res.Matches[0].Label)
	assert.Same(t, res, svc.Query("c"))

	blank := svc.Query("   ")
	assert.Empty(t, blank.ExpandedKeys)
	assert.Empty(t, blank.Matches)

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, res, svc.Query("c"))
}

func TestRows(t *testing.T) {
	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "/a/b/c"},
		models.FileRecord{ID: "2", URL: "/a/d"},
		models.FileRecord{ID: "3", URL: "/e/f"},
	)
	svc := newTestService(t, p, nil)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	rows := svc.Rows("c")
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Path
	}
	assert.Equal(t, []string{"a", "a/b", "a/b/c", "a/d", "e"}, paths)

	rows = svc.Rows("", snap.Root.Children[1].Key)
	assert.Len(t, rows, 3)
}

func TestLeafIDs(t *testing.T) {
	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "/a/b"},
		models.FileRecord{ID: "2", URL: "/a/c"},
	)
	svc := newTestService(t, p, nil)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	ids, err := svc.LeafIDs(snap.Root.Children[0].Key)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)

	_, err = svc.LeafIDs("missing")
	assert.Error(t, err)
}

func TestCatalogIntegration(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "https://h/docs/Guide.pdf"},
		models.FileRecord{ID: "2", URL: "https://h/docs/notes.md"},
	)
	svc := newTestService(t, p, nil, WithCatalog(cat))
	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	recs, err := svc.Records(ctx, "guide")
	require.NoError(t, err)
	assert.Equal(t, []models.FileRecord{{ID: "1", URL: "https://h/docs/Guide.pdf"}}, recs)

	// The catalog can serve as the provider of an offline service.
	offline := newTestService(t, &fakeProvider{}, nil)
	offline.provider = cat
	snap, err := offline.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, tree.LeafIDs(snap.Root))

	_, err = offline.Records(ctx, "")
	assert.Error(t, err)
}

func TestBackendPassThrough(t *testing.T) {
	ctx := context.Background()
	without := newTestService(t, &fakeProvider{}, nil)
	_, err := without.Document(ctx, "1")
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = without.SearchDocuments(ctx, "x")
	assert.ErrorIs(t, err, ErrNoBackend)

	with := newTestService(t, &fakeProvider{}, nil, WithBackend(fakeBackend{}))
	doc, err := with.Document(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "doc 7", doc.Title)

	hits, err := with.SearchDocuments(ctx, "  term ")
	require.NoError(t, err)
	assert.Equal(t, "term", hits[0].Title)
}

func TestOfflineRefreshKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()
	require.NoError(t, cat.ReplaceAll(ctx, []models.FileRecord{
		{ID: "a", URL: "docs/a.md"},
		{ID: "b", URL: "docs/b.tmp"},
	}))

	logger, _ := test.NewNullLogger()
	svc, err := New(&Config{Exclude: []string{"**/*.tmp"}}, cat, WithCatalog(cat), WithLogger(logger))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		snap, err := svc.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, tree.LeafIDs(snap.Root))
	}

	n, err := svc.CatalogSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Dropping the exclude list brings the record back.
	relaxed, err := New(&Config{}, cat, WithCatalog(cat), WithLogger(logger))
	require.NoError(t, err)
	snap, err := relaxed.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tree.LeafIDs(snap.Root))
}

func TestRefreshStoresUnfilteredListing(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "docs/keep.md"},
		models.FileRecord{ID: "2", URL: "docs/drafts/skip.md"},
	)
	svc := newTestService(t, p, &Config{Exclude: []string{"**/drafts/**"}}, WithCatalog(cat))
	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	stored, err := cat.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	recs, err := svc.Records(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []models.FileRecord{{ID: "1", URL: "docs/keep.md"}}, recs)
}

func TestBackendFallsBackToCatalog(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	p := &fakeProvider{}
	p.set(
		models.FileRecord{ID: "1", URL: "https://h/docs/Guide.pdf"},
		models.FileRecord{ID: "2", URL: "https://h/docs/notes.md"},
	)
	svc := newTestService(t, p, nil, WithCatalog(cat))
	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	doc, err := svc.Document(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &models.Document{ID: "1", Title: "Guide.pdf", URL: "https://h/docs/Guide.pdf"}, doc)

	_, err = svc.Document(ctx, "9")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	hits, err := svc.SearchDocuments(ctx, " notes ")
	require.NoError(t, err)
	assert.Equal(t, []models.SearchHit{{ID: "2", Name: "notes.md", URL: "https://h/docs/notes.md"}}, hits)

	hits, err = svc.SearchDocuments(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
