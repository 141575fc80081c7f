package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-docnav/pkg/catalog"
	"github.com/mattsolo1/grove-docnav/pkg/feed"
	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/search"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

var (
	// ErrStaleRefresh is returned when a newer refresh was applied while this
	// one was still fetching. Its result is discarded.
	ErrStaleRefresh = errors.New("stale refresh discarded")
	// ErrDuplicatePath is returned under the reject policy when two records
	// resolve to the same leaf with different ids.
	ErrDuplicatePath = errors.New("duplicate document path")
	// ErrNoBackend is returned by backend pass-throughs when no backend is configured.
	ErrNoBackend = errors.New("no backend configured")
)

// Backend is the part of the backend API used besides the file listing.
type Backend interface {
	Document(ctx context.Context, id string) (*models.Document, error)
	Search(ctx context.Context, query string) ([]models.SearchHit, error)
}

// Config holds service configuration
type Config struct {
	DuplicatePolicy tree.DuplicatePolicy
	Exclude         []string
	CacheSize       int
}

// Snapshot is an immutable view of one successful refresh.
type Snapshot struct {
	Generation uint64
	Root       *tree.Node
	Records    int
	Conflicts  []tree.Conflict
	Dropped    []string
	BuiltAt    time.Time
}

// QueryResult is what a filter query derives from the current snapshot.
type QueryResult struct {
	Query        string         `json:"query"`
	Generation   uint64         `json:"generation"`
	ExpandedKeys []string       `json:"expanded_keys"`
	Matches      []search.Entry `json:"matches"`
}

// Service is the core navigation service. It owns the current tree and
// serialises refreshes so the newest fetch always wins.
type Service struct {
	provider feed.Provider
	catalog  *catalog.Catalog
	backend  Backend
	config   *Config
	log      logrus.FieldLogger

	mu       sync.Mutex
	started  uint64
	snapshot *Snapshot
	cache    *lru.Cache[string, *QueryResult]
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog persists every applied listing to c.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithBackend enables document metadata and full-text search pass-throughs.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		s.backend = b
	}
}

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates a new navigation service
func New(config *Config, provider feed.Provider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, errors.New("service requires a feed provider")
	}
	if config == nil {
		config = &Config{}
	}
	if config.DuplicatePolicy == "" {
		config.DuplicatePolicy = tree.DuplicateKeepLast
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 256
	}
	if err := feed.ValidatePatterns(config.Exclude); err != nil {
		return nil, err
	}

	cache, err := lru.New[string, *QueryResult](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	s := &Service{
		provider: provider,
		config:   config,
		cache:    cache,
		log:      logrus.StandardLogger(),
		snapshot: &Snapshot{Root: tree.Build(nil)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Refresh fetches the listing, rebuilds the tree and publishes it. If a
// refresh that started later has already been published, this result is
// dropped and ErrStaleRefresh is returned. Under the reject policy a listing
// with conflicts is not published; its snapshot is returned alongside
// ErrDuplicatePath so the caller can report the conflicts.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"source": s.provider.Name(), "generation": gen})
	log.Debug("refreshing file listing")

	fetched, err := s.provider.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch files: %w", err)
	}
	records := feed.Exclude(fetched, s.config.Exclude)

	snap := s.build(gen, records)
	if len(snap.Conflicts) > 0 {
		log.WithField("conflicts", len(snap.Conflicts)).Warn("documents share a path")
		if s.config.DuplicatePolicy == tree.DuplicateReject {
			return snap, fmt.Errorf("%w: %d conflicting records, first at %s", ErrDuplicatePath, len(snap.Conflicts), snap.Conflicts[0].Path)
		}
	}
	if len(snap.Dropped) > 0 {
		log.WithField("dropped", len(snap.Dropped)).Info("ignored identifiers without a path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Generation > gen {
		log.WithField("applied", s.snapshot.Generation).Info("discarding stale refresh")
		return nil, ErrStaleRefresh
	}

	// The catalog keeps the unfiltered listing so a changed exclude list
	// applies to later offline runs. A store failure still publishes the tree.
	if s.catalog != nil && !s.readsCatalog() {
		if err := s.catalog.ReplaceAll(ctx, fetched); err != nil {
			log.WithError(err).Warn("failed to update catalog")
		}
	}

	s.snapshot = snap
	s.cache.Purge()
	log.WithField("records", snap.Records).Debug("published tree")
	return snap, nil
}

func (s *Service) build(gen uint64, records []models.FileRecord) *Snapshot {
	b := tree.NewBuilder(tree.WithDuplicatePolicy(s.config.DuplicatePolicy))
	for _, r := range models.TreeRecords(records) {
		b.Insert(r)
	}
	return &Snapshot{
		Generation: gen,
		Root:       tree.CompactRoot(b.Root()),
		Records:    len(records),
		Conflicts:  b.Conflicts(),
		Dropped:    b.Dropped(),
		BuiltAt:    time.Now(),
	}
}

// readsCatalog reports whether the provider is the catalog itself.
func (s *Service) readsCatalog() bool {
	c, ok := s.provider.(*catalog.Catalog)
	return ok && c == s.catalog
}

// Snapshot returns the currently published tree.
func (s *Service) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Query computes the expansion keys and matches for q against the current
// tree. Surrounding whitespace is ignored; a blank query yields empty results.
func (s *Service) Query(q string) *QueryResult {
	return s.query(s.Snapshot(), q)
}

func (s *Service) query(snap *Snapshot, q string) *QueryResult {
	q = strings.TrimSpace(q)
	cacheKey := fmt.Sprintf("%d\x00%s", snap.Generation, q)
	if res, ok := s.cache.Get(cacheKey); ok {
		return res
	}

	res := &QueryResult{
		Query:        q,
		Generation:   snap.Generation,
		ExpandedKeys: search.MatchExpansionKeys(snap.Root, q),
		Matches:      search.Matches(snap.Root, q),
	}
	s.cache.Add(cacheKey, res)
	return res
}

// Rows returns the visible rows for q. Matches are revealed by expanding their
// parents; expanded lists additional keys the caller keeps open.
func (s *Service) Rows(q string, expanded ...string) []search.Row {
	snap := s.Snapshot()
	res := s.query(snap, q)
	keys := append(append([]string{}, expanded...), res.ExpandedKeys...)
	return search.VisibleRows(snap.Root, keys, true, res.Query)
}

// LeafIDs returns the document ids at or below the node with key.
func (s *Service) LeafIDs(key string) ([]string, error) {
	n := tree.Find(s.Snapshot().Root, key)
	if n == nil {
		return nil, fmt.Errorf("unknown node key %q", key)
	}
	return tree.LeafIDs(n), nil
}

// Records returns the records stored in the catalog, filtered by query.
func (s *Service) Records(ctx context.Context, query string) ([]models.FileRecord, error) {
	if s.catalog == nil {
		return nil, errors.New("no catalog configured")
	}
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	records = feed.Exclude(records, s.config.Exclude)
	return search.FilterRecords(records, query), nil
}

// CatalogSize returns the number of records in the local catalog.
func (s *Service) CatalogSize(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, errors.New("no catalog configured")
	}
	return s.catalog.Count(ctx)
}

// Document fetches document metadata from the backend. Without a backend the
// catalog answers with what the listing knows: id, URL and file name.
func (s *Service) Document(ctx context.Context, id string) (*models.Document, error) {
	if s.backend != nil {
		return s.backend.Document(ctx, id)
	}
	if s.catalog == nil {
		return nil, ErrNoBackend
	}

	r, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup %s in catalog: %w", id, err)
	}
	return &models.Document{ID: r.ID, Title: r.Filename(), URL: r.URL}, nil
}

// SearchDocuments runs a full-text search on the backend, or on the catalog's
// URL index when no backend is configured.
func (s *Service) SearchDocuments(ctx context.Context, query string) ([]models.SearchHit, error) {
	query = strings.TrimSpace(query)
	if s.backend != nil {
		return s.backend.Search(ctx, query)
	}
	if s.catalog == nil {
		return nil, ErrNoBackend
	}

	records, err := s.catalog.Search(ctx, query, 0)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	records = feed.Exclude(records, s.config.Exclude)

	hits := make([]models.SearchHit, 0, len(records))
	for _, r := range records {
		hits = append(hits, models.SearchHit{ID: r.ID, Name: r.Filename(), URL: r.URL})
	}
	return hits, nil
}
