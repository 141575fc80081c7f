package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("document not found")

// Catalog is a local sqlite copy of the last file listing fetched from the
// backend. It keeps the listing order so a tree rebuilt from it matches the
// one built from the live feed.
type Catalog struct {
	db     *sql.DB
	useFTS bool
}

// Open opens or creates the catalog database at dbPath.
func Open(dbPath string) (*Catalog, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	c := &Catalog{db: db}
	if err := c.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// init creates the database schema
func (c *Catalog) init() error {
	c.useFTS = c.checkFTS5Support()

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT NOT NULL,
		url TEXT NOT NULL,
		name TEXT NOT NULL,
		seq INTEGER NOT NULL,
		synced_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_id ON files(id);
	CREATE INDEX IF NOT EXISTS idx_files_seq ON files(seq);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if c.useFTS {
		ftsSchema := `
		CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
			seq UNINDEXED,
			url,
			name,
			tokenize = 'unicode61'
		);
		`
		if _, err := c.db.Exec(ftsSchema); err != nil {
			// If FTS creation fails, disable FTS and continue
			c.useFTS = false
		}
	}

	return nil
}

// checkFTS5Support checks if FTS5 module is available
func (c *Catalog) checkFTS5Support() bool {
	_, err := c.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}
	_, _ = c.db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

// ReplaceAll swaps the stored listing for records in a single transaction.
func (c *Catalog) ReplaceAll(ctx context.Context, records []models.FileRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return err
	}
	if c.useFTS {
		if _, err := tx.ExecContext(ctx, "DELETE FROM files_fts"); err != nil {
			return err
		}
	}

	insert, err := tx.PrepareContext(ctx, "INSERT INTO files (id, url, name, seq, synced_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer insert.Close()

	var insertFTS *sql.Stmt
	if c.useFTS {
		insertFTS, err = tx.PrepareContext(ctx, "INSERT INTO files_fts (seq, url, name) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer insertFTS.Close()
	}

	now := time.Now().UTC()
	for i, r := range records {
		if _, err := insert.ExecContext(ctx, r.ID, r.URL, r.Filename(), i, now); err != nil {
			return fmt.Errorf("insert %s: %w", r.URL, err)
		}
		if insertFTS != nil {
			if _, err := insertFTS.ExecContext(ctx, i, r.URL, r.Filename()); err != nil {
				return fmt.Errorf("index %s: %w", r.URL, err)
			}
		}
	}

	return tx.Commit()
}

// List returns every stored record in listing order.
func (c *Catalog) List(ctx context.Context) ([]models.FileRecord, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id, url FROM files ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Files implements feed.Provider so the catalog can serve as an offline source.
func (c *Catalog) Files(ctx context.Context) ([]models.FileRecord, error) {
	return c.List(ctx)
}

// Name identifies the catalog as a feed source.
func (c *Catalog) Name() string {
	return "catalog"
}

// Get returns the first record stored under id.
func (c *Catalog) Get(ctx context.Context, id string) (models.FileRecord, error) {
	var r models.FileRecord
	err := c.db.QueryRowContext(ctx, "SELECT id, url FROM files WHERE id = ? ORDER BY seq LIMIT 1", id).Scan(&r.ID, &r.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}

// Search finds records whose URL or file name match query. With FTS5 the
// query is a token prefix match; otherwise it is a substring match.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]models.FileRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if c.useFTS {
		return c.searchWithFTS(ctx, query, limit)
	}
	return c.searchWithoutFTS(ctx, query, limit)
}

// searchWithFTS quotes every term so user input is never read as FTS syntax.
func (c *Catalog) searchWithFTS(ctx context.Context, query string, limit int) ([]models.FileRecord, error) {
	var terms []string
	for _, term := range strings.Fields(query) {
		terms = append(terms, `"`+strings.ReplaceAll(term, `"`, `""`)+`"*`)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT f.id, f.url
		FROM files_fts x
		JOIN files f ON f.seq = x.seq
		WHERE files_fts MATCH ?
		ORDER BY f.seq
		LIMIT ?
	`, strings.Join(terms, " "), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (c *Catalog) searchWithoutFTS(ctx context.Context, query string, limit int) ([]models.FileRecord, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, url
		FROM files
		WHERE url LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'
		ORDER BY seq
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count returns the number of stored records.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&n)
	return n, err
}

// Close closes the catalog
func (c *Catalog) Close() error {
	return c.db.Close()
}

func scanRecords(rows *sql.Rows) ([]models.FileRecord, error) {
	var out []models.FileRecord
	for rows.Next() {
		var r models.FileRecord
		if err := rows.Scan(&r.ID, &r.URL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
