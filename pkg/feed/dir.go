package feed

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-docnav/pkg/frontmatter"
	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// DirProvider lists the regular files below a local folder. Each file's URL
// is its slash-separated path relative to the folder. Markdown files may
// override their id and URL through front matter.
type DirProvider struct {
	Root string
	log  logrus.FieldLogger
}

// NewDirProvider returns a provider walking root.
func NewDirProvider(root string, log logrus.FieldLogger) *DirProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DirProvider{Root: root, log: log}
}

// Name implements Provider.
func (p *DirProvider) Name() string {
	return "dir " + p.Root
}

// Files implements Provider. Hidden files and directories are skipped.
func (p *DirProvider) Files(ctx context.Context) ([]models.FileRecord, error) {
	var records []models.FileRecord
	err := filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if path != p.Root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		rec := models.FileRecord{URL: filepath.ToSlash(rel)}

		if isMarkdown(name) {
			p.applyFrontmatter(path, &rec)
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("%016x", xxhash.Sum64String(rec.URL))
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", p.Root, err)
	}
	return records, nil
}

func (p *DirProvider) applyFrontmatter(path string, rec *models.FileRecord) {
	content, err := os.ReadFile(path)
	if err != nil {
		p.log.WithField("path", path).WithError(err).Debug("skip front matter")
		return
	}
	fm, _, err := frontmatter.Parse(string(content))
	if err != nil {
		p.log.WithField("path", path).WithError(err).Warn("invalid front matter")
		return
	}
	if fm == nil {
		return
	}
	rec.ID = fm.ID
	if fm.URL != "" {
		rec.URL = fm.URL
	}
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
