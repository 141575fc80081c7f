package feed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// FileProvider reads a listing from a YAML or JSON file. The file holds either
// a bare list of {url, id} entries or an object with a "files" key, the same
// shape GET /files returns.
type FileProvider struct {
	Path string
}

// NewFileProvider returns a provider reading path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Name implements Provider.
func (p *FileProvider) Name() string {
	return "file " + p.Path
}

// Files implements Provider.
func (p *FileProvider) Files(ctx context.Context) ([]models.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	return DecodeListing(data)
}

// DecodeListing parses a listing document. Since JSON is valid YAML, both
// formats are accepted.
func DecodeListing(data []byte) ([]models.FileRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	top := doc.Content[0]
	if top.Kind == yaml.MappingNode {
		var wrapped struct {
			Files []models.FileRecord `yaml:"files"`
		}
		if err := top.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("parse listing: %w", err)
		}
		return wrapped.Files, nil
	}

	var records []models.FileRecord
	if err := top.Decode(&records); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return records, nil
}
