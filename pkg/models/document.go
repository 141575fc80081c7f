package models

import (
	"strings"
	"time"

	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

// FileRecord is one entry of the backend file listing.
type FileRecord struct {
	ID  string `json:"id" yaml:"id"`
	URL string `json:"url" yaml:"url"`
}

// Filename returns the last path segment of the URL, or the URL itself.
func (r FileRecord) Filename() string {
	if i := strings.LastIndex(r.URL, "/"); i >= 0 && i < len(r.URL)-1 {
		return r.URL[i+1:]
	}
	return r.URL
}

// TreeRecords converts file records into tree builder input.
func TreeRecords(records []FileRecord) []tree.Record {
	out := make([]tree.Record, len(records))
	for i, r := range records {
		out[i] = tree.Record{Identifier: r.URL, ExternalID: r.ID}
	}
	return out
}

// Document is the metadata the backend keeps for a single indexed file.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	PDFName   string    `json:"pdf_name,omitempty"`
}

// SearchHit is one full-text search result returned by the backend.
type SearchHit struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	LastModified string   `json:"last_modified,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
}
