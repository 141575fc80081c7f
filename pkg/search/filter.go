package search

import (
	"strings"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// FilterRecords keeps the records whose URL or file name contains query,
// ignoring case. A blank query returns records unchanged.
func FilterRecords(records []models.FileRecord, query string) []models.FileRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	var out []models.FileRecord
	for _, r := range records {
		if Contains(r.URL, query) || Contains(r.Filename(), query) {
			out = append(out, r)
		}
	}
	return out
}
