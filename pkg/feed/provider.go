package feed

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// Provider yields the ordered file listing the navigation tree is built from.
type Provider interface {
	// Name identifies the source in logs.
	Name() string
	// Files fetches the complete listing.
	Files(ctx context.Context) ([]models.FileRecord, error)
}

// ValidatePatterns reports the first malformed glob in patterns.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Exclude drops records whose URL matches any of the doublestar patterns.
// Patterns are matched against the URL as-is, so "**/*.tmp" and
// "https://host/private/**" both work. Malformed patterns never match.
func Exclude(records []models.FileRecord, patterns []string) []models.FileRecord {
	if len(patterns) == 0 {
		return records
	}

	out := make([]models.FileRecord, 0, len(records))
	for _, r := range records {
		if !excluded(r.URL, patterns) {
			out = append(out, r)
		}
	}
	return out
}

func excluded(url string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, url); err == nil && ok {
			return true
		}
	}
	return false
}
