package frontmatter

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---(?:\r?\n(.*))?$`)

// Frontmatter is the metadata block at the top of a local document. Only the
// fields that affect navigation are read.
type Frontmatter struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	URL     string   `yaml:"url,omitempty"` // Canonical source location, e.g. an svn:// URI
	Tags    []string `yaml:"tags,flow"`
	Updated string   `yaml:"updated,omitempty"`
}

// Parse extracts frontmatter from content and returns the parsed data and body.
// Content without a frontmatter block yields a nil Frontmatter and no error.
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return &fm, matches[2], nil
}

// UpdatedAt parses the updated field. Both "2006-01-02 15:04:05" and RFC 3339
// are accepted; an empty field gives the zero time.
func (fm *Frontmatter) UpdatedAt() (time.Time, error) {
	if fm == nil || fm.Updated == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", fm.Updated); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, fm.Updated)
}
