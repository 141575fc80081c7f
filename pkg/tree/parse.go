package tree

import "strings"

// schemes recognised at the start of an identifier.
var schemes = []string{"http://", "https://", "svn://"}

// Parsed is the result of splitting an identifier.
type Parsed struct {
	Scheme   string
	Segments []string
}

// HasScheme reports whether a scheme prefix was recognised.
func (p Parsed) HasScheme() bool {
	return p.Scheme != ""
}

// Parse splits an identifier into an optional scheme and its path segments.
// Empty segments are discarded. When a scheme is present it is glued onto the
// first segment so that the same host under different schemes never shares a
// top-level folder.
func Parse(identifier string) Parsed {
	var p Parsed
	rest := identifier
	for _, s := range schemes {
		if strings.HasPrefix(identifier, s) {
			p.Scheme = s
			rest = identifier[len(s):]
			break
		}
	}

	for _, part := range strings.Split(rest, "/") {
		if part != "" {
			p.Segments = append(p.Segments, part)
		}
	}

	if p.Scheme != "" && len(p.Segments) > 0 {
		p.Segments[0] = p.Scheme + p.Segments[0]
	}
	return p
}
