package search

import "unicode"

// Segment is a run of label text, optionally emphasised.
type Segment struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Highlight splits label around the first case-insensitive occurrence of
// query. Concatenating the returned segments always reproduces label.
func Highlight(label, query string) []Segment {
	text := []rune(label)
	i, n := indexFold(text, []rune(query))
	if i < 0 {
		return []Segment{{Text: label}}
	}

	var out []Segment
	if i > 0 {
		out = append(out, Segment{Text: string(text[:i])})
	}
	out = append(out, Segment{Text: string(text[i : i+n]), Emphasized: true})
	if i+n < len(text) {
		out = append(out, Segment{Text: string(text[i+n:])})
	}
	return out
}

// Contains reports whether label contains query, ignoring case. The query is
// always a literal.
func Contains(label, query string) bool {
	i, _ := indexFold([]rune(label), []rune(query))
	return i >= 0
}

// indexFold finds the first rune offset of query in text comparing lower-cased
// runes. It returns -1 for an empty query or no match.
func indexFold(text, query []rune) (int, int) {
	if len(query) == 0 || len(query) > len(text) {
		return -1, 0
	}
	for i := 0; i+len(query) <= len(text); i++ {
		match := true
		for j, q := range query {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(q) {
				match = false
				break
			}
		}
		if match {
			return i, len(query)
		}
	}
	return -1, 0
}
