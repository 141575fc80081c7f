package search

import (
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

// Entry is one row of the flattened tree used for matching.
type Entry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Flatten lists every node below root depth-first, parents before children.
// The root itself is not listed.
func Flatten(root *tree.Node) []Entry {
	var entries []Entry
	tree.Walk(root, func(n *tree.Node, _ *tree.Node, _ int) bool {
		entries = append(entries, Entry{Key: n.Key, Label: n.Label})
		return true
	})
	return entries
}

// ParentKey returns the key of the direct parent of the node with the given
// key. Top-level nodes and unknown keys yield "".
func ParentKey(root *tree.Node, key string) string {
	if root == nil {
		return ""
	}
	return parentKey(root.Children, key)
}

func parentKey(nodes []*tree.Node, key string) string {
	for _, n := range nodes {
		for _, c := range n.Children {
			if c.Key == key {
				return n.Key
			}
		}
		if found := parentKey(n.Children, key); found != "" {
			return found
		}
	}
	return ""
}

// Matches returns the entries whose label contains query, ignoring case.
// An empty query matches nothing.
func Matches(root *tree.Node, query string) []Entry {
	if query == "" {
		return nil
	}
	var out []Entry
	for _, e := range Flatten(root) {
		if Contains(e.Label, query) {
			out = append(out, e)
		}
	}
	return out
}

// MatchExpansionKeys returns the keys that must be expanded so that every
// node matching query is visible: the direct parent of each match. Keys are
// unique and ordered by first appearance. An empty query yields nothing.
func MatchExpansionKeys(root *tree.Node, query string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, e := range Matches(root, query) {
		parent := ParentKey(root, e.Key)
		if parent == "" {
			continue
		}
		if _, ok := seen[parent]; ok {
			continue
		}
		seen[parent] = struct{}{}
		keys = append(keys, parent)
	}
	return keys
}
