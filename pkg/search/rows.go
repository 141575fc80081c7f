package search

import (
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

// Row is one visible line of the navigation tree.
type Row struct {
	Key         string    `json:"key"`
	Path        string    `json:"path"`
	Depth       int       `json:"depth"`
	IsLeaf      bool      `json:"is_leaf"`
	ExternalID  string    `json:"external_id,omitempty"`
	HasChildren bool      `json:"has_children"`
	Expanded    bool      `json:"expanded"`
	Title       []Segment `json:"title"`
}

// VisibleRows lists the rows a collapsible tree widget would show. Children
// are listed only under expanded nodes. With autoExpandParent, every ancestor
// of an expanded key is opened as well so the key itself becomes visible.
// Titles are highlighted against query.
func VisibleRows(root *tree.Node, expanded []string, autoExpandParent bool, query string) []Row {
	if root == nil {
		return nil
	}

	open := make(map[string]bool, len(expanded))
	for _, k := range expanded {
		open[k] = true
	}
	if autoExpandParent {
		markAncestors(root.Children, open)
	}

	var rows []Row
	tree.Walk(root, func(n *tree.Node, _ *tree.Node, depth int) bool {
		isOpen := open[n.Key] && len(n.Children) > 0
		rows = append(rows, Row{
			Key:         n.Key,
			Path:        n.Path,
			Depth:       depth,
			IsLeaf:      n.IsLeaf,
			ExternalID:  n.ExternalID,
			HasChildren: len(n.Children) > 0,
			Expanded:    isOpen,
			Title:       Highlight(n.Label, query),
		})
		return isOpen
	})
	return rows
}

// markAncestors opens every node that has an open descendant and reports
// whether any node in nodes is open afterwards.
func markAncestors(nodes []*tree.Node, open map[string]bool) bool {
	found := false
	for _, n := range nodes {
		if markAncestors(n.Children, open) {
			open[n.Key] = true
		}
		if open[n.Key] {
			found = true
		}
	}
	return found
}
