package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowPaths(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Path
	}
	return out
}

func TestVisibleRowsCollapsed(t *testing.T) {
	root := buildTree("/a/b/c", "/a/d", "/e")
	rows := VisibleRows(root, nil, false, "")
	assert.Equal(t, []string{"a", "e"}, rowPaths(rows))
	assert.True(t, rows[0].HasChildren)
	assert.False(t, rows[0].Expanded)
}

func TestVisibleRowsAutoExpandParent(t *testing.T) {
	root := buildTree("/a/b/c", "/a/d", "/e")
	keys := MatchExpansionKeys(root, "c")

	without := VisibleRows(root, keys, false, "c")
	assert.Equal(t, []string{"a", "e"}, rowPaths(without))

	rows := VisibleRows(root, keys, true, "c")
	assert.Equal(t, []string{"a", "a/b", "a/b/c", "a/d", "e"}, rowPaths(rows))
	require.Len(t, rows, 5)
	assert.Equal(t, 2, rows[2].Depth)
	assert.Equal(t, []Segment{{Text: "c", Emphasized: true}}, rows[2].Title)
	assert.Equal(t, "/a/b/c", rows[2].ExternalID)
}

func TestVisibleRowsLeafIsNeverExpanded(t *testing.T) {
	root := buildTree("/a/b")
	leaf := root.Children[0].Children[0]
	rows := VisibleRows(root, []string{root.Children[0].Key, leaf.Key}, false, "")
	require.Len(t, rows, 2)
	assert.False(t, rows[1].Expanded)
	assert.Nil(t, VisibleRows(nil, nil, true, ""))
}
