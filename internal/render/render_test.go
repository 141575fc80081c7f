package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/search"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

func sampleRows(query string) []search.Row {
	root := tree.CompactRoot(tree.Build([]tree.Record{
		{Identifier: "/docs/guide/intro.md", ExternalID: "1"},
		{Identifier: "/docs/guide/setup.md", ExternalID: "2"},
		{Identifier: "/misc/todo.txt", ExternalID: "3"},
	}))
	keys := search.MatchExpansionKeys(root, query)
	return search.VisibleRows(root, keys, true, query)
}

func TestRowsPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(WithIDs(true)).Rows(&buf, sampleRows("setup")))

	want := strings.Join([]string{
		"▾ docs/guide",
		"  • intro.md [1]",
		"  • [setup].md [2]",
		"▸ misc",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRowsWithoutIDs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Rows(&buf, sampleRows("")))
	assert.Equal(t, "▸ docs/guide\n▸ misc\n", buf.String())
}

func TestTitleColor(t *testing.T) {
	segs := search.Highlight("readme.md", "me")
	plain := New().Title(segs)
	assert.Equal(t, "read[me].md", plain)

	colored := New(WithColor(true)).Title(segs)
	assert.Contains(t, colored, "read")
	assert.Contains(t, colored, ".md")
	assert.NotContains(t, colored, "[me]")
}

func TestKeys(t *testing.T) {
	rows := sampleRows("")
	var buf bytes.Buffer
	require.NoError(t, New().Keys(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, rows[0].Key+"\tdocs/guide", lines[0])
}
