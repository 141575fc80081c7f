package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://host/a/b.pdf", "b.pdf"},
		{"plain.md", "plain.md"},
		{"/a/b/", "/a/b/"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, FileRecord{URL: tt.url}.Filename())
		})
	}
}

func TestTreeRecords(t *testing.T) {
	got := TreeRecords([]FileRecord{{ID: "1", URL: "/a"}, {ID: "2", URL: "/b"}})
	assert.Equal(t, []tree.Record{
		{Identifier: "/a", ExternalID: "1"},
		{Identifier: "/b", ExternalID: "2"},
	}, got)
}
