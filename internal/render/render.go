package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-docnav/pkg/search"
)

const (
	iconOpen   = "▾"
	iconClosed = "▸"
	iconFile   = "•"
)

var (
	// matchStyle marks the highlighted part of a label
	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f50"))

	// folderStyle for folder icons
	folderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	// dimStyle for ids and keys
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Renderer writes tree rows as indented text.
type Renderer struct {
	color  bool
	showID bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColor enables lipgloss styling.
func WithColor(on bool) Option {
	return func(r *Renderer) {
		r.color = on
	}
}

// WithIDs appends each leaf's external id.
func WithIDs(on bool) Option {
	return func(r *Renderer) {
		r.showID = on
	}
}

// New returns a Renderer. Color is off unless requested.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rows writes one line per row.
func (r *Renderer) Rows(w io.Writer, rows []search.Row) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, r.Row(row)); err != nil {
			return err
		}
	}
	return nil
}

// Row formats a single row without a trailing newline.
func (r *Renderer) Row(row search.Row) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", row.Depth))
	sb.WriteString(r.icon(row))
	sb.WriteString(" ")
	sb.WriteString(r.Title(row.Title))
	if r.showID && row.IsLeaf && row.ExternalID != "" {
		sb.WriteString(" ")
		sb.WriteString(r.style(dimStyle, "["+row.ExternalID+"]"))
	}
	return sb.String()
}

// Title joins highlight segments, styling the emphasised ones. Without color
// the match is wrapped in brackets so it stays visible.
func (r *Renderer) Title(segs []search.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		if !s.Emphasized {
			sb.WriteString(s.Text)
			continue
		}
		if r.color {
			sb.WriteString(matchStyle.Render(s.Text))
		} else {
			sb.WriteString("[" + s.Text + "]")
		}
	}
	return sb.String()
}

// Keys writes the key and path of every row, for scripting.
func (r *Renderer) Keys(w io.Writer, rows []search.Row) error {
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", row.Key, row.Path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) icon(row search.Row) string {
	switch {
	case row.HasChildren && row.Expanded:
		return r.style(folderStyle, iconOpen)
	case row.HasChildren:
		return r.style(folderStyle, iconClosed)
	default:
		return iconFile
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}
