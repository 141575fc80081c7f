package tree

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DuplicatePolicy decides which external id a leaf keeps when two records
// normalise to the same path.
type DuplicatePolicy string

const (
	// DuplicateKeepLast keeps the most recently inserted id.
	DuplicateKeepLast DuplicatePolicy = "last"
	// DuplicateKeepFirst keeps the first non-empty id.
	DuplicateKeepFirst DuplicatePolicy = "first"
	// DuplicateReject keeps the first id and expects the caller to refuse
	// the tree when Conflicts is non-empty.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy maps a config value to a policy. Empty means last.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateKeepLast, nil
	case DuplicateKeepLast, DuplicateKeepFirst, DuplicateReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Conflict records two records that resolved to the same leaf with different ids.
type Conflict struct {
	Path      string `json:"path"`
	Kept      string `json:"kept"`
	Discarded string `json:"discarded"`
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// WithDuplicatePolicy sets the policy applied to colliding leaves.
func WithDuplicatePolicy(p DuplicatePolicy) BuildOption {
	return func(b *Builder) {
		b.policy = p
	}
}

// Builder inserts records into a prefix tree. It is not safe for concurrent use.
type Builder struct {
	policy    DuplicatePolicy
	root      *Node
	keys      map[string]string // key -> path
	conflicts []Conflict
	dropped   []string
}

// NewBuilder returns a Builder with an empty root.
func NewBuilder(opts ...BuildOption) *Builder {
	b := &Builder{
		policy: DuplicateKeepLast,
		root:   &Node{Key: RootKey},
		keys:   map[string]string{RootKey: ""},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build inserts every record in order and returns the uncompacted root.
func Build(records []Record, opts ...BuildOption) *Node {
	b := NewBuilder(opts...)
	for _, r := range records {
		b.Insert(r)
	}
	return b.Root()
}

// Insert adds one record. Identifiers without any path segment are dropped.
func (b *Builder) Insert(r Record) {
	segments := Parse(r.Identifier).Segments
	if len(segments) == 0 {
		b.dropped = append(b.dropped, r.Identifier)
		return
	}

	current := b.root
	for i, seg := range segments {
		last := i == len(segments)-1
		next := current.child(seg)
		if next == nil {
			path := strings.Join(segments[:i+1], "/")
			next = &Node{
				Key:    b.keyFor(path),
				Label:  seg,
				Path:   path,
				IsLeaf: last,
			}
			current.Children = append(current.Children, next)
		}
		current = next
	}

	b.markLeaf(current, r.ExternalID)
}

// markLeaf flags n as a leaf and applies the duplicate policy to its id.
// Leaf status only ever goes from false to true.
func (b *Builder) markLeaf(n *Node, id string) {
	n.IsLeaf = true

	switch {
	case n.ExternalID == "":
		n.ExternalID = id
		return
	case id == "" || id == n.ExternalID:
		return
	}

	if b.policy == DuplicateKeepLast {
		b.conflicts = append(b.conflicts, Conflict{Path: n.Path, Kept: id, Discarded: n.ExternalID})
		n.ExternalID = id
		return
	}
	b.conflicts = append(b.conflicts, Conflict{Path: n.Path, Kept: n.ExternalID, Discarded: id})
}

// keyFor derives a key from the full path. Paths are unique within a tree, so
// a repeated key can only be a hash collision; it gets a numeric suffix.
func (b *Builder) keyFor(path string) string {
	base := fmt.Sprintf("%016x", xxhash.Sum64String(path))
	key := base
	for n := 1; ; n++ {
		owner, taken := b.keys[key]
		if !taken || owner == path {
			break
		}
		key = fmt.Sprintf("%s-%d", base, n)
	}
	b.keys[key] = path
	return key
}

// Root returns the root built so far.
func (b *Builder) Root() *Node {
	return b.root
}

// Conflicts returns the leaf id collisions seen so far.
func (b *Builder) Conflicts() []Conflict {
	return b.conflicts
}

// Dropped returns identifiers that produced no path segments.
func (b *Builder) Dropped() []string {
	return b.dropped
}
